package ports

import (
	"context"
	"time"

	"kapgel/internal/core/domain/model/kernel"
)

// Event kinds fanned out to realtime subscribers.
const (
	EventOrderStatusChanged = "order.status_changed"
	EventCourierAssigned    = "order.courier_assigned"
	EventCourierUnassigned  = "order.courier_unassigned"
	EventCourierLocation    = "courier.location"
	EventCourierShift       = "courier.shift_changed"
)

// Event is a realtime notification published after a successful command.
// Fields not relevant to the kind stay empty and are omitted on the wire.
// Delivery is at-least-once: consumers dedup location events by PingID and
// transition events by the (OrderID, Status) pair.
type Event struct {
	Kind       string    `json:"kind"`
	OrderID    string    `json:"order_id,omitempty"`
	CourierID  string    `json:"courier_id,omitempty"`
	PingID     string    `json:"ping_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderChannel is the fan-out channel name for a single order's events.
func OrderChannel(orderID kernel.UUID) string { return "order:" + orderID.String() }

// CourierChannel is the fan-out channel name for a single courier's events.
func CourierChannel(courierID kernel.UUID) string { return "courier:" + courierID.String() }

// EventPublisher delivers events to realtime subscribers. Publishing is
// best-effort and must never block or fail a command: implementations drop
// events for slow consumers rather than applying backpressure.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event Event)
}
