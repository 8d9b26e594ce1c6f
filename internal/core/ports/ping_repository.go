package ports

import (
	"context"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/tracking"
)

// PingRepository defines the persistence contract for location pings.
// The ping log is append-only; there are no update or delete methods.
type PingRepository interface {
	// Add appends a ping to the location log.
	Add(ctx context.Context, ping *tracking.Ping) error

	// GetLatestByCourier retrieves the most recent ping of the courier.
	// Returns ObjectNotFoundError when the courier never pinged.
	GetLatestByCourier(ctx context.Context, courierID kernel.UUID) (*tracking.Ping, error)

	// GetLatestByOrder retrieves the most recent ping recorded against the
	// order. Returns ObjectNotFoundError when no ping references it yet.
	GetLatestByOrder(ctx context.Context, orderID kernel.UUID) (*tracking.Ping, error)
}
