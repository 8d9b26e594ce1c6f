package queries

import (
	"errors"
	"time"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/errs"
	"kapgel/internal/pkg/guard"
)

var ErrCourierTrackQueryIsNotConstructed = errors.New(
	"CourierTrackQuery must be created via NewCourierTrackQueryByOrder or NewCourierTrackQueryByCourier constructor",
)

// CourierTrackQuery retrieves the most recent location sample either for the
// courier delivering a given order, or for a courier directly. The order form
// is what customer apps poll; the courier form serves fleet screens.
type CourierTrackQuery struct {
	orderID   *kernel.UUID
	courierID *kernel.UUID
	by        actor.Context

	guard guard.ConstructorGuard
}

// NewCourierTrackQueryByOrder creates a track query scoped to an order.
func NewCourierTrackQueryByOrder(orderID kernel.UUID, by actor.Context) (CourierTrackQuery, error) {
	if err := orderID.Validate(); err != nil {
		return CourierTrackQuery{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	return CourierTrackQuery{orderID: &orderID, by: by, guard: guard.NewConstructorGuard()}, nil
}

// NewCourierTrackQueryByCourier creates a track query scoped to a courier.
func NewCourierTrackQueryByCourier(courierID kernel.UUID, by actor.Context) (CourierTrackQuery, error) {
	if err := courierID.Validate(); err != nil {
		return CourierTrackQuery{}, errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	return CourierTrackQuery{courierID: &courierID, by: by, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through a constructor.
func (q CourierTrackQuery) Validate() error {
	return q.guard.Validate(ErrCourierTrackQueryIsNotConstructed)
}

// OrderID returns the order scope, or nil.
func (q CourierTrackQuery) OrderID() *kernel.UUID { return q.orderID }

// CourierID returns the courier scope, or nil.
func (q CourierTrackQuery) CourierID() *kernel.UUID { return q.courierID }

// By returns the acting identity.
func (q CourierTrackQuery) By() actor.Context { return q.by }

// CourierTrackQueryResponse is the latest known position read model.
type CourierTrackQueryResponse struct {
	CourierID  kernel.UUID
	OrderID    *kernel.UUID
	Lat        float64
	Lng        float64
	Accuracy   *float64
	Heading    *float64
	Speed      *float64
	RecordedAt time.Time
}
