package ports

import (
	"context"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Mutating methods that race with other writers are conditional: they only
// take effect when the stored row still matches the state the caller read,
// and report how many rows changed so the caller can detect a lost race.
type OrderRepository interface {
	// Add persists a new order aggregate together with its item snapshots.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetRef retrieves only the authorization projection of an order.
	// Cheaper than Get; used to run the access policy before loading items.
	GetRef(ctx context.Context, id kernel.UUID) (order.Ref, error)

	// UpdateStatus writes the new status (and optional cancel reason) only if
	// the stored status still equals expected. Returns the number of rows
	// changed: zero means another writer moved the order first.
	UpdateStatus(ctx context.Context, id kernel.UUID, expected, next order.Status, reason string) (int64, error)

	// AssignCourier sets the courier and moves the order to Preparing only if
	// no courier is set yet and the status is still one of CONFIRMED or
	// PREPARING. Zero rows changed means the lease was taken by someone else.
	AssignCourier(ctx context.Context, id, courierID kernel.UUID) (int64, error)

	// UnassignCourier clears the courier and reverts the order to Confirmed
	// only if the given courier still holds it in an active delivery status.
	UnassignCourier(ctx context.Context, id, courierID kernel.UUID) (int64, error)

	// CourierHasActiveDelivery reports whether the courier currently holds any
	// order in PREPARING, PICKED_UP or ON_ROUTE. Advisory only: assignment
	// correctness is enforced by the conditional write, not by this check.
	CourierHasActiveDelivery(ctx context.Context, courierID kernel.UUID) (bool, error)
}
