// Package ports defines the contracts between the application core and
// infrastructure. These interfaces establish the dependency inversion
// boundary: use cases depend on them, adapters implement them.
package ports

import (
	"context"
	"time"

	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	// Returns ObjectNotFoundError when no such courier exists.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// SetShiftStatus persists a shift toggle for the courier.
	SetShiftStatus(ctx context.Context, id kernel.UUID, status courier.ShiftStatus) error

	// GetOnline retrieves couriers currently on shift that are available to
	// the vendor: the vendor's own fleet plus independent couriers.
	GetOnline(ctx context.Context, vendorID kernel.UUID) ([]*courier.Courier, error)

	// GetStale retrieves online couriers whose most recent location ping is
	// older than the cutoff, or who never pinged. Feeds the shift watchdog.
	GetStale(ctx context.Context, cutoff time.Time) ([]*courier.Courier, error)
}
