package orderrepo

import (
	"context"
	"errors"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// busyStatuses are the statuses in which a courier is physically carrying an
// order. A courier holds at most one order in them; entering one runs the
// guarded form of UpdateStatus.
var busyStatuses = []int{int(order.PickedUp), int(order.OnRoute)}

// assignedStatuses are the statuses during which a courier is attached to an
// order at all, whether or not they have picked it up yet.
var assignedStatuses = []int{
	int(order.Preparing), int(order.PickedUp), int(order.OnRoute),
}

// GormOrderRepository implements OrderRepository using GORM.
// The race-prone writes (UpdateStatus, AssignCourier, UnassignCourier) are
// single UPDATE statements with the expected state in the WHERE clause; the
// returned row count tells the caller whether it won.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order and its item snapshots to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order with its items by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).Preload("Items").First(&dto, "id = ?", id.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	if err != nil {
		return nil, err
	}

	return toDomain(dto)
}

// GetRef retrieves only the authorization columns of an order.
func (r *GormOrderRepository) GetRef(ctx context.Context, id kernel.UUID) (order.Ref, error) {
	if err := id.Validate(); err != nil {
		return order.Ref{}, err
	}

	var dto struct {
		ID         uuid.UUID
		CustomerID uuid.UUID
		VendorID   uuid.UUID
		CourierID  *uuid.UUID
	}
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Select("id", "customer_id", "vendor_id", "courier_id").
		Where("id = ?", id.Bytes()).
		Take(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order.Ref{}, errs.NewObjectNotFoundError("order", id.String())
	}
	if err != nil {
		return order.Ref{}, err
	}

	ref := order.Ref{}
	if ref.ID, err = kernel.UUIDFromBytes(dto.ID[:]); err != nil {
		return order.Ref{}, err
	}
	if ref.CustomerID, err = kernel.UUIDFromBytes(dto.CustomerID[:]); err != nil {
		return order.Ref{}, err
	}
	if ref.VendorID, err = kernel.UUIDFromBytes(dto.VendorID[:]); err != nil {
		return order.Ref{}, err
	}
	if dto.CourierID != nil {
		courierID, idErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if idErr != nil {
			return order.Ref{}, idErr
		}
		ref.CourierID = &courierID
	}
	return ref, nil
}

// UpdateStatus moves the order to the next status only if it still holds the
// expected one. Returns the number of rows changed. Transitions into a busy
// status additionally require the courier to hold no other busy order.
func (r *GormOrderRepository) UpdateStatus(
	ctx context.Context,
	id kernel.UUID,
	expected, next order.Status,
	reason string,
) (int64, error) {
	if err := id.Validate(); err != nil {
		return 0, err
	}

	if next == order.PickedUp || next == order.OnRoute {
		return r.updateStatusGuarded(ctx, id, expected, next, reason)
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND status = ?", id.Bytes(), int(expected)).
		Updates(map[string]any{
			"status":        int(next),
			"cancel_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// updateStatusGuarded applies a transition into a busy status. The CTE locks
// every order attached to the same courier, so concurrent pickups for one
// courier serialize on those rows, and the update refuses to apply while the
// courier is already carrying a different order. One statement, so the
// at-most-one-active-delivery invariant holds across process instances.
func (r *GormOrderRepository) updateStatusGuarded(
	ctx context.Context,
	id kernel.UUID,
	expected, next order.Status,
	reason string,
) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		WITH held AS (
			SELECT id, status
			FROM orders
			WHERE courier_id = (SELECT courier_id FROM orders WHERE id = ?)
			  AND status IN ?
			FOR UPDATE
		)
		UPDATE orders
		SET status = ?, cancel_reason = ?
		WHERE id = ?
		  AND status = ?
		  AND NOT EXISTS (
			SELECT 1 FROM held
			WHERE held.id <> orders.id AND held.status IN ?
		  )`,
		id.Bytes(), assignedStatuses,
		int(next), reason,
		id.Bytes(), int(expected), busyStatuses,
	)
	return result.RowsAffected, result.Error
}

// AssignCourier sets the courier and moves the order to Preparing, but only
// while no courier holds it and the status is still in the assignable window.
// Concurrent callers race on this statement; the database lets one through.
func (r *GormOrderRepository) AssignCourier(ctx context.Context, id, courierID kernel.UUID) (int64, error) {
	if err := errors.Join(id.Validate(), courierID.Validate()); err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND courier_id IS NULL AND status IN ?",
			id.Bytes(), []int{int(order.Confirmed), int(order.Preparing)}).
		Updates(map[string]any{
			"courier_id": courierID.Bytes(),
			"status":     int(order.Preparing),
		})
	return result.RowsAffected, result.Error
}

// UnassignCourier clears the courier and reverts the order to Confirmed while
// the given courier still holds it in an active delivery status.
func (r *GormOrderRepository) UnassignCourier(ctx context.Context, id, courierID kernel.UUID) (int64, error) {
	if err := errors.Join(id.Validate(), courierID.Validate()); err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND courier_id = ? AND status IN ?",
			id.Bytes(), courierID.Bytes(), assignedStatuses).
		Updates(map[string]any{
			"courier_id": nil,
			"status":     int(order.Confirmed),
		})
	return result.RowsAffected, result.Error
}

// CourierHasActiveDelivery reports whether the courier is carrying an order
// right now. An assigned but not yet picked up order does not count: the
// courier is still free to accept another assignment.
func (r *GormOrderRepository) CourierHasActiveDelivery(ctx context.Context, courierID kernel.UUID) (bool, error) {
	if err := courierID.Validate(); err != nil {
		return false, err
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("courier_id = ? AND status IN ?", courierID.Bytes(), busyStatuses).
		Count(&count).Error
	return count > 0, err
}
