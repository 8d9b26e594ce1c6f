package courierrepo

import (
	"context"
	"errors"
	"time"

	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCourierRepository implements CourierRepository using GORM.
type GormCourierRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCourierRepository creates a new GORM courier repository.
func NewGormCourierRepository(db *gorm.DB, tracker aggregateTracker) *GormCourierRepository {
	return &GormCourierRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new courier to the database.
func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
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

// Get retrieves a courier by ID.
func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("courier", id.String())
	}
	if err != nil {
		return nil, err
	}

	return toDomain(dto)
}

// SetShiftStatus persists a shift toggle for the courier.
func (r *GormCourierRepository) SetShiftStatus(
	ctx context.Context,
	id kernel.UUID,
	status courier.ShiftStatus,
) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&CourierDTO{}).
		Where("id = ?", id.Bytes()).
		Update("shift_status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier", id.String())
	}
	return nil
}

// GetOnline retrieves on-shift couriers available to the vendor: the vendor's
// own fleet plus independent couriers.
func (r *GormCourierRepository) GetOnline(ctx context.Context, vendorID kernel.UUID) ([]*courier.Courier, error) {
	if err := vendorID.Validate(); err != nil {
		return nil, err
	}

	var dtos []CourierDTO
	err := r.db.WithContext(ctx).
		Where("shift_status = ? AND active AND (vendor_id = ? OR vendor_id IS NULL)",
			string(courier.ShiftOnline), vendorID.Bytes()).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetStale retrieves online couriers whose newest ping is older than the
// cutoff, or who never pinged at all. The shift watchdog forces these
// couriers offline.
func (r *GormCourierRepository) GetStale(ctx context.Context, cutoff time.Time) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	err := r.db.WithContext(ctx).
		Where("shift_status = ?", string(courier.ShiftOnline)).
		Where(`NOT EXISTS (
			SELECT 1 FROM pings
			WHERE pings.courier_id = couriers.id AND pings.recorded_at > ?
		)`, cutoff).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []CourierDTO) ([]*courier.Courier, error) {
	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}
	return couriers, nil
}
