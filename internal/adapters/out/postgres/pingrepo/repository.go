package pingrepo

import (
	"context"
	"errors"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/tracking"
	"kapgel/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormPingRepository implements PingRepository using GORM.
// Inserts only; the log is never updated or deleted.
type GormPingRepository struct {
	db *gorm.DB
}

// NewGormPingRepository creates a new GORM ping repository.
func NewGormPingRepository(db *gorm.DB) *GormPingRepository {
	return &GormPingRepository{db: db}
}

// Add appends a ping to the location log.
func (r *GormPingRepository) Add(ctx context.Context, ping *tracking.Ping) error {
	if err := ping.Validate(); err != nil {
		return err
	}

	dto := fromDomain(ping)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetLatestByCourier retrieves the courier's most recent sample.
func (r *GormPingRepository) GetLatestByCourier(ctx context.Context, courierID kernel.UUID) (*tracking.Ping, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}
	return r.latest(ctx, "courier_id = ?", courierID)
}

// GetLatestByOrder retrieves the most recent sample recorded for the order.
func (r *GormPingRepository) GetLatestByOrder(ctx context.Context, orderID kernel.UUID) (*tracking.Ping, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	return r.latest(ctx, "order_id = ?", orderID)
}

func (r *GormPingRepository) latest(ctx context.Context, condition string, id kernel.UUID) (*tracking.Ping, error) {
	var dto PingDTO
	err := r.db.WithContext(ctx).
		Where(condition, id.Bytes()).
		Order("recorded_at DESC").
		First(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("ping", id.String())
	}
	if err != nil {
		return nil, err
	}

	return toDomain(dto)
}
