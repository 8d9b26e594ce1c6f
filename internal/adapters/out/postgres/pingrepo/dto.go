// Package pingrepo persists the append-only courier location log.
package pingrepo

import (
	"time"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/tracking"

	"github.com/google/uuid"
)

// PingDTO represents one persisted location sample. The composite index on
// (courier_id, recorded_at) serves the latest-position lookups.
type PingDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CourierID  uuid.UUID  `gorm:"type:uuid;index:idx_pings_courier_recorded,priority:1"`
	OrderID    *uuid.UUID `gorm:"type:uuid;index"`
	Lat        float64
	Lng        float64
	Accuracy   *float64
	Heading    *float64
	Speed      *float64
	Manual     bool
	RecordedAt time.Time `gorm:"index:idx_pings_courier_recorded,priority:2"`
}

// TableName specifies the database table name for location samples.
func (PingDTO) TableName() string {
	return "pings"
}

// fromDomain converts a ping to its database representation.
func fromDomain(ping *tracking.Ping) PingDTO {
	var orderID *uuid.UUID
	if id := ping.OrderID(); id != nil {
		raw := id.Bytes()
		orderID = &raw
	}

	return PingDTO{
		ID:         ping.ID().Bytes(),
		CourierID:  ping.CourierID().Bytes(),
		OrderID:    orderID,
		Lat:        ping.Point().Lat(),
		Lng:        ping.Point().Lng(),
		Accuracy:   ping.Accuracy(),
		Heading:    ping.Heading(),
		Speed:      ping.Speed(),
		Manual:     ping.IsManual(),
		RecordedAt: ping.RecordedAt(),
	}
}

// toDomain converts a database DTO back to a ping value object.
func toDomain(dto PingDTO) (*tracking.Ping, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	var orderID *kernel.UUID
	if dto.OrderID != nil {
		oID, orderErr := kernel.UUIDFromBytes((*dto.OrderID)[:])
		if orderErr != nil {
			return nil, orderErr
		}
		orderID = &oID
	}

	point, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	return tracking.RestorePing(
		id, courierID, orderID, point,
		dto.Accuracy, dto.Heading, dto.Speed,
		dto.Manual, dto.RecordedAt,
	)
}
