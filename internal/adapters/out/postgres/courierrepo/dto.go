// Package courierrepo provides data transfer objects and mapping functions
// for courier persistence.
package courierrepo

import (
	"kapgel/internal/core/domain/model/courier"
	"kapgel/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting couriers.
// A NULL vendor means the courier rides independently and may deliver for any
// vendor.
type CourierDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;index"`
	VendorID    *uuid.UUID `gorm:"type:uuid;index"`
	ShiftStatus string     `gorm:"type:varchar(16);index"`
	Vehicle     string     `gorm:"type:varchar(16)"`
	Active      bool
}

// TableName specifies the database table name for courier entities.
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier aggregate to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	var vendorID *uuid.UUID
	if id := aggregate.VendorID(); id != nil {
		raw := id.Bytes()
		vendorID = &raw
	}

	return CourierDTO{
		ID:          aggregate.ID().Bytes(),
		UserID:      aggregate.UserID().Bytes(),
		VendorID:    vendorID,
		ShiftStatus: string(aggregate.ShiftStatus()),
		Vehicle:     string(aggregate.Vehicle()),
		Active:      aggregate.IsActive(),
	}
}

// toDomain converts a database DTO back to a courier aggregate.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	userID, err := kernel.UUIDFromBytes(dto.UserID[:])
	if err != nil {
		return nil, err
	}

	var vendorID *kernel.UUID
	if dto.VendorID != nil {
		vID, vendorErr := kernel.UUIDFromBytes((*dto.VendorID)[:])
		if vendorErr != nil {
			return nil, vendorErr
		}
		vendorID = &vID
	}

	return courier.RestoreCourier(
		id, userID, vendorID,
		courier.VehicleType(dto.Vehicle),
		courier.ShiftStatus(dto.ShiftStatus),
		dto.Active,
	)
}
