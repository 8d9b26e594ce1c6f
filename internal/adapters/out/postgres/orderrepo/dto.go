// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, including the conditional writes that settle concurrent
// transition and assignment races at the database level.
package orderrepo

import (
	"time"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Status is stored as a smallint so conditional updates can compare it
// directly; monetary columns use numeric to keep exact amounts.
type OrderDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index"`
	BranchID      uuid.UUID  `gorm:"type:uuid"`
	VendorID      uuid.UUID  `gorm:"type:uuid;index"`
	CourierID     *uuid.UUID `gorm:"type:uuid;index"`
	OrderType     string     `gorm:"type:varchar(16)"`
	Status        int        `gorm:"type:smallint;index"`
	PaymentMethod string     `gorm:"type:varchar(16)"`
	Address       string
	DropoffLat    *float64
	DropoffLng    *float64
	DeliveryFee   decimal.Decimal `gorm:"type:numeric(12,2)"`
	CancelReason  string
	CreatedAt     time.Time

	Items []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO represents one persisted order line. Name and unit price are
// the snapshots taken at order time.
type OrderItemDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index"`
	ProductID uuid.UUID       `gorm:"type:uuid"`
	Name      string          `gorm:"type:varchar(255)"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)"`
	Quantity  int
}

// TableName specifies the database table name for order lines.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var courierID *uuid.UUID
	if id := aggregate.CourierID(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	var dropoffLat, dropoffLng *float64
	if point := aggregate.Dropoff(); point != nil {
		lat, lng := point.Lat(), point.Lng()
		dropoffLat, dropoffLng = &lat, &lng
	}

	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, OrderItemDTO{
			ID:        item.ID().Bytes(),
			OrderID:   aggregate.ID().Bytes(),
			ProductID: item.ProductID().Bytes(),
			Name:      item.Name(),
			UnitPrice: item.UnitPrice().Decimal(),
			Quantity:  item.Quantity(),
		})
	}

	return OrderDTO{
		ID:            aggregate.ID().Bytes(),
		CustomerID:    aggregate.CustomerID().Bytes(),
		BranchID:      aggregate.BranchID().Bytes(),
		VendorID:      aggregate.VendorID().Bytes(),
		CourierID:     courierID,
		OrderType:     string(aggregate.OrderType()),
		Status:        int(aggregate.Status()),
		PaymentMethod: string(aggregate.PaymentMethod()),
		Address:       aggregate.Address(),
		DropoffLat:    dropoffLat,
		DropoffLng:    dropoffLng,
		DeliveryFee:   aggregate.DeliveryFee().Decimal(),
		CancelReason:  aggregate.CancelReason(),
		CreatedAt:     aggregate.CreatedAt(),
		Items:         items,
	}
}

// toDomain converts a database DTO back to an order aggregate via RestoreOrder,
// which re-checks courier/status consistency on the way in.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	branchID, err := kernel.UUIDFromBytes(dto.BranchID[:])
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	var dropoff *kernel.GeoPoint
	if dto.DropoffLat != nil && dto.DropoffLng != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.DropoffLat, *dto.DropoffLng)
		if pointErr != nil {
			return nil, pointErr
		}
		dropoff = &point
	}

	deliveryFee, err := kernel.NewMoney(dto.DeliveryFee)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		id, customerID, branchID, vendorID, courierID,
		order.Type(dto.OrderType), order.Status(dto.Status),
		order.PaymentMethod(dto.PaymentMethod),
		dto.Address, dropoff, deliveryFee, items,
		dto.CancelReason, dto.CreatedAt,
	)
}

func itemToDomain(dto OrderItemDTO) (order.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.Item{}, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return order.Item{}, err
	}
	unitPrice, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(id, productID, dto.Name, unitPrice, dto.Quantity)
}
