package commands

import (
	"errors"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/core/domain/model/order"
	"kapgel/internal/pkg/errs"
	"kapgel/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// ItemInput is one requested order line. Name and unit price are snapshots
// supplied by the caller at order time; they are copied into the order and
// never re-read from a catalog.
type ItemInput struct {
	ProductID kernel.UUID
	Name      string
	UnitPrice kernel.Money
	Quantity  int
}

// CreateOrderCommand represents a request to place a new order.
// The order starts in NEW status; its identifier is generated by the caller
// so retries stay idempotent at the transport layer.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	by            actor.Context
	branchID      kernel.UUID
	vendorID      kernel.UUID
	orderType     order.Type
	paymentMethod order.PaymentMethod
	address       string
	dropoff       *kernel.GeoPoint
	deliveryFee   kernel.Money
	items         []ItemInput

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to place a new order.
// Validates identifiers, enum members and that at least one item is present.
// The address requirement for delivery orders is checked by the aggregate.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	by actor.Context,
	branchID, vendorID kernel.UUID,
	orderType order.Type,
	paymentMethod order.PaymentMethod,
	address string,
	dropoff *kernel.GeoPoint,
	deliveryFee kernel.Money,
	items []ItemInput,
) (CreateOrderCommand, error) {
	if err := errors.Join(
		validateUUID("orderId", orderID),
		validateUUID("branchId", branchID),
		validateUUID("vendorId", vendorID),
		orderType.Validate(),
		paymentMethod.Validate(),
	); err != nil {
		return CreateOrderCommand{}, err
	}
	if len(items) == 0 {
		return CreateOrderCommand{}, errs.NewValueIsRequiredError("items")
	}

	return CreateOrderCommand{
		orderID:       orderID,
		by:            by,
		branchID:      branchID,
		vendorID:      vendorID,
		orderType:     orderType,
		paymentMethod: paymentMethod,
		address:       address,
		dropoff:       dropoff,
		deliveryFee:   deliveryFee,
		items:         items,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the caller-generated order identifier.
func (c CreateOrderCommand) OrderID() kernel.UUID { return c.orderID }

// By returns the acting identity.
func (c CreateOrderCommand) By() actor.Context { return c.by }

// BranchID returns the fulfilling branch.
func (c CreateOrderCommand) BranchID() kernel.UUID { return c.branchID }

// VendorID returns the vendor owning the branch.
func (c CreateOrderCommand) VendorID() kernel.UUID { return c.vendorID }

// OrderType returns delivery or pickup.
func (c CreateOrderCommand) OrderType() order.Type { return c.orderType }

// PaymentMethod returns how the order is settled.
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod { return c.paymentMethod }

// Address returns the delivery address text.
func (c CreateOrderCommand) Address() string { return c.address }

// Dropoff returns the optional delivery coordinates.
func (c CreateOrderCommand) Dropoff() *kernel.GeoPoint { return c.dropoff }

// DeliveryFee returns the quoted delivery fee.
func (c CreateOrderCommand) DeliveryFee() kernel.Money { return c.deliveryFee }

// Items returns the requested order lines.
func (c CreateOrderCommand) Items() []ItemInput { return c.items }

func validateUUID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}
