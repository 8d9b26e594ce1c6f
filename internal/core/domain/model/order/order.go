package order

import (
	"errors"
	"fmt"
	"time"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/errs"
	"kapgel/internal/pkg/guard"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Type distinguishes delivered orders from customer pickup.
type Type string

const (
	TypeDelivery Type = "delivery"
	TypePickup   Type = "pickup"
)

// Validate checks the type is a known member.
func (t Type) Validate() error {
	switch t {
	case TypeDelivery, TypePickup:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a valid order type", string(t)))
	}
}

// PaymentMethod is how the customer settles the order. No gateway integration:
// cash on delivery or payment at pickup.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentOnPickup PaymentMethod = "pay_on_pickup"
)

// Validate checks the payment method is a known member.
func (p PaymentMethod) Validate() error {
	switch p {
	case PaymentCash, PaymentOnPickup:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("paymentMethod",
			fmt.Errorf("%q is not a valid payment method", string(p)))
	}
}

// Ref is the authorization-relevant projection of an order: who owns it, which
// vendor fulfills it, and which courier (if any) holds the delivery lease.
type Ref struct {
	ID         kernel.UUID
	CustomerID kernel.UUID
	VendorID   kernel.UUID
	CourierID  *kernel.UUID
}

// Order is the aggregate root of the lifecycle engine. It owns the status
// state machine, the courier lease and the monetary invariant
// total = items_total + delivery_fee.
//
// Invariants:
//   - status is always a member of the nine-value enum
//   - a courier is set only for delivery orders, and only in a status that
//     follows assignment
//   - items are immutable after construction
//   - transitions requiring a reason carry a non-empty one
type Order struct {
	id            kernel.UUID
	customerID    kernel.UUID
	branchID      kernel.UUID
	vendorID      kernel.UUID
	courierID     *kernel.UUID
	orderType     Type
	status        Status
	items         []Item
	deliveryFee   kernel.Money
	paymentMethod PaymentMethod
	address       string
	dropoff       *kernel.GeoPoint
	cancelReason  string
	createdAt     time.Time

	guard guard.ConstructorGuard
}

// NewOrder creates an order in NEW status with at least one item.
// The address is required for delivery orders; dropoff coordinates are
// optional. Totals are derived from the item snapshots and the delivery fee,
// so the monetary invariant holds by construction.
func NewOrder(
	id, customerID, branchID, vendorID kernel.UUID,
	orderType Type,
	paymentMethod PaymentMethod,
	address string,
	dropoff *kernel.GeoPoint,
	deliveryFee kernel.Money,
	items []Item,
) (*Order, error) {
	o := &Order{
		orderType:     orderType,
		status:        New,
		deliveryFee:   deliveryFee,
		paymentMethod: paymentMethod,
		address:       address,
		dropoff:       dropoff,
		createdAt:     time.Now().UTC(),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setUUID(&o.id, "id", id),
		setUUID(&o.customerID, "customerId", customerID),
		setUUID(&o.branchID, "branchId", branchID),
		setUUID(&o.vendorID, "vendorId", vendorID),
		orderType.Validate(),
		paymentMethod.Validate(),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	if orderType == TypeDelivery && address == "" {
		return nil, errs.NewValueIsRequiredError("address")
	}
	if dropoff != nil {
		if err := dropoff.Validate(); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// RestoreOrder reconstructs an order from persistence, re-checking the
// courier/status consistency rules.
func RestoreOrder(
	id, customerID, branchID, vendorID kernel.UUID,
	courierID *kernel.UUID,
	orderType Type,
	status Status,
	paymentMethod PaymentMethod,
	address string,
	dropoff *kernel.GeoPoint,
	deliveryFee kernel.Money,
	items []Item,
	cancelReason string,
	createdAt time.Time,
) (*Order, error) {
	o, err := NewOrder(id, customerID, branchID, vendorID, orderType, paymentMethod, address, dropoff, deliveryFee, items)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err = courierID.Validate(); err != nil {
			return nil, err
		}
		if orderType != TypeDelivery || !status.CanHaveCourier() {
			return nil, errs.NewValueIsInvalidErrorWithCause("courierId",
				fmt.Errorf("%s order in status %s cannot have a courier", orderType, status))
		}
	}

	o.status = status
	o.courierID = courierID
	o.cancelReason = cancelReason
	o.createdAt = createdAt
	return o, nil
}

// Validate ensures the Order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// CustomerID returns the owning customer.
func (o *Order) CustomerID() kernel.UUID { return o.customerID }

// BranchID returns the fulfilling branch.
func (o *Order) BranchID() kernel.UUID { return o.branchID }

// VendorID returns the vendor that owns the fulfilling branch.
func (o *Order) VendorID() kernel.UUID { return o.vendorID }

// CourierID returns the courier holding the delivery lease, or nil.
func (o *Order) CourierID() *kernel.UUID { return o.courierID }

// OrderType returns delivery or pickup.
func (o *Order) OrderType() Type { return o.orderType }

// Status returns the current lifecycle status.
func (o *Order) Status() Status { return o.status }

// Items returns the immutable order lines.
func (o *Order) Items() []Item { return o.items }

// PaymentMethod returns how the order is settled.
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }

// Address returns the delivery address text.
func (o *Order) Address() string { return o.address }

// Dropoff returns the optional delivery coordinates.
func (o *Order) Dropoff() *kernel.GeoPoint { return o.dropoff }

// CancelReason returns the reason recorded on rejection or vendor cancellation.
func (o *Order) CancelReason() string { return o.cancelReason }

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// ItemsTotal returns the sum of all line totals.
func (o *Order) ItemsTotal() kernel.Money {
	total := kernel.ZeroMoney()
	for _, item := range o.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// DeliveryFee returns the delivery fee.
func (o *Order) DeliveryFee() kernel.Money { return o.deliveryFee }

// Total returns items total plus delivery fee.
func (o *Order) Total() kernel.Money {
	return o.ItemsTotal().Add(o.deliveryFee)
}

// Ref returns the authorization projection of the order.
func (o *Order) Ref() Ref {
	return Ref{
		ID:         o.id,
		CustomerID: o.customerID,
		VendorID:   o.vendorID,
		CourierID:  o.courierID,
	}
}

// TransitionTo applies a status change requested by the given role.
// A transition requiring a reason fails with a validation error before the
// state machine is consulted. The relation of the actor to the order is the
// access policy's concern, checked before this method is reached.
func (o *Order) TransitionTo(requested Status, role actor.Role, reason string) error {
	if requested.RequiresReason() && reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}

	next, err := NextStatus(o.status, requested, role)
	if err != nil {
		return err
	}

	o.status = next
	if requested.RequiresReason() {
		o.cancelReason = reason
	}
	return nil
}

// AssignCourier binds a courier to the order and moves it to PREPARING.
// Only delivery orders in the assignable window (CONFIRMED or PREPARING)
// without a courier can be assigned. The storage layer re-checks the same
// predicate with a conditional write; this method enforces it in-memory.
func (o *Order) AssignCourier(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.orderType != TypeDelivery {
		return errs.NewValueIsInvalidErrorWithCause("type",
			fmt.Errorf("%s orders do not take couriers", o.orderType))
	}
	if o.courierID != nil {
		return errs.NewAlreadyAssignedError(o.id.String())
	}
	if o.status != Confirmed && o.status != Preparing {
		return errs.NewInvalidTransitionError(o.status.String(), Preparing.String(), string(actor.RoleVendorAdmin))
	}

	o.status = Preparing
	o.courierID = &courierID
	return nil
}

// UnassignCourier removes the courier lease and reverts the order toward
// CONFIRMED. Permitted only while the order is mid-assignment, before
// delivery completes.
func (o *Order) UnassignCourier() error {
	if o.courierID == nil {
		return errs.NewValueIsInvalidErrorWithCause("courierId",
			errors.New("order has no courier to unassign"))
	}
	switch o.status {
	case Preparing, PickedUp, OnRoute:
		o.status = Confirmed
		o.courierID = nil
		return nil
	default:
		return errs.NewInvalidTransitionError(o.status.String(), Confirmed.String(), string(actor.RoleVendorAdmin))
	}
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func setUUID(dst *kernel.UUID, name string, value kernel.UUID) error {
	if err := value.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	*dst = value
	return nil
}
