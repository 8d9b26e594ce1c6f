// Package courier contains the courier aggregate. A courier's availability is
// two-fold: the shift status they toggle themselves, and whether they hold an
// active delivery lease, which is observed through the order table rather than
// stored here.
package courier

import (
	"errors"
	"fmt"

	"kapgel/internal/core/domain/model/kernel"
	"kapgel/internal/pkg/errs"
	"kapgel/internal/pkg/guard"
)

// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
var ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier or RestoreCourier")

// ShiftStatus is whether the courier is currently accepting deliveries.
type ShiftStatus string

const (
	ShiftOnline  ShiftStatus = "online"
	ShiftOffline ShiftStatus = "offline"
)

// ParseShiftStatus maps a wire string to a ShiftStatus.
func ParseShiftStatus(s string) (ShiftStatus, error) {
	switch ShiftStatus(s) {
	case ShiftOnline, ShiftOffline:
		return ShiftStatus(s), nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("shiftStatus",
			fmt.Errorf("%q is not a valid shift status", s))
	}
}

// VehicleType is how the courier moves.
type VehicleType string

const (
	VehicleOnFoot    VehicleType = "on_foot"
	VehicleBicycle   VehicleType = "bicycle"
	VehicleMotorbike VehicleType = "motorbike"
	VehicleCar       VehicleType = "car"
)

// Validate checks the vehicle type is a known member.
func (v VehicleType) Validate() error {
	switch v {
	case VehicleOnFoot, VehicleBicycle, VehicleMotorbike, VehicleCar:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("vehicleType",
			fmt.Errorf("%q is not a valid vehicle type", string(v)))
	}
}

// Courier is an aggregate root. A courier either works for a vendor or rides
// independently (nil vendor); they come on and off shift themselves, while
// order linkage is mutated only by the dispatch service.
type Courier struct {
	id          kernel.UUID
	vendorID    *kernel.UUID
	userID      kernel.UUID
	shiftStatus ShiftStatus
	vehicle     VehicleType
	active      bool

	guard guard.ConstructorGuard
}

// NewCourier creates an active courier starting off shift.
// vendorID is nil for an independent courier.
func NewCourier(id, userID kernel.UUID, vendorID *kernel.UUID, vehicle VehicleType) (*Courier, error) {
	c := &Courier{
		shiftStatus: ShiftOffline,
		vehicle:     vehicle,
		active:      true,
		guard:       guard.NewConstructorGuard(),
	}

	if err := id.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("id", err)
	}
	if err := userID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("userId", err)
	}
	if vendorID != nil {
		if err := vendorID.Validate(); err != nil {
			return nil, errs.NewValueIsRequiredErrorWithCause("vendorId", err)
		}
	}
	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	c.id = id
	c.userID = userID
	c.vendorID = vendorID
	return c, nil
}

// RestoreCourier reconstructs a courier from persistence.
func RestoreCourier(
	id, userID kernel.UUID,
	vendorID *kernel.UUID,
	vehicle VehicleType,
	shiftStatus ShiftStatus,
	active bool,
) (*Courier, error) {
	c, err := NewCourier(id, userID, vendorID, vehicle)
	if err != nil {
		return nil, err
	}
	if _, err = ParseShiftStatus(string(shiftStatus)); err != nil {
		return nil, err
	}
	c.shiftStatus = shiftStatus
	c.active = active
	return c, nil
}

// Validate ensures the Courier was built through a constructor.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// ID returns the courier identifier.
func (c *Courier) ID() kernel.UUID { return c.id }

// UserID returns the linked user account.
func (c *Courier) UserID() kernel.UUID { return c.userID }

// VendorID returns the owning vendor, or nil for an independent courier.
func (c *Courier) VendorID() *kernel.UUID { return c.vendorID }

// ShiftStatus returns whether the courier is accepting deliveries.
func (c *Courier) ShiftStatus() ShiftStatus { return c.shiftStatus }

// Vehicle returns the courier's vehicle type.
func (c *Courier) Vehicle() VehicleType { return c.vehicle }

// IsActive reports whether the courier account is enabled.
func (c *Courier) IsActive() bool { return c.active }

// IsOnline reports whether the courier is on shift.
func (c *Courier) IsOnline() bool { return c.shiftStatus == ShiftOnline }

// SetShift toggles the shift status. An inactive courier cannot come online.
func (c *Courier) SetShift(status ShiftStatus) error {
	if _, err := ParseShiftStatus(string(status)); err != nil {
		return err
	}
	if status == ShiftOnline && !c.active {
		return errs.NewValueIsInvalidErrorWithCause("shiftStatus",
			errors.New("inactive courier cannot come online"))
	}
	c.shiftStatus = status
	return nil
}

// AvailableTo reports whether the courier may take deliveries for the vendor.
// Independent couriers are available to every vendor.
func (c *Courier) AvailableTo(vendorID kernel.UUID) bool {
	return c.vendorID == nil || c.vendorID.IsEqual(vendorID)
}
