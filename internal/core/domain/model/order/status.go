package order

import (
	"fmt"

	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// Transition graph (acting role in parentheses):
//
//	NEW ──> CONFIRMED (vendor_admin) ──> PREPARING (vendor_admin)
//	 │  └─> REJECTED (vendor_admin, reason required)
//	 └────> CANCELED_BY_USER (customer)
//	PREPARING ──> PICKED_UP (vendor_admin or assigned courier)
//	PICKED_UP ──> ON_ROUTE (courier) ──> DELIVERED (courier)
//	any non-terminal ──> CANCELED_BY_VENDOR (vendor_admin, reason required)
type Status int

const (
	// Unknown represents an invalid or undefined status. The zero value helps
	// catch uninitialized Status values.
	Unknown Status = iota

	// New is the initial status of every order.
	New
	// Confirmed means the branch accepted the order.
	Confirmed
	// Preparing means the branch is preparing the order. Courier assignment
	// also lands here.
	Preparing
	// PickedUp means the order left the branch.
	PickedUp
	// OnRoute means the courier is heading to the customer.
	OnRoute
	// Delivered is the terminal success state.
	Delivered
	// Rejected is terminal: the branch declined the order.
	Rejected
	// CanceledByUser is terminal: the customer withdrew a NEW order.
	CanceledByUser
	// CanceledByVendor is terminal: the vendor aborted a non-terminal order.
	CanceledByVendor
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:          "UNKNOWN",
		New:              "NEW",
		Confirmed:        "CONFIRMED",
		Preparing:        "PREPARING",
		PickedUp:         "PICKED_UP",
		OnRoute:          "ON_ROUTE",
		Delivered:        "DELIVERED",
		Rejected:         "REJECTED",
		CanceledByUser:   "CANCELED_BY_USER",
		CanceledByVendor: "CANCELED_BY_VENDOR",
	}
}

// ParseStatus maps a wire string to a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// String returns the wire name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Validate checks that the value is a member of the nine-value enum.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", int(s)))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", int(s)))
	}
	return nil
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	switch s {
	case Delivered, Rejected, CanceledByUser, CanceledByVendor:
		return true
	default:
		return false
	}
}

// RequiresReason reports whether entering this status needs a reason string.
// The reason check happens before the state machine is consulted.
func (s Status) RequiresReason() bool {
	return s == Rejected || s == CanceledByVendor
}

// CanHaveCourier reports whether a courier lease is consistent with the status.
// A courier is set only after assignment, so only PREPARING and later delivery
// states may carry one.
func (s Status) CanHaveCourier() bool {
	switch s {
	case Preparing, PickedUp, OnRoute, Delivered:
		return true
	default:
		return false
	}
}

type transitionEdge struct {
	from Status
	to   Status
}

// allowedTransitions is the full transition table. An edge lists every role
// that may trigger it; relation checks (owner, vendor membership, courier
// lease) are enforced separately by the access policy.
var allowedTransitions = map[transitionEdge][]actor.Role{
	{New, Confirmed}:       {actor.RoleVendorAdmin},
	{New, Rejected}:        {actor.RoleVendorAdmin},
	{New, CanceledByUser}:  {actor.RoleCustomer},
	{Confirmed, Preparing}: {actor.RoleVendorAdmin},
	{Preparing, PickedUp}:  {actor.RoleVendorAdmin, actor.RoleCourier},
	{PickedUp, OnRoute}:    {actor.RoleCourier},
	{OnRoute, Delivered}:   {actor.RoleCourier},
}

// NextStatus validates the (current, requested, role) triple against the
// transition table and returns the status the order moves to. It is a pure
// lookup. A request that repeats the current status is rejected the same as
// any other missing edge, never silently accepted.
func NextStatus(current, requested Status, role actor.Role) (Status, error) {
	if err := current.Validate(); err != nil {
		return Unknown, err
	}
	if err := requested.Validate(); err != nil {
		return Unknown, err
	}

	// Vendor cancellation is an edge from every non-terminal status.
	if requested == CanceledByVendor {
		if current.IsTerminal() || role != actor.RoleVendorAdmin {
			return Unknown, errs.NewInvalidTransitionError(current.String(), requested.String(), string(role))
		}
		return CanceledByVendor, nil
	}

	roles, ok := allowedTransitions[transitionEdge{from: current, to: requested}]
	if !ok {
		return Unknown, errs.NewInvalidTransitionError(current.String(), requested.String(), string(role))
	}
	for _, allowed := range roles {
		if allowed == role {
			return requested, nil
		}
	}
	return Unknown, errs.NewInvalidTransitionError(current.String(), requested.String(), string(role))
}
