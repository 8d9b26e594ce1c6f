package services

import (
	"kapgel/internal/core/domain/model/actor"
	"kapgel/internal/core/domain/model/order"
)

// Action is an operation an actor may attempt on an order.
type Action string

const (
	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionUpdate     Action = "update"
	ActionTransition Action = "transition"
)

// AccessPolicy decides (role, relationship-to-resource, action) -> allow/deny.
// It is a pure function over the actor context and the order's authorization
// projection: no I/O, no stored state, unit-testable in isolation and portable
// to any store.
//
// Rules:
//   - admin: always allowed
//   - no role: always denied
//   - customer: create always; read/update/transition only on own orders
//   - vendor_admin: read/update/transition only on orders of owned vendors
//   - courier: read/update/transition only while holding the delivery lease
type AccessPolicy struct{}

// NewAccessPolicy creates the policy. It carries no state; the constructor
// exists for symmetry with the other domain services.
func NewAccessPolicy() AccessPolicy {
	return AccessPolicy{}
}

// CanAccess reports whether the actor may perform the action on the order.
// Callers that deny must surface the result the same way as a missing object
// so the existence of another party's orders does not leak.
func (AccessPolicy) CanAccess(a actor.Context, ref order.Ref, action Action) bool {
	switch a.Role {
	case actor.RoleAdmin:
		return true
	case actor.RoleCustomer:
		if action == ActionCreate {
			return true
		}
		return ref.CustomerID.IsEqual(a.UserID)
	case actor.RoleVendorAdmin:
		if action == ActionCreate {
			return false
		}
		return a.OwnsVendor(ref.VendorID)
	case actor.RoleCourier:
		if action == ActionCreate {
			return false
		}
		return ref.CourierID != nil && a.IsCourier(*ref.CourierID)
	default:
		return false
	}
}
