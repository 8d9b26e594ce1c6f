// Package actor defines the acting identity threaded explicitly through every
// engine call. The identity/session provider supplies the tuple; the engine
// trusts it and performs no credential verification itself.
package actor

import "kapgel/internal/core/domain/model/kernel"

// Role is the single primary role a user holds.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleVendorAdmin Role = "vendor_admin"
	RoleCourier     Role = "courier"
	RoleAdmin       Role = "admin"
)

// ParseRole maps a wire string to a Role. Unknown strings yield the zero Role,
// which every authorization rule denies.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleCustomer, RoleVendorAdmin, RoleCourier, RoleAdmin:
		return Role(s)
	default:
		return ""
	}
}

// Context carries who is acting on a request: the user, their role, and the
// role-specific bindings (owned vendors for a vendor admin, the courier
// identity for a courier). It replaces any ambient "current user" state.
type Context struct {
	UserID    kernel.UUID
	Role      Role
	VendorIDs []kernel.UUID
	CourierID *kernel.UUID
}

// OwnsVendor reports whether the actor administers the given vendor.
func (c Context) OwnsVendor(vendorID kernel.UUID) bool {
	for _, id := range c.VendorIDs {
		if id.IsEqual(vendorID) {
			return true
		}
	}
	return false
}

// IsCourier reports whether the actor is bound to the given courier identity.
func (c Context) IsCourier(courierID kernel.UUID) bool {
	return c.CourierID != nil && c.CourierID.IsEqual(courierID)
}
