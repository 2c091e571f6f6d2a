package domain

// Role is one of the six closed authorization levels a supply-chain account
// can hold. At most one role is stored per account; re-assigning requires an
// explicit delete first.
type Role uint8

// Supply-chain roles in ordinal order. RoleAdministrator grants broad
// override authority; RoleShipper grants the location-only override.
const (
	RoleProducer Role = iota
	RoleWholesaler
	RoleRetailer
	RoleFinalBuyer
	RoleShipper
	RoleAdministrator
)

// Valid reports whether the role is within the closed enumeration.
func (r Role) Valid() bool { return r <= RoleAdministrator }

// String returns the canonical role name, or "unknown" for out-of-range values.
func (r Role) String() string {
	switch r {
	case RoleProducer:
		return "producer"
	case RoleWholesaler:
		return "wholesaler"
	case RoleRetailer:
		return "retailer"
	case RoleFinalBuyer:
		return "final_buyer"
	case RoleShipper:
		return "shipper"
	case RoleAdministrator:
		return "administrator"
	default:
		return "unknown"
	}
}

// RoleFromOrdinal maps a wire-level ordinal onto the closed enumeration. The
// second return is false for ordinals outside [0,5].
func RoleFromOrdinal(n uint32) (Role, bool) {
	if n > uint32(RoleAdministrator) {
		return 0, false
	}
	return Role(n), true
}
