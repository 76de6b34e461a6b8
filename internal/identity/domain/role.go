package domain

import "fmt"

// Role is the closed set of account roles. The original data carried two
// role vocabularies that drifted apart; this enumeration is the canonical
// replacement, and every comparison goes through it rather than through raw
// strings so a new role cannot be half-wired.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleShopOwner Role = "shop_owner"
	RoleRider     Role = "rider"
	RoleCustomer  Role = "customer"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleShopOwner:
		return RoleShopOwner, nil
	case RoleRider:
		return RoleRider, nil
	case RoleCustomer:
		return RoleCustomer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// IsAdminTier reports whether the role carries administrator privileges.
func (r Role) IsAdminTier() bool {
	return r == RoleAdmin
}

// IsPrivileged reports whether the role may read resources it does not own.
// Managers get read access across the board but no destructive operations.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	case RoleShopOwner, RoleRider, RoleCustomer:
		return false
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }
