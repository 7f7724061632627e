package domain

import (
	"errors"
	"fmt"
)

// Role is the closed set of account kinds on the marketplace.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleParent    Role = "parent"
	RoleNanny     Role = "nanny"
	RoleVendor    Role = "vendor"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole validates a role string from the upstream API.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleParent, RoleNanny, RoleVendor:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is a member of the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// IsStaff reports whether the role may operate the admin console.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// ProfilePanel names the console detail panel rendered for an account of
// this role. Dispatch is an exhaustive switch over the closed set rather
// than runtime type inspection.
func (r Role) ProfilePanel() string {
	switch r {
	case RoleAdmin:
		return "panel-admin"
	case RoleModerator:
		return "panel-moderator"
	case RoleParent:
		return "panel-parent"
	case RoleNanny:
		return "panel-nanny"
	case RoleVendor:
		return "panel-vendor"
	default:
		return "panel-unknown"
	}
}

func (r Role) String() string { return string(r) }
