package models

import "strings"

// Role is a capability tag carried in the access token claims
type Role string

const (
	RolePassenger    Role = "PASSENGER"
	RoleDriver       Role = "DRIVER"
	RoleAdmin        Role = "ADMIN"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
)

// ParseRole normalizes a role claim. Unknown roles return false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RolePassenger, RoleDriver, RoleAdmin, RoleCompanyAdmin:
		return r, true
	default:
		return "", false
	}
}

// IsAdministrative reports whether the role may act on resources it does not own
func (r Role) IsAdministrative() bool {
	return r == RoleAdmin || r == RoleCompanyAdmin
}
