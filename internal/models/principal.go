package models

import "github.com/google/uuid"

// Principal is the authenticated caller, built from validated token claims
// and passed explicitly into every core operation.
type Principal struct {
	UserID uuid.UUID
	Roles  []Role
}

// HasRole checks if the principal carries any of the given roles
func (p Principal) HasRole(roles ...Role) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsAdministrative reports whether the principal may act on resources owned by others
func (p Principal) IsAdministrative() bool {
	for _, r := range p.Roles {
		if r.IsAdministrative() {
			return true
		}
	}
	return false
}

// CanAccess reports whether the principal owns the resource or administers it
func (p Principal) CanAccess(ownerID uuid.UUID) bool {
	return p.UserID == ownerID || p.IsAdministrative()
}
