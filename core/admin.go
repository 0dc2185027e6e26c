package core

import "strings"

type (
	// AdminUser is an authenticated administrator identity.
	AdminUser struct {
		Name       string `json:"name"`
		SuperAdmin bool   `json:"superAdmin"`
	}
)

// NewAdminUser builds an admin identity from a trimmed name.
func NewAdminUser(name string, superAdmin bool) AdminUser {
	return AdminUser{Name: strings.TrimSpace(name), SuperAdmin: superAdmin}
}

// Matches reports whether two admin users are the same principal. Admin names
// compare case-insensitively.
func (a AdminUser) Matches(other AdminUser) bool {
	return strings.EqualFold(a.Name, other.Name)
}
