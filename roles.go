package auth

import "strings"

// UserRole is the kind of user an account represents
type UserRole = string

const (
	// RoleArtist offers work on the platform
	RoleArtist UserRole = "ARTIST"
	// RoleCustomer hires artists
	RoleCustomer UserRole = "CUSTOMER"
)

// Roles is the closed set accepted at signup
var Roles = []UserRole{RoleArtist, RoleCustomer}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

func rolesList() string {
	return strings.Join(Roles, ", ")
}
