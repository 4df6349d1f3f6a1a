package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of authorisation tiers.
type Role int

const (
	RoleEmployee Role = iota + 1
	RoleManager
	RoleAdmin
)

// String returns the upper-case role name shown to users.
func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "EMPLOYEE"
	case RoleManager:
		return "MANAGER"
	case RoleAdmin:
		return "ADMIN"
	}
	return "UNKNOWN"
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r >= RoleEmployee && r <= RoleAdmin
}

// ParseRole converts a case-insensitive role name.
func ParseRole(value string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "EMPLOYEE":
		return RoleEmployee, nil
	case "MANAGER":
		return RoleManager, nil
	case "ADMIN":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("auth: unknown role %q", value)
}

// Principal is an authenticated actor.
type Principal struct {
	ID   string
	Role Role
}
