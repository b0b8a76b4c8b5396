package model

import "fmt"

// Role is the closed set of portal roles. Authorization decisions switch
// exhaustively over these values so a new role cannot slip through a gate
// unnoticed.
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role string coming from a request or a stored row.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleEmployee, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the known portal roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// In reports whether the role is contained in the given allow-list.
func (r Role) In(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
