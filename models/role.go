// Package models contains domain entities and business models for the marketplace support system
package models

import "fmt"

// Role identifies which side of a ticket conversation an actor is on.
// The set is closed: buyers are "user", sellers are "store", staff is "admin".
type Role string

const (
	RoleUser  Role = "user"
	RoleStore Role = "store"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role tag coming from a token or a wire payload
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleStore, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether the role is one of the closed set
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleStore, RoleAdmin:
		return true
	}
	return false
}
