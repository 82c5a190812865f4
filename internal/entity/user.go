package entity

import (
	"context"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// User is a profile row. Identity (credentials) lives elsewhere.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// DisplayName is the name copied onto leads at assignment time.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if email := strings.TrimSpace(u.Email); email != "" {
		return email
	}
	return "Unnamed user"
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Actor is the caller performing a mutation.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
func (a Actor) IsAgent() bool { return a.Role == RoleAgent }

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*User, error)
	ListAgents(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id string) error
}

// IdentityProvider owns sign-in identities, separate from profile rows.
type IdentityProvider interface {
	DeleteIdentity(ctx context.Context, uid string) error
}
