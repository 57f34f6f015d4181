package domain

import (
	"context"
	"strings"
	"time"
)

// Role is the closed set of principal roles.
type Role string

const (
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", Validation("role must be one of: user, vendor, admin")
	}
	return r, nil
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,max=100"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role" validate:"required,oneof=user vendor admin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the public projection of a user joined onto vendors and bookings.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Principal is the authenticated actor of a request.
type Principal struct {
	ID       string
	Role     Role
	VendorID string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, q ListQuery) ([]User, int64, error)
	// Update writes name, email and password hash. Role is only changed by SetRole.
	Update(ctx context.Context, user *User) error
	SetRole(ctx context.Context, id string, role Role) error
	Delete(ctx context.Context, id string) error
	// GetMany resolves a set of ids in one round trip; unknown ids are skipped.
	GetMany(ctx context.Context, ids []string) (map[string]*User, error)
}
