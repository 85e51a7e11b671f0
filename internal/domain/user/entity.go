package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches users.role check)
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User represents a user account (matches users table)
type User struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	Username     string         `db:"username"`
	DisplayName  sql.NullString `db:"display_name"`
	Bio          sql.NullString `db:"bio"`
	PasswordHash string         `db:"password_hash"`
	Role         Role           `db:"role"`
	IsBanned     bool           `db:"is_banned"`

	// Login tracking
	LastLoginAt sql.NullTime `db:"last_login_at"`

	// Timestamps
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Name returns the display name, falling back to the username
func (u *User) Name() string {
	if u.DisplayName.Valid && u.DisplayName.String != "" {
		return u.DisplayName.String
	}
	return u.Username
}
