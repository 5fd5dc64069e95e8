package models

import (
	"time"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account in the system
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Active       bool      `json:"is_active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ValidRoles defines allowed user roles
var ValidRoles = map[string]bool{
	RoleAdmin: true,
	RoleUser:  true,
}

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts a username or an email in Username
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// ChangePasswordRequest is the payload for PUT /api/auth/password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UpdateUserRequest carries the admin-editable user fields
type UpdateUserRequest struct {
	Role   *string `json:"role"`
	Active *bool   `json:"is_active"`
}

// AuthResult is returned by register, login and refresh
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
