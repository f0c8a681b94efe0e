package domain

import "time"

// UserRole account role
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User an operator-visible account
type User struct {
	ID          string     `json:"id"`
	LoginID     string     `json:"loginId"`
	Name        string     `json:"name"`
	Nickname    string     `json:"nickname"`
	Role        UserRole   `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}

// Locked reports whether the account is currently locked.
// lockedUntil is server-authoritative; this only drives the indicator.
func (u *User) Locked() bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}

// CreateUserRequest payload for POST /users
type CreateUserRequest struct {
	LoginID  string   `json:"loginId" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Nickname string   `json:"nickname" validate:"required"`
	Role     UserRole `json:"role" validate:"required,oneof=ADMIN USER"`
	Password string   `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest payload for PATCH /users/:id
type UpdateUserRequest struct {
	Name     string   `json:"name,omitempty"`
	Nickname string   `json:"nickname,omitempty"`
	Role     UserRole `json:"role,omitempty"`
}

// Profile the operator's own profile
type Profile struct {
	ID       string `json:"id"`
	LoginID  string `json:"loginId"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// UpdateProfileRequest payload for PATCH /users/me/profile
type UpdateProfileRequest struct {
	Name     string `json:"name,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// LoginRequest payload for POST /auth/login. Remember selects the
// token storage tier and never leaves the console.
type LoginRequest struct {
	LoginID  string `json:"loginId" validate:"required"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"-"`
}

// LoginResponse response of POST /auth/login
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
