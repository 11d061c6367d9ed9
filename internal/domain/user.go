package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	Nationality  *string    `json:"nationality,omitempty" db:"nationality"`
	PassportNo   *string    `json:"passport_number,omitempty" db:"passport_number"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Role         string     `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleOfficer UserRole = "officer"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleOfficer, RoleAdmin:
		return true
	default:
		return false
	}
}

// HasRole reports whether the user's role meets the required level. Roles
// form a ladder: admin covers officer checks, officer covers user checks.
func (u *User) HasRole(requiredRole string) bool {
	switch requiredRole {
	case "admin":
		return u.Role == "admin"
	case "officer":
		return u.Role == "officer" || u.Role == "admin"
	case "user":
		return u.Role == "user" || u.Role == "officer" || u.Role == "admin"
	default:
		return false
	}
}

func (u *User) IsStaff() bool {
	return u.Role == string(RoleOfficer) || u.Role == string(RoleAdmin)
}

// Actor identifies the authenticated caller of a service operation. Services
// never read the caller from ambient state: whoever invokes an operation must
// say who is acting.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == string(RoleAdmin)
}

func (a Actor) IsStaff() bool {
	return a.Role == string(RoleOfficer) || a.Role == string(RoleAdmin)
}

type RegisterInput struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName string  `json:"first_name" validate:"required,min=1,max=60"`
	LastName  string  `json:"last_name" validate:"required,min=1,max=60"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	FirstName   *string        `json:"first_name,omitempty" validate:"omitempty,min=1,max=60"`
	LastName    *string        `json:"last_name,omitempty" validate:"omitempty,min=1,max=60"`
	Phone       NullableString `json:"phone,omitempty"`
	Nationality NullableString `json:"nationality,omitempty"`
	PassportNo  NullableString `json:"passport_number,omitempty"`
	DateOfBirth NullableTime   `json:"date_of_birth,omitempty"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// AdminUpdateUserInput is the allow-listed field set for admin user edits.
// Email and password never change through this path.
type AdminUpdateUserInput struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=user officer admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthResponse struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}
