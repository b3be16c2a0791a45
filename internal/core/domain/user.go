package domain

import (
	"errors"
	"time"
)

// Role discriminates the three kinds of accounts sharing the users collection.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
	RoleNanny  Role = "nanny"
)

// ValidRole reports whether r is one of the known account roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleClient, RoleNanny:
		return true
	}
	return false
}

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRole = errors.New("invalid role")
var ErrWeakPassword = errors.New("password does not meet the minimum policy")
var ErrEmailTaken = errors.New("email already registered")
var ErrUserNotFound = errors.New("user not found")
var ErrForbidden = errors.New("access forbidden")

// User models a registered account. Emails are stored lower-cased and are
// unique across all roles.
type User struct {
	ID           int64     `json:"id" bson:"_id"`
	FirstName    string    `json:"first_name" bson:"first_name"`
	LastName     string    `json:"last_name" bson:"last_name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role"`
	Active       bool      `json:"active" bson:"active"`
	Verified     bool      `json:"verified" bson:"verified"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// DisplayName is the "First Last" form used on admin listings.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
