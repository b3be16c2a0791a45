package handler

import (
	"time"

	"github.com/nannyslm/platform-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the envelope for plain acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required"`
	Phone     string `json:"phone"      validate:"omitempty,max=20"`
	Role      string `json:"role"       validate:"omitempty,oneof=admin client nanny"`
}

// userResponse is the public view of an account; the password digest never
// leaves the service layer.
type userResponse struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	Verified     bool      `json:"verified"`
	RegisteredAt time.Time `json:"registered_at"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        userResponse `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         string(u.Role),
		Active:       u.Active,
		Verified:     u.Verified,
		RegisteredAt: u.RegisteredAt,
	}
}
