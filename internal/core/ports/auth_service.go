package ports

import (
	"context"

	"github.com/nannyslm/platform-api/internal/core/domain"
)

// RegisterInput carries the data needed to create a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Role      domain.Role
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	AccessToken string
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64
	User      *domain.User
}

// AuthService defines the registration and login use cases.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// RegisterNanny and RegisterClient force the role before delegating to Register.
	RegisterNanny(ctx context.Context, input RegisterInput) (*domain.User, error)
	RegisterClient(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
