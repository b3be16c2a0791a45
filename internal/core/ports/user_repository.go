package ports

import (
	"context"

	"github.com/nannyslm/platform-api/internal/core/domain"
)

// UserRepository defines the persistence operations for user accounts.
type UserRepository interface {
	// Create inserts a new user and returns it with its assigned id.
	// A storage-level uniqueness violation on email is surfaced as
	// domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail retrieves a user by its lower-cased email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindNannyByID retrieves a user that exists AND has the nanny role;
	// anything else is domain.ErrNannyNotFound.
	FindNannyByID(ctx context.Context, id int64) (*domain.User, error)
	// CountNannies returns the total number of nanny accounts.
	CountNannies(ctx context.Context) (int64, error)
}
