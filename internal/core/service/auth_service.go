package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nannyslm/platform-api/internal/core/domain"
	"github.com/nannyslm/platform-api/internal/core/ports"
)

// dummyHash is compared against when the email is unknown so that a failed
// login costs the same whether the account exists or not.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService implements registration and login.
type AuthService struct {
	users     ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Register creates a new account. The password must satisfy the minimum
// policy and the email must not be registered yet; emails are folded to
// lower case before both the lookup and the insert.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if !domain.ValidRole(input.Role) {
		return nil, fmt.Errorf("register: unknown role %q: %w", input.Role, domain.ErrInvalidRole)
	}
	if !passwordMeetsPolicy(input.Password) {
		return nil, domain.ErrWeakPassword
	}

	email := normalizeEmail(input.Email)

	// Pre-check for a friendlier error; the unique index on email is the
	// authoritative guard under concurrent registration.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		Role:         input.Role,
		Active:       true,
		Verified:     false,
		RegisteredAt: now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		// A concurrent registration with the same email loses the race at
		// the store and comes back as ErrEmailTaken.
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// RegisterNanny forces the nanny role before delegating to Register.
func (s *AuthService) RegisterNanny(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Role = domain.RoleNanny
	return s.Register(ctx, input)
}

// RegisterClient forces the client role before delegating to Register.
func (s *AuthService) RegisterClient(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Role = domain.RoleClient
	return s.Register(ctx, input)
}

// Login verifies credentials and issues a bearer token. A missing account and
// a wrong password yield the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return &ports.LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        user,
	}, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.Email,
		"role": string(user.Role),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// passwordMeetsPolicy enforces: at least 8 characters (runes, not bytes),
// at least one upper-case letter, one lower-case letter and one digit.
func passwordMeetsPolicy(password string) bool {
	if utf8.RuneCountInString(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
