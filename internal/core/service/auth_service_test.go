package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nannyslm/platform-api/internal/core/domain"
	"github.com/nannyslm/platform-api/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.users[copy.Email] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindNannyByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id && u.Role == domain.RoleNanny {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNannyNotFound
}

func (r *stubUserRepo) CountNannies(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == domain.RoleNanny {
			n++
		}
	}
	return n, nil
}

func registerInput(email string, role domain.Role) ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: "Ana",
		LastName:  "López",
		Email:     email,
		Password:  "Sup3rSecret",
		Phone:     "+52 55 0000 0000",
		Role:      role,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	user, err := svc.Register(context.Background(), registerInput("Ana@Example.com", domain.RoleClient))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("expected lower-cased email, got %q", user.Email)
	}
	if user.PasswordHash == "Sup3rSecret" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Sup3rSecret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !user.Active || user.Verified {
		t.Fatalf("expected active and unverified, got active=%v verified=%v", user.Active, user.Verified)
	}
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	for _, password := range []string{
		"Ab1",        // too short
		"Añ1xxxx",    // 7 characters but 8 bytes; length counts runes
		"alllower1x", // no upper
		"ALLUPPER1X", // no lower
		"NoDigitsHere",
	} {
		input := registerInput("weak@example.com", domain.RoleClient)
		input.Password = password
		if _, err := svc.Register(context.Background(), input); err != domain.ErrWeakPassword {
			t.Errorf("password %q: expected ErrWeakPassword, got %v", password, err)
		}
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	if _, err := svc.Register(context.Background(), registerInput("x@example.com", "superuser")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	if _, err := svc.Register(context.Background(), registerInput("bob@example.com", domain.RoleClient)); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), registerInput("BOB@example.com", domain.RoleClient)); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

// raceUserRepo simulates a concurrent registration winning between the
// service's pre-check and its insert.
type raceUserRepo struct {
	stubUserRepo
}

func (r *raceUserRepo) FindByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func TestAuthService_Register_DuplicateEmailRace(t *testing.T) {
	repo := &raceUserRepo{stubUserRepo: *newStubUserRepo()}
	repo.users["bob@example.com"] = &domain.User{ID: 1, Email: "bob@example.com"}

	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())
	if _, err := svc.Register(context.Background(), registerInput("bob@example.com", domain.RoleClient)); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken from storage, got %v", err)
	}
}

func TestAuthService_RegisterNanny_ForcesRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	user, err := svc.RegisterNanny(context.Background(), registerInput("nanny@example.com", domain.RoleAdmin))
	if err != nil {
		t.Fatalf("RegisterNanny returned error: %v", err)
	}
	if user.Role != domain.RoleNanny {
		t.Fatalf("expected nanny role, got %s", user.Role)
	}

	user, err = svc.RegisterClient(context.Background(), registerInput("client@example.com", domain.RoleAdmin))
	if err != nil {
		t.Fatalf("RegisterClient returned error: %v", err)
	}
	if user.Role != domain.RoleClient {
		t.Fatalf("expected client role, got %s", user.Role)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", 30*time.Minute, zerolog.Nop())

	if _, err := svc.Register(context.Background(), registerInput("carol@example.com", domain.RoleAdmin)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), "Carol@Example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected token, got empty")
	}
	if result.ExpiresIn != 1800 {
		t.Fatalf("expected 1800 seconds, got %d", result.ExpiresIn)
	}
	if result.User == nil || result.User.Email != "carol@example.com" {
		t.Fatalf("unexpected user: %+v", result.User)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(result.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != "carol@example.com" {
		t.Fatalf("expected email subject, got %v", claims["sub"])
	}
	if claims["role"] != string(domain.RoleAdmin) {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	_, _ = svc.Register(context.Background(), registerInput("dave@example.com", domain.RoleClient))

	// Wrong password and unknown account must be indistinguishable.
	if _, err := svc.Login(context.Background(), "dave@example.com", "WrongPass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ghost@example.com", "WrongPass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("unknown account: expected ErrInvalidCredentials, got %v", err)
	}
}
