package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/syncplan/internal/models"
	"github.com/mmynk/syncplan/internal/storage"
)

// memoryUsers is an in-memory storage.UserStore.
type memoryUsers struct {
	byID map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return storage.ErrAlreadyExists
		}
	}
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memoryUsers) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"alice@example.com", true},
		{"a.b+tag@mail.example.co", true},
		{" bob@example.org ", true},
		{"alice", false},
		{"alice@", false},
		{"alice@example", false},
		{"@example.com", false},
		{"alice@-example.com", false},
		{"al ice@example.com", false},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateEmail(%q) = %v, want valid=%v", tt.email, err, tt.valid)
		}
	}
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryUsers()).WithCost(bcrypt.MinCost)

	user, err := a.Register(ctx, "alice@example.com", " Alice ", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.DisplayName != "Alice" || user.PasswordHash == "correct horse" {
		t.Errorf("Unexpected user %+v", user)
	}

	registerTests := []struct {
		name     string
		email    string
		display  string
		password string
		wantErr  error
	}{
		{"duplicate email", "alice@example.com", "Alice 2", "password123", ErrEmailExists},
		{"bad email", "alice.example.com", "Alice", "password123", ErrInvalidEmail},
		{"short password", "bob@example.com", "Bob", "short", ErrWeakPassword},
		{"missing name", "bob@example.com", "  ", "password123", ErrMissingName},
	}
	for _, tt := range registerTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, tt.display, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := a.Authenticate(ctx, "alice@example.com", "correct horse")
	if err != nil || got.ID != user.ID {
		t.Fatalf("Authenticate = %v, %v", got, err)
	}
	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	user := &models.User{ID: "u1", Email: "alice@example.com"}
	token, expiresAt, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expiresAt = %v", expiresAt)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "alice@example.com" || claims.ID == "" {
		t.Errorf("Unexpected claims %+v", claims)
	}

	if _, err := NewJWTManager("other-secret", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret: %v", err)
	}
	if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: %v", err)
	}

	m.Revoke(claims)
	if _, err := m.Validate(token); !errors.Is(err, ErrRevokedToken) {
		t.Errorf("revoked token: %v", err)
	}

	fresh, _, _ := m.Generate(user)
	now = now.Add(2 * time.Hour)
	if _, err := m.Validate(fresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: %v", err)
	}
}
