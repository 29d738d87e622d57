// Package auth handles account registration, password checks and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/syncplan/internal/models"
)

// Authenticator registers accounts and checks credentials.
// PasswordAuthenticator is the only implementation; social login is not supported.
type Authenticator interface {
	// Register creates a new account. The email must be well formed and
	// not yet registered.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user when the credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before it is stored.
	ValidateCredential(credential string) error
}
