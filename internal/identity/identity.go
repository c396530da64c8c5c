package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrInvalidToken       = errors.New("invalid token")
)

// Identity is the authenticated principal as reported by the provider.
// Role is deliberately absent: it belongs to the persisted user record and is
// derived by the session manager.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	Verified    bool   `json:"emailVerified"`
	DisplayName string `json:"displayName"`
}

// Provider defines the identity service as consumed by the application.
// Every login, signup, and sign-out publishes the resulting identity (nil on
// sign-out) to all subscribers.
type Provider interface {
	// CreateAccount registers a credential and returns the new identity
	// with a session token
	CreateAccount(ctx context.Context, email, password string) (*Identity, string, error)

	// Authenticate verifies a credential and returns the identity with a
	// session token
	Authenticate(ctx context.Context, email, password string) (*Identity, string, error)

	// SignOut ends the current session and notifies subscribers
	SignOut(ctx context.Context) error

	// Verify checks a session token and returns the identity it carries
	Verify(token string) (*Identity, error)

	// Subscribe returns a channel of identity changes and an unsubscribe
	// function. The channel is closed on unsubscribe.
	Subscribe() (<-chan *Identity, func())
}
