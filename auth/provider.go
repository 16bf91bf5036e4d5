// ABOUTME: Identity session provider interface and shared types
// ABOUTME: New returns the hosted provider, or a permanently unavailable one when unconfigured
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/torque/config"
)

// ErrProviderUnavailable is returned by every operation when identity
// configuration is incomplete. The condition lasts for the process lifetime.
var ErrProviderUnavailable = errors.New("authentication is not configured")

const fallbackAuthMessage = "authentication failed"

// AuthError is a failed sign-in or sign-out. Message is safe to show users.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fallbackAuthMessage
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type User struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Event is pushed to subscribers on every session change. User is nil when
// signed out.
type Event struct {
	Configured bool
	User       *User
}

// Provider supplies sign-in, sign-out, and a push-based current user stream.
type Provider interface {
	// Configured reports whether identity configuration is complete.
	Configured() bool

	// Subscribe fires immediately with the current session and again after
	// every change. The channel closes when ctx is done.
	Subscribe(ctx context.Context) <-chan Event

	CurrentUser() *User
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error

	// Restore reloads a persisted session, refreshing it if expired. It
	// returns nil without error when nothing was persisted.
	Restore(ctx context.Context) (*User, error)
}

// New builds the provider for cfg. An incomplete cfg yields the unavailable
// provider and no error.
func New(ctx context.Context, cfg config.IdentityConfig, opts ...Option) (Provider, error) {
	if !cfg.IsConfigured() {
		settings := newSettings(opts)
		settings.logger.Warn("identity provider not configured", "missing", cfg.Missing())
		return Unavailable(), nil
	}
	return NewFirebase(ctx, cfg, opts...)
}

// ErrNotSignedIn is returned by RequireUser when the provider is configured
// but nobody is signed in.
var ErrNotSignedIn = errors.New("not signed in")

// RequireUser gates a view on the provider: unconfigured providers yield
// ErrProviderUnavailable, signed-out ones ErrNotSignedIn.
func RequireUser(p Provider) (*User, error) {
	if p == nil || !p.Configured() {
		return nil, ErrProviderUnavailable
	}
	user := p.CurrentUser()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	return user, nil
}
