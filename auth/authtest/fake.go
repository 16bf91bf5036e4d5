// ABOUTME: In-memory identity provider for tests of views that gate on sign-in
// ABOUTME: Accepts one email/password pair and publishes events like the real provider
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/pubsub"
)

type Fake struct {
	Email    string
	Password string
	UID      string

	// SignOutErr, when set, makes SignOut fail.
	SignOutErr error

	mu     sync.Mutex
	user   *auth.User
	broker *pubsub.Broker[auth.Event]
}

// New returns a signed-out fake that accepts email and password.
func New(email, password string) *Fake {
	return &Fake{
		Email:    email,
		Password: password,
		UID:      "uid-" + email,
		broker:   pubsub.NewBroker[auth.Event](),
	}
}

// SignedIn returns a fake with a user already signed in.
func SignedIn(email string) *Fake {
	f := New(email, "password")
	f.user = f.newUser()
	return f
}

func (f *Fake) newUser() *auth.User {
	return &auth.User{UID: f.UID, Email: f.Email, ExpiresAt: time.Now().Add(time.Hour)}
}

func (f *Fake) Configured() bool { return true }

func (f *Fake) Subscribe(ctx context.Context) <-chan auth.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.broker.Subscribe(ctx, f.eventLocked())
}

func (f *Fake) CurrentUser() *auth.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil
	}
	u := *f.user
	return &u
}

func (f *Fake) SignIn(ctx context.Context, email, password string) (*auth.User, error) {
	if email != f.Email || password != f.Password {
		return nil, &auth.AuthError{Op: "sign in", Message: "the email or password is incorrect"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = f.newUser()
	f.broker.Publish(f.eventLocked())
	u := *f.user
	return &u, nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	if f.SignOutErr != nil {
		return &auth.AuthError{Op: "sign out", Message: f.SignOutErr.Error(), Err: f.SignOutErr}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
	f.broker.Publish(f.eventLocked())
	return nil
}

func (f *Fake) Restore(ctx context.Context) (*auth.User, error) {
	return f.CurrentUser(), nil
}

func (f *Fake) eventLocked() auth.Event {
	ev := auth.Event{Configured: true}
	if f.user != nil {
		u := *f.user
		ev.User = &u
	}
	return ev
}
