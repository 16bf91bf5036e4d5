// ABOUTME: Provider used when identity configuration is missing
// ABOUTME: Every operation fails with ErrProviderUnavailable
package auth

import "context"

type unavailable struct{}

// Unavailable returns a provider that is permanently not configured.
func Unavailable() Provider {
	return unavailable{}
}

func (unavailable) Configured() bool { return false }

func (unavailable) CurrentUser() *User { return nil }

// Subscribe reports the unconfigured state once and closes when ctx is done.
func (unavailable) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 1)
	ch <- Event{Configured: false}
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func (unavailable) SignIn(ctx context.Context, email, password string) (*User, error) {
	return nil, ErrProviderUnavailable
}

func (unavailable) SignOut(ctx context.Context) error {
	return ErrProviderUnavailable
}

func (unavailable) Restore(ctx context.Context) (*User, error) {
	return nil, ErrProviderUnavailable
}
