// ABOUTME: Functional options for the identity provider
// ABOUTME: Tests use them to point the provider at local fakes
package auth

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/harperreed/torque/logging"
)

type Option func(*settings)

type settings struct {
	logger     *log.Logger
	store      TokenStore
	keySet     oidc.KeySet
	endpoint   string
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithStore persists sessions across runs. Without it sessions live in memory.
func WithStore(store TokenStore) Option {
	return func(s *settings) { s.store = store }
}

// WithKeySet replaces Google's published signing keys.
func WithKeySet(ks oidc.KeySet) Option {
	return func(s *settings) { s.keySet = ks }
}

// WithEndpoint overrides the Identity Toolkit base URL.
func WithEndpoint(url string) Option {
	return func(s *settings) { s.endpoint = url }
}

// WithTokenURL overrides the Secure Token refresh URL. The API key is appended.
func WithTokenURL(url string) Option {
	return func(s *settings) { s.tokenURL = url }
}

// WithHTTPClient sets the client used for token refresh.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}
