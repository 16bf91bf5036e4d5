// ABOUTME: Hosted identity provider backed by Firebase Authentication
// ABOUTME: Signs in via Identity Toolkit, refreshes via Secure Token, verifies ID tokens with OIDC
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/metrics"
	"github.com/harperreed/torque/pubsub"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const (
	googleKeysURL   = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	issuerPrefix    = "https://securetoken.google.com/"
	defaultTokenURL = "https://securetoken.googleapis.com/v1/token"
)

// providerMessages turns Identity Toolkit error codes into readable text.
// Unknown codes are shown as sent.
var providerMessages = map[string]string{
	"EMAIL_NOT_FOUND":             "no account exists for that email",
	"INVALID_PASSWORD":            "the password is incorrect",
	"INVALID_LOGIN_CREDENTIALS":   "the email or password is incorrect",
	"INVALID_EMAIL":               "the email address is not valid",
	"MISSING_PASSWORD":            "a password is required",
	"USER_DISABLED":               "this account has been disabled",
	"TOKEN_EXPIRED":               "the session has expired, sign in again",
	"INVALID_REFRESH_TOKEN":       "the session is no longer valid, sign in again",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "too many attempts, try again later",
}

type Firebase struct {
	cfg      config.IdentityConfig
	accounts *identitytoolkit.Service
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	store    TokenStore
	logger   *log.Logger
	http     *http.Client
	broker   *pubsub.Broker[Event]

	mu      sync.Mutex
	user    *User
	session *StoredSession
}

// NewFirebase builds the hosted provider. cfg must be complete.
func NewFirebase(ctx context.Context, cfg config.IdentityConfig, opts ...Option) (*Firebase, error) {
	if !cfg.IsConfigured() {
		return nil, ErrProviderUnavailable
	}
	s := newSettings(opts)

	serviceOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if s.endpoint != "" {
		serviceOpts = append(serviceOpts, option.WithEndpoint(s.endpoint))
	}
	accounts, err := identitytoolkit.NewService(ctx, serviceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity service: %w", err)
	}

	tokenURL := s.tokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	keys := s.keySet
	if keys == nil {
		keys = oidc.NewRemoteKeySet(context.WithoutCancel(ctx), googleKeysURL)
	}

	store := s.store
	if store == nil {
		store = &memoryStore{}
	}

	return &Firebase{
		cfg:      cfg,
		accounts: accounts,
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL + "?key=" + url.QueryEscape(cfg.APIKey),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		verifier: oidc.NewVerifier(issuerPrefix+cfg.ProjectID, keys, &oidc.Config{
			ClientID: cfg.ProjectID,
			Now:      s.now,
		}),
		store:  store,
		logger: s.logger,
		http:   s.httpClient,
		broker: pubsub.NewBroker[Event](),
	}, nil
}

func (p *Firebase) Configured() bool { return true }

func (p *Firebase) Subscribe(ctx context.Context) <-chan Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.broker.Subscribe(ctx, p.eventLocked())
}

func (p *Firebase) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyUser(p.user)
}

// SignIn exchanges an email and password for a verified session.
func (p *Firebase) SignIn(ctx context.Context, email, password string) (*User, error) {
	resp, err := p.accounts.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		metrics.ObserveAuth("sign_in", err)
		p.logger.Warn("sign in failed", "email", email, "err", err)
		return nil, providerError("sign in", err)
	}

	user, err := p.verify(ctx, resp.IdToken)
	metrics.ObserveAuth("sign_in", err)
	if err != nil {
		return nil, &AuthError{Op: "sign in", Message: "the identity token could not be verified", Err: err}
	}
	if user.DisplayName == "" {
		user.DisplayName = resp.DisplayName
	}

	p.establish(user, &StoredSession{
		UID:          user.UID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		Expiry:       user.ExpiresAt,
	})
	p.logger.Info("signed in", "email", user.Email)
	return copyUser(user), nil
}

// SignOut ends the session locally. Firebase ID tokens are stateless, so
// there is no remote revocation.
func (p *Firebase) SignOut(ctx context.Context) error {
	err := p.store.Clear()
	metrics.ObserveAuth("sign_out", err)
	if err != nil {
		return &AuthError{Op: "sign out", Message: "failed to clear the saved session", Err: err}
	}

	p.mu.Lock()
	wasSignedIn := p.user != nil
	p.user = nil
	p.session = nil
	p.broker.Publish(p.eventLocked())
	p.mu.Unlock()

	if wasSignedIn {
		p.logger.Info("signed out")
	}
	return nil
}

// Restore loads the persisted session. An expired ID token is refreshed once
// through the Secure Token endpoint.
func (p *Firebase) Restore(ctx context.Context) (*User, error) {
	stored, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if stored == nil {
		return nil, nil
	}

	user, verifyErr := p.verify(ctx, stored.IDToken)
	if verifyErr != nil {
		var expired *oidc.TokenExpiredError
		if !errors.As(verifyErr, &expired) {
			return nil, &AuthError{Op: "restore", Message: "the saved session is not valid", Err: verifyErr}
		}

		refreshed, err := p.refresh(ctx, stored)
		metrics.ObserveAuth("refresh", err)
		if err != nil {
			return nil, err
		}
		stored = refreshed

		user, err = p.verify(ctx, stored.IDToken)
		if err != nil {
			return nil, &AuthError{Op: "restore", Message: "the refreshed session is not valid", Err: err}
		}
	}

	stored.UID = user.UID
	stored.Email = user.Email
	stored.Expiry = user.ExpiresAt
	if user.DisplayName == "" {
		user.DisplayName = stored.DisplayName
	}

	p.establish(user, stored)
	p.logger.Debug("restored session", "email", user.Email)
	return copyUser(user), nil
}

func (p *Firebase) refresh(ctx context.Context, stored *StoredSession) (*StoredSession, error) {
	if stored.RefreshToken == "" {
		return nil, &AuthError{Op: "refresh", Message: providerMessages["TOKEN_EXPIRED"]}
	}

	if p.http != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.http)
	}

	// An empty access token forces the source to refresh immediately.
	tok, err := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: stored.RefreshToken}).Token()
	if err != nil {
		return nil, refreshError(err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, &AuthError{Op: "refresh", Message: "the identity provider returned no ID token"}
	}

	next := *stored
	next.IDToken = idToken
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}
	return &next, nil
}

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (p *Firebase) verify(ctx context.Context, raw string) (*User, error) {
	token, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	var claims tokenClaims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode token claims: %w", err)
	}

	return &User{
		UID:         token.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		ExpiresAt:   token.Expiry,
	}, nil
}

// establish installs a session, persists it, and notifies subscribers.
// Persistence failures keep the in-memory session.
func (p *Firebase) establish(user *User, stored *StoredSession) {
	if err := p.store.Save(stored); err != nil {
		p.logger.Warn("failed to save session", "err", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.user = user
	p.session = stored
	p.broker.Publish(p.eventLocked())
}

func (p *Firebase) eventLocked() Event {
	return Event{Configured: true, User: copyUser(p.user)}
}

func providerError(op string, err error) *AuthError {
	msg := fallbackAuthMessage
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		msg = humanize(gerr.Message)
	}
	return &AuthError{Op: op, Message: msg, Err: err}
}

func refreshError(err error) *AuthError {
	msg := fallbackAuthMessage
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		// Secure Token reports errors in the Google API shape, not RFC 6749.
		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		switch {
		case rerr.ErrorCode != "":
			msg = humanize(rerr.ErrorCode)
		case json.Unmarshal(rerr.Body, &body) == nil && body.Error.Message != "":
			msg = humanize(body.Error.Message)
		}
	}
	return &AuthError{Op: "refresh", Message: msg, Err: err}
}

// humanize maps a provider code such as "INVALID_PASSWORD" or
// "TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled" to display text.
func humanize(code string) string {
	key := strings.TrimSpace(code)
	if i := strings.Index(key, " "); i > 0 {
		key = key[:i]
	}
	if msg, ok := providerMessages[strings.ToUpper(key)]; ok {
		return msg
	}
	return code
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
