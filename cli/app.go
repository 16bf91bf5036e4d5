// ABOUTME: Shared state for CLI commands
// ABOUTME: Wires config, storage, the identity provider, and the contact sync session
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/torque/auth"
	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/db"
	"github.com/harperreed/torque/sync"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// App carries what every command needs. Out and In default to the process
// stdio and are swapped in tests.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	DB      *sql.DB
	Auth    auth.Provider
	Session *sync.Session
	Version string

	Out io.Writer
	In  io.Reader
}

// NewApp builds the provider and session and restores any saved sign-in.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger, database *sql.DB, version string) (*App, error) {
	provider, err := auth.New(ctx, cfg.Identity,
		auth.WithLogger(logger),
		auth.WithStore(auth.NewFileTokenStore(auth.TokenPath())),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity provider: %w", err)
	}

	if _, err := provider.Restore(ctx); err != nil && !errors.Is(err, auth.ErrProviderUnavailable) {
		logger.Warn("could not restore saved session", "err", err)
	}

	session := sync.NewSession(sync.NewClient(cfg.Directory),
		sync.WithRecorder(db.SyncRecorder{DB: database}),
		sync.WithLogger(logger),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DB:      database,
		Auth:    provider,
		Session: session,
		Version: version,
		Out:     os.Stdout,
		In:      os.Stdin,
	}, nil
}

// requireUser is the CLI's session gate.
func (a *App) requireUser() (*auth.User, error) {
	user, err := auth.RequireUser(a.Auth)
	switch {
	case errors.Is(err, auth.ErrProviderUnavailable):
		return nil, fmt.Errorf("%w (missing: %s)", err, strings.Join(a.Config.Identity.Missing(), ", "))
	case errors.Is(err, auth.ErrNotSignedIn):
		return nil, fmt.Errorf("%w: run 'torque auth login' first", err)
	}
	return user, err
}

// syncConfigured fetches the configured directory. It is skipped when no
// directory URL is set so commands fall back to demo contacts.
func (a *App) syncConfigured(ctx context.Context) error {
	if strings.TrimSpace(a.Config.Directory.BaseURL) == "" {
		_, _ = fmt.Fprintln(a.Out, "No contact directory configured (TORQUE_DIRECTORY_URL); showing demo contacts.")
		return nil
	}
	_, err := a.Session.Sync(ctx, a.Config.Directory.BaseURL, a.Config.Directory.APIKey)
	return err
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *App) prompt(reader *bufio.Reader, label string) (string, error) {
	_, _ = fmt.Fprint(a.Out, label)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword hides input on a terminal and reads a plain line otherwise.
func (a *App) promptPassword(reader *bufio.Reader) (string, error) {
	if f, ok := a.In.(*os.File); ok && isTerminal(f) {
		_, _ = fmt.Fprint(a.Out, "Password: ")
		passwordBytes, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(a.Out) // New line after hidden input
		if err != nil {
			return "", err
		}
		return string(passwordBytes), nil
	}

	return a.prompt(reader, "Password: ")
}
