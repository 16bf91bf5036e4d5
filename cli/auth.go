// ABOUTME: Sign-in CLI commands
// ABOUTME: Handles auth login, logout, and status against the identity provider
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/torque/auth"
)

// AuthLoginCommand signs in with an email and password.
func AuthLoginCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("auth login", flag.ExitOnError)
	email := fs.String("email", "", "Account email (prompted when omitted)")
	_ = fs.Parse(args)

	if !app.Auth.Configured() {
		_, err := app.requireUser()
		return err
	}

	reader := bufio.NewReader(app.In)
	if strings.TrimSpace(*email) == "" {
		value, err := app.prompt(reader, "Email: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		*email = value
	}

	password, err := app.promptPassword(reader)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	user, err := app.Auth.SignIn(ctx, *email, password)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Signed in as %s\n", user.Email)
	return nil
}

func AuthLogoutCommand(ctx context.Context, app *App, args []string) error {
	if err := app.Auth.SignOut(ctx); err != nil {
		if errors.Is(err, auth.ErrProviderUnavailable) {
			_, err = app.requireUser()
		}
		return err
	}

	_, _ = fmt.Fprintln(app.Out, "✓ Signed out")
	return nil
}

func AuthStatusCommand(ctx context.Context, app *App, args []string) error {
	if !app.Auth.Configured() {
		_, _ = fmt.Fprintln(app.Out, "Authentication is not configured.")
		_, _ = fmt.Fprintf(app.Out, "Missing: %s\n", strings.Join(app.Config.Identity.Missing(), ", "))
		return nil
	}

	user := app.Auth.CurrentUser()
	if user == nil {
		_, _ = fmt.Fprintln(app.Out, "Not signed in. Run 'torque auth login'.")
		return nil
	}

	_, _ = fmt.Fprintf(app.Out, "Signed in as %s\n", user.Email)
	if user.DisplayName != "" {
		_, _ = fmt.Fprintf(app.Out, "Name: %s\n", user.DisplayName)
	}
	if !user.ExpiresAt.IsZero() {
		_, _ = fmt.Fprintf(app.Out, "Token expires: %s\n", user.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
