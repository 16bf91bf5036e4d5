// ABOUTME: Application configuration loaded from the environment and .env files
// ABOUTME: Builds explicit config structs for the identity provider, directory, and storage
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// AppName is used for XDG data paths.
const AppName = "torque"

// IdentityConfig holds the identity provider project settings. Every field is
// required; a partial config leaves the provider unavailable.
type IdentityConfig struct {
	APIKey            string `env:"NEXT_PUBLIC_FIREBASE_API_KEY"`
	AuthDomain        string `env:"NEXT_PUBLIC_FIREBASE_AUTH_DOMAIN"`
	ProjectID         string `env:"NEXT_PUBLIC_FIREBASE_PROJECT_ID"`
	StorageBucket     string `env:"NEXT_PUBLIC_FIREBASE_STORAGE_BUCKET"`
	MessagingSenderID string `env:"NEXT_PUBLIC_FIREBASE_MESSAGING_SENDER_ID"`
	AppID             string `env:"NEXT_PUBLIC_FIREBASE_APP_ID"`
}

// DirectoryConfig points the sync client at the remote contact directory.
type DirectoryConfig struct {
	BaseURL string        `env:"TORQUE_DIRECTORY_URL"`
	APIKey  string        `env:"TORQUE_DIRECTORY_API_KEY"`
	// Lenient restores the historical empty-list result for unknown payload shapes.
	Lenient bool          `env:"TORQUE_DIRECTORY_LENIENT" envDefault:"false"`
	Timeout time.Duration `env:"TORQUE_DIRECTORY_TIMEOUT" envDefault:"0s"`
}

type Config struct {
	Identity  IdentityConfig
	Directory DirectoryConfig

	DBPath    string `env:"TORQUE_DB_PATH"`
	WebPort   int    `env:"TORQUE_WEB_PORT" envDefault:"8080"`
	LogLevel  string `env:"TORQUE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TORQUE_LOG_FORMAT" envDefault:"text"`
}

// identityKeys lists the identity variables; each also accepts a REACT_APP_ prefix.
var identityKeys = []string{
	"FIREBASE_API_KEY",
	"FIREBASE_AUTH_DOMAIN",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_STORAGE_BUCKET",
	"FIREBASE_MESSAGING_SENDER_ID",
	"FIREBASE_APP_ID",
}

// Options controls where configuration is read from.
type Options struct {
	// EnvFiles are read in order; earlier files win. Missing files are skipped.
	EnvFiles []string

	// Environ overrides the process environment (KEY=VALUE pairs). Nil means os.Environ().
	Environ []string
}

// DefaultEnvFiles are the dotenv files consulted when none are given.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Load reads .env files and the environment into a Config. The process
// environment always wins over file values and is never modified.
func Load(opts Options) (*Config, error) {
	files := opts.EnvFiles
	if files == nil {
		files = DefaultEnvFiles
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}

	vars := make(map[string]string)
	for i := len(files) - 1; i >= 0; i-- {
		values, err := godotenv.Read(files[i])
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", files[i], err)
		}
		for k, v := range values {
			vars[k] = v
		}
	}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	applyIdentityFallbacks(vars)

	cfg := &Config{}
	if err := env.Parse(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}

	return cfg, nil
}

// applyIdentityFallbacks fills NEXT_PUBLIC_ keys from their REACT_APP_ twins.
func applyIdentityFallbacks(vars map[string]string) {
	for _, key := range identityKeys {
		primary := "NEXT_PUBLIC_" + key
		if vars[primary] != "" {
			continue
		}
		if fallback := vars["REACT_APP_"+key]; fallback != "" {
			vars[primary] = fallback
		}
	}
}

// Missing returns the names of identity values that are not set.
func (c IdentityConfig) Missing() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"apiKey", c.APIKey},
		{"authDomain", c.AuthDomain},
		{"projectId", c.ProjectID},
		{"storageBucket", c.StorageBucket},
		{"messagingSenderId", c.MessagingSenderID},
		{"appId", c.AppID},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// IsConfigured reports whether every identity value is present.
func (c IdentityConfig) IsConfigured() bool {
	return len(c.Missing()) == 0
}

// DataDir returns the XDG data directory for the application.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultDBPath returns the XDG-compliant database location.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "torque.db")
}
