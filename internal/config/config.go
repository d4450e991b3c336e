// Package config handles XDG configuration directory, file paths and tunables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "todosync"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SessionDir holds the persisted list state and edit-mode session.
	SessionDir = "session"

	// DefaultAPITimeout bounds every remote call.
	DefaultAPITimeout = 5 * time.Second

	// DefaultConcurrency caps in-flight calls within one commit phase.
	DefaultConcurrency = 8

	envAPITimeout  = "TODOSYNC_API_TIMEOUT"
	envConcurrency = "TODOSYNC_CONCURRENCY"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// APITimeout is applied to each remote call.
	APITimeout time.Duration

	// Concurrency is the maximum number of concurrent calls per batch.
	Concurrency int
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todosync or $HOME/.config/todosync.
// Tunables are read from the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:         dir,
		APITimeout:  DefaultAPITimeout,
		Concurrency: DefaultConcurrency,
	}

	if v := os.Getenv(envAPITimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", envAPITimeout, v)
		}
		cfg.APITimeout = d
	}
	if v := os.Getenv(envConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: %q", envConcurrency, v)
		}
		cfg.Concurrency = n
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SessionPath returns the directory of the local session store.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionDir)
}

// Timeout returns the per-call timeout, falling back to the default
// for zero-valued configs built by hand.
func (c *Config) Timeout() time.Duration {
	if c.APITimeout <= 0 {
		return DefaultAPITimeout
	}
	return c.APITimeout
}

// MaxConcurrency returns the batch concurrency limit, falling back to
// the default for zero-valued configs.
func (c *Config) MaxConcurrency() int {
	if c.Concurrency < 1 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
