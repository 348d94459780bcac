// Package config loads the gofinances configuration from viper, the environment and dotenv files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofinances/gofinances/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyDatabasePath       = "database.path"
	KeyLogLevel           = "logging.level"
	KeyLogFormat          = "logging.format"
	KeyGoogleClientID     = "google.client_id"
	KeyGoogleClientSecret = "google.client_secret"
	KeyGoogleCallbackPort = "google.callback_port"
	KeyGoogleRedirectURL  = "google.redirect_url"
)

// DefaultDatabasePath is where the key-value store lives unless configured otherwise.
const DefaultDatabasePath = "~/.local/share/gofinances/gofinances.db"

// DefaultCallbackPort is the local port the Google OAuth callback listens on.
const DefaultCallbackPort = 8085

// ErrGoogleNotConfigured is returned when Google sign-in is attempted without client credentials.
var ErrGoogleNotConfigured = errors.New("google sign-in is not configured")

// Config is the typed application configuration.
type Config struct {
	Google   GoogleConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// GoogleConfig holds the OAuth client used by "signin google".
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	CallbackPort int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyGoogleCallbackPort, DefaultCallbackPort)
}

// Load builds a Config from v. Google credentials fall back to the plain
// GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET variables, then to CLIENT_ID / REDIRECT_URI.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString(KeyDatabasePath)),
		},
		Logging: LoggingConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString(KeyGoogleClientID),
			ClientSecret: v.GetString(KeyGoogleClientSecret),
			RedirectURL:  v.GetString(KeyGoogleRedirectURL),
			CallbackPort: v.GetInt(KeyGoogleCallbackPort),
		},
	}

	if cfg.Google.ClientID == "" {
		cfg.Google.ClientID = firstEnv("GOOGLE_CLIENT_ID", "CLIENT_ID")
	}
	if cfg.Google.ClientSecret == "" {
		cfg.Google.ClientSecret = firstEnv("GOOGLE_CLIENT_SECRET", "CLIENT_SECRET")
	}
	if cfg.Google.RedirectURL == "" {
		cfg.Google.RedirectURL = os.Getenv("REDIRECT_URI")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyDatabasePath)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	if c.Google.CallbackPort < 0 || c.Google.CallbackPort > 65535 {
		return fmt.Errorf("%w: %s out of range: %d", common.ErrInvalidConfig, KeyGoogleCallbackPort, c.Google.CallbackPort)
	}
	return nil
}

// RequireGoogle reports whether Google sign-in can be attempted.
func (c *Config) RequireGoogle() error {
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return fmt.Errorf("%w: %w: set %s and %s", ErrGoogleNotConfigured, common.ErrMissingConfig, KeyGoogleClientID, KeyGoogleClientSecret)
	}
	return nil
}

// ExpandPath expands ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// LoadEnvFiles loads dotenv files into the process environment. Missing files are
// skipped and variables already set are left alone. With no arguments ".env" is tried.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		p = ExpandPath(p)
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
