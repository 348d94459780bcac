package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofinances/gofinances/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearGoogleEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GOOGLE_CLIENT_ID", "CLIENT_ID", "GOOGLE_CLIENT_SECRET", "CLIENT_SECRET", "REDIRECT_URI"} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearGoogleEnv(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local/share/gofinances/gofinances.db"), cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, DefaultCallbackPort, cfg.Google.CallbackPort)
	assert.ErrorIs(t, cfg.RequireGoogle(), ErrGoogleNotConfigured)
	assert.ErrorIs(t, cfg.RequireGoogle(), common.ErrMissingConfig)
}

func TestLoad_FromViper(t *testing.T) {
	clearGoogleEnv(t)
	t.Setenv("GOFINANCES_TEST_DIR", "/tmp/gf")

	v := viper.New()
	v.Set(KeyDatabasePath, "$GOFINANCES_TEST_DIR/data.db")
	v.Set(KeyLogLevel, "debug")
	v.Set(KeyLogFormat, "json")
	v.Set(KeyGoogleClientID, "id")
	v.Set(KeyGoogleClientSecret, "secret")
	v.Set(KeyGoogleCallbackPort, 9999)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gf/data.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 9999, cfg.Google.CallbackPort)
	assert.NoError(t, cfg.RequireGoogle())
}

func TestLoad_GoogleEnvFallback(t *testing.T) {
	clearGoogleEnv(t)
	t.Setenv("CLIENT_ID", "legacy-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("REDIRECT_URI", "http://localhost:8085/callback")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "legacy-id", cfg.Google.ClientID)
	assert.Equal(t, "secret", cfg.Google.ClientSecret)
	assert.Equal(t, "http://localhost:8085/callback", cfg.Google.RedirectURL)
}

func TestLoad_Invalid(t *testing.T) {
	clearGoogleEnv(t)
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "bad level", key: KeyLogLevel, val: "loud"},
		{name: "bad format", key: KeyLogFormat, val: "xml"},
		{name: "bad port", key: KeyGoogleCallbackPort, val: 70000},
		{name: "empty db path", key: KeyDatabasePath, val: " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("GF_SUB", "sub")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "a/b"), ExpandPath("~/a/b"))
	assert.Equal(t, "/x/sub/y", ExpandPath("/x/$GF_SUB/y"))
	assert.Equal(t, "~user/x", ExpandPath("~user/x"))
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GF_FROM_DOTENV=loaded\nGF_PRESET=from-file\n"), 0o600))

	t.Setenv("GF_FROM_DOTENV", "")
	require.NoError(t, os.Unsetenv("GF_FROM_DOTENV"))
	t.Setenv("GF_PRESET", "from-env")

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), envFile))
	t.Cleanup(func() { _ = os.Unsetenv("GF_FROM_DOTENV") })

	assert.Equal(t, "loaded", os.Getenv("GF_FROM_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("GF_PRESET"))
}
