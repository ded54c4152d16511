package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnvFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	orig := EnvFile
	EnvFile = path
	t.Cleanup(func() { EnvFile = orig })
}

func TestParseEnv(t *testing.T) {
	withEnvFile(t, "")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_DATABASE_DSN", "postgres://x")
	t.Setenv("BOT_REMOTE_TIMEOUT", "5s")
	t.Setenv("BOT_SESSION_TIMEOUT", "10m")
	t.Setenv("BOT_ADMIN_IDS", "1, 2")
	t.Setenv("BOT_WORKERS", "3")
	t.Setenv("BOT_S3_BUCKET", "photos")

	var c Config
	c.LoadDefaults()
	require.NotPanics(t, func() { parseEnv(&c) })

	assert.Equal(t, "123:abc", c.TelegramToken)
	assert.Equal(t, "postgres://x", c.DatabaseDSN)
	assert.Equal(t, 5*time.Second, c.RemoteTimeout)
	assert.Equal(t, 10*time.Minute, c.SessionTimeout)
	assert.Equal(t, []int64{1, 2}, c.AdminIDs)
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, "photos", c.S3Bucket)
	assert.Equal(t, "https://api.example.com/v1/account", c.AccountURL, "unset variables keep defaults")
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	withEnvFile(t, "BOT_HTTP_ADDR=:9999\nBOT_LOG_LEVEL=debug\n")
	t.Setenv("BOT_LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("BOT_HTTP_ADDR") })

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, "warn", c.LogLevel, "process environment wins over .env")
}

func TestParseEnv_Malformed(t *testing.T) {
	withEnvFile(t, "")

	tests := []struct {
		key, value string
	}{
		{"BOT_REMOTE_TIMEOUT", "soon"},
		{"BOT_ADMIN_IDS", "root"},
		{"BOT_WORKERS", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			var c Config
			assert.Panics(t, func() { parseEnv(&c) })
		})
	}
}
