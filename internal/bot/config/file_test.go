package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"cmd"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestParseFile_JSON(t *testing.T) {
	path := writeConfigFile(t, "bot.json", `{
		"telegram_token": "123:abc",
		"account_url": "http://acc",
		"remote_timeout": "7s",
		"session_timeout": 60000000000,
		"admin_ids": [5, 6],
		"workers": 2
	}`)
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	require.NotPanics(t, func() { parseFile(&c) })

	assert.Equal(t, "123:abc", c.TelegramToken)
	assert.Equal(t, "http://acc", c.AccountURL)
	assert.Equal(t, 7*time.Second, c.RemoteTimeout)
	assert.Equal(t, time.Minute, c.SessionTimeout)
	assert.Equal(t, []int64{5, 6}, c.AdminIDs)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, "https://api.example.com/v1/refund", c.RefundURL, "absent fields keep the current value")
}

func TestParseFile_YAML(t *testing.T) {
	path := writeConfigFile(t, "bot.yaml", `
telegram_token: "123:abc"
database_dsn: postgres://db
session_timeout: 15m
admin_ids: [9]
s3_bucket: archive
`)
	withArgs(t, "--config="+path)

	var c Config
	c.LoadDefaults()
	parseFile(&c)

	assert.Equal(t, "123:abc", c.TelegramToken)
	assert.Equal(t, "postgres://db", c.DatabaseDSN)
	assert.Equal(t, 15*time.Minute, c.SessionTimeout)
	assert.Equal(t, []int64{9}, c.AdminIDs)
	assert.Equal(t, "archive", c.S3Bucket)
}

func TestParseFile_FromEnv(t *testing.T) {
	path := writeConfigFile(t, "bot.json", `{"http_addr": ":7000"}`)
	withArgs(t)
	t.Setenv("BOT_CONFIG", path)

	var c Config
	parseFile(&c)

	assert.Equal(t, ":7000", c.HTTPAddr)
}

func TestParseFile_NoFile(t *testing.T) {
	withArgs(t)
	t.Setenv("BOT_CONFIG", "")

	var c Config
	c.LoadDefaults()
	want := c
	parseFile(&c)

	assert.Equal(t, want, c)
}

func TestParseFile_Errors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		withArgs(t, "-c", filepath.Join(t.TempDir(), "nope.json"))
		assert.Panics(t, func() { parseFile(&Config{}) })
	})
	t.Run("malformed json", func(t *testing.T) {
		withArgs(t, "-c", writeConfigFile(t, "bad.json", `{"workers": "x"`))
		assert.Panics(t, func() { parseFile(&Config{}) })
	})
	t.Run("bad duration", func(t *testing.T) {
		withArgs(t, "-c", writeConfigFile(t, "bad.yml", "remote_timeout: later\n"))
		assert.Panics(t, func() { parseFile(&Config{}) })
	})
}
