// Package config handles configuration for the bot, including defaults, an
// environment overlay, a JSON or YAML file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings for the bot.
//
// Fields:
//   - TelegramToken: Bot API token. Required.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - AccountURL / RefundURL: remote API endpoints.
//   - RemoteTimeout: per-request timeout for remote calls.
//   - AdminIDs: Telegram ids allowed to use admin actions and the admin API.
//   - PhotoDir: where refund photos are downloaded.
//   - JWTSecret: HMAC secret for admin API tokens (HS256). Empty disables
//     the /api routes.
//   - HTTPAddr: bind address for health, metrics and the admin API.
//   - S3*: optional photo archive; disabled while S3Bucket is empty.
type Config struct {
	TelegramToken  string
	DatabaseDSN    string
	AccountURL     string
	RefundURL      string
	UserAgent      string
	RemoteTimeout  time.Duration
	AdminIDs       []int64
	PhotoDir       string
	JWTSecret      string
	HTTPAddr       string
	LogLevel       string
	SessionTimeout time.Duration
	Workers        int
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// MinSecretLen is the shortest accepted JWTSecret.
const MinSecretLen = 32

// LoadDefaults populates Config with development defaults. There is no
// default JWTSecret.
func (c *Config) LoadDefaults() {
	c.AccountURL = "https://api.example.com/v1/account"
	c.RefundURL = "https://api.example.com/v1/refund"
	c.UserAgent = "tokenbot/1.0"
	c.RemoteTimeout = 30 * time.Second
	c.PhotoDir = "photos"
	c.HTTPAddr = ":8080"
	c.LogLevel = "info"
	c.SessionTimeout = 30 * time.Minute
	c.Workers = 8
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying the
// environment (including a .env file), an optional JSON or YAML file and
// finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("telegram token is required"))
	}
	if c.AccountURL == "" {
		errs = append(errs, errors.New("account url is required"))
	}
	if c.RefundURL == "" {
		errs = append(errs, errors.New("refund url is required"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < MinSecretLen {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLen))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// ParseIDs reads a comma separated list of Telegram ids. Blank items are
// skipped.
func ParseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
