package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/tokenbot/internal/flagx"
	"github.com/dmitrijs2005/tokenbot/internal/timex"
)

// FileConfig mirrors Config for JSON and YAML files. Durations accept either
// strings such as "30s" or integer nanoseconds. Absent fields leave the
// current value untouched.
type FileConfig struct {
	TelegramToken  string         `json:"telegram_token" yaml:"telegram_token"`
	DatabaseDSN    string         `json:"database_dsn" yaml:"database_dsn"`
	AccountURL     string         `json:"account_url" yaml:"account_url"`
	RefundURL      string         `json:"refund_url" yaml:"refund_url"`
	UserAgent      string         `json:"user_agent" yaml:"user_agent"`
	RemoteTimeout  timex.Duration `json:"remote_timeout" yaml:"remote_timeout"`
	AdminIDs       []int64        `json:"admin_ids" yaml:"admin_ids"`
	PhotoDir       string         `json:"photo_dir" yaml:"photo_dir"`
	JWTSecret      string         `json:"jwt_secret" yaml:"jwt_secret"`
	HTTPAddr       string         `json:"http_addr" yaml:"http_addr"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
	SessionTimeout timex.Duration `json:"session_timeout" yaml:"session_timeout"`
	Workers        int            `json:"workers" yaml:"workers"`
	S3AccessKey    string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket       string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile loads the file named by -c/-config (or $BOT_CONFIG) into config.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
// An unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	overlay(&config.TelegramToken, c.TelegramToken)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.AccountURL, c.AccountURL)
	overlay(&config.RefundURL, c.RefundURL)
	overlay(&config.UserAgent, c.UserAgent)
	overlay(&config.PhotoDir, c.PhotoDir)
	overlay(&config.JWTSecret, c.JWTSecret)
	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.S3AccessKey, c.S3AccessKey)
	overlay(&config.S3SecretKey, c.S3SecretKey)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.RemoteTimeout.Duration > 0 {
		config.RemoteTimeout = c.RemoteTimeout.Duration
	}
	if c.SessionTimeout.Duration > 0 {
		config.SessionTimeout = c.SessionTimeout.Duration
	}
	if c.AdminIDs != nil {
		config.AdminIDs = c.AdminIDs
	}
	if c.Workers != 0 {
		config.Workers = c.Workers
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
