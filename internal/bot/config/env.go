package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvFile is loaded into the process environment before BOT_* variables are
// read. Variables already set take precedence over the file.
var EnvFile = ".env"

// parseEnv overlays BOT_* environment variables. Malformed values panic, the
// same way a malformed config file does.
func parseEnv(config *Config) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.TelegramToken, "BOT_TOKEN")
	setString(&config.DatabaseDSN, "BOT_DATABASE_DSN")
	setString(&config.AccountURL, "BOT_ACCOUNT_URL")
	setString(&config.RefundURL, "BOT_REFUND_URL")
	setString(&config.UserAgent, "BOT_USER_AGENT")
	setDuration(&config.RemoteTimeout, "BOT_REMOTE_TIMEOUT")
	setString(&config.PhotoDir, "BOT_PHOTO_DIR")
	setString(&config.JWTSecret, "BOT_JWT_SECRET")
	setString(&config.HTTPAddr, "BOT_HTTP_ADDR")
	setString(&config.LogLevel, "BOT_LOG_LEVEL")
	setDuration(&config.SessionTimeout, "BOT_SESSION_TIMEOUT")
	setString(&config.S3AccessKey, "BOT_S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "BOT_S3_SECRET_KEY")
	setString(&config.S3Bucket, "BOT_S3_BUCKET")
	setString(&config.S3Region, "BOT_S3_REGION")
	setString(&config.S3BaseEndpoint, "BOT_S3_ENDPOINT")

	if v, ok := os.LookupEnv("BOT_ADMIN_IDS"); ok {
		ids, err := ParseIDs(v)
		if err != nil {
			panic(err)
		}
		config.AdminIDs = ids
	}
	if v, ok := os.LookupEnv("BOT_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.Workers = n
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
