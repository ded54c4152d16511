package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/flagx"
)

var flagNames = []string{
	"-t", "-d", "-a", "-r", "-o", "-m", "-p", "-s", "-l", "-v", "-i", "-n",
	"-u", "-k", "-b", "-g", "-e",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-t string   Telegram bot token
//	-d string   PostgreSQL DSN
//	-a string   account API url
//	-r string   refund API url
//	-o int      remote call timeout, seconds
//	-m string   admin ids, comma separated
//	-p string   photo directory
//	-s string   JWT HMAC secret key
//	-l string   HTTP listen address (e.g., ":8080")
//	-v string   log level (debug, info, warn, error)
//	-i int      session idle timeout, minutes
//	-n int      update workers
//	-u string   S3 access key
//	-k string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// os.Args is filtered through flagx.FilterArgs first, so -c and foreign
// flags do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.TelegramToken, "t", config.TelegramToken, "telegram bot token")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccountURL, "a", config.AccountURL, "account API url")
	fs.StringVar(&config.RefundURL, "r", config.RefundURL, "refund API url")
	remoteTimeout := fs.Int("o", int(config.RemoteTimeout.Seconds()), "remote call timeout (in seconds)")
	fs.Func("m", "admin ids, comma separated", func(s string) error {
		ids, err := ParseIDs(s)
		if err != nil {
			return err
		}
		config.AdminIDs = ids
		return nil
	})
	fs.StringVar(&config.PhotoDir, "p", config.PhotoDir, "photo directory")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "secret key")
	fs.StringVar(&config.HTTPAddr, "l", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	sessionTimeout := fs.Int("i", int(config.SessionTimeout.Minutes()), "session idle timeout (in minutes)")
	fs.IntVar(&config.Workers, "n", config.Workers, "update workers")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "k", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RemoteTimeout = time.Duration(*remoteTimeout) * time.Second
	config.SessionTimeout = time.Duration(*sessionTimeout) * time.Minute
}
