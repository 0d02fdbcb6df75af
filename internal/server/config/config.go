// Package config loads the server configuration from environment variables
// and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings of the server. It is loaded once at startup
// and passed by value into constructors.
type Config struct {
	Address            string        `env:"VIDTUBE_ADDRESS" envDefault:":8080"`
	DatabaseDriver     string        `env:"VIDTUBE_DB_DRIVER" envDefault:"sqlite"`
	DatabaseDSN        string        `env:"VIDTUBE_DB_DSN" envDefault:"vidtube.db"`
	AccessTokenSecret  string        `env:"VIDTUBE_ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `env:"VIDTUBE_REFRESH_TOKEN_SECRET"`
	LogLevel           string        `env:"VIDTUBE_LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"VIDTUBE_LOG_FORMAT" envDefault:"json"`
	S3Bucket           string        `env:"VIDTUBE_S3_BUCKET"`
	S3Region           string        `env:"VIDTUBE_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint         string        `env:"VIDTUBE_S3_ENDPOINT"`
	S3AccessKey        string        `env:"VIDTUBE_S3_ACCESS_KEY"`
	S3SecretKey        string        `env:"VIDTUBE_S3_SECRET_KEY"`
	S3PublicURL        string        `env:"VIDTUBE_S3_PUBLIC_URL"`
	AccessTokenTTL     time.Duration `env:"VIDTUBE_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"VIDTUBE_REFRESH_TOKEN_TTL" envDefault:"240h"`
	UploadURLTTL       time.Duration `env:"VIDTUBE_UPLOAD_URL_TTL" envDefault:"15m"`
	RateLimitWindow    time.Duration `env:"VIDTUBE_RATE_LIMIT_WINDOW" envDefault:"1m"`
	ShutdownTimeout    time.Duration `env:"VIDTUBE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	BcryptCost         int           `env:"VIDTUBE_BCRYPT_COST" envDefault:"10"`
	RateLimitRequests  int           `env:"VIDTUBE_RATE_LIMIT_REQUESTS" envDefault:"10"`
	CookieSecure       bool          `env:"VIDTUBE_COOKIE_SECURE" envDefault:"true"`
	ShowVersion        bool          // только флаг -version
}

// Load reads the environment and then applies flags from args
// (without the program name). Flags take precedence over the environment.
func Load(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return Config{}, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("vidtube-server", flag.ContinueOnError)

	fs.StringVar(&c.Address, "a", c.Address, "HTTP listen address")
	fs.StringVar(&c.DatabaseDriver, "driver", c.DatabaseDriver, "database driver: sqlite or postgres")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN or SQLite file path")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: json or text")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "refresh token lifetime")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", c.CookieSecure, "set Secure attribute on session cookies")
	fs.BoolVar(&c.ShowVersion, "version", false, "show version information")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// Validate проверяет согласованность конфигурации
func (c Config) Validate() error {
	var errs []error

	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	switch strings.ToLower(c.DatabaseDriver) {
	case "sqlite", "postgres", "postgresql", "pgx":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("access and refresh token secrets are required"))
	} else if c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("access and refresh token secrets must differ"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limit must be positive"))
	}
	if c.S3Bucket != "" && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		errs = append(errs, errors.New("s3 credentials are required when a bucket is set"))
	}

	return errors.Join(errs...)
}

// MediaEnabled reports whether the object store is configured.
func (c Config) MediaEnabled() bool {
	return c.S3Bucket != ""
}
