package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	AssetBackendDisk       = "disk"
	AssetBackendCloudinary = "cloudinary"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USERNAME" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_DATABASE" envDefault:"catalog"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	AssetBackend     string `env:"ASSET_BACKEND" envDefault:"disk"`
	UploadsDir       string `env:"UPLOADS_DIR" envDefault:"public/uploads"`
	CloudinaryURL    string `env:"CLOUDINARY_URL"`
	CloudinaryFolder string `env:"CLOUDINARY_FOLDER" envDefault:"catalog"`

	RabbitMQURI string `env:"RABBITMQ_URI"`
	EventsQueue string `env:"EVENTS_QUEUE" envDefault:"catalog.events"`
}

// Load reads the given .env files (".env" when none are named) and parses the
// environment. Missing .env files are not an error; variables already set in
// the environment win over the files.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.AssetBackend {
	case AssetBackendDisk:
		if c.UploadsDir == "" {
			return errors.New("UPLOADS_DIR is required for the disk asset backend")
		}
	case AssetBackendCloudinary:
		if c.CloudinaryURL == "" {
			return errors.New("CLOUDINARY_URL is required for the cloudinary asset backend")
		}
	default:
		return fmt.Errorf("unknown ASSET_BACKEND %q", c.AssetBackend)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the
// DB_* variables.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}
