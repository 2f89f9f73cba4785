package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=5001"`
	Env       string        `env:"ENV,       default=production"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=1h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	HTTP    HTTPConfig
	Booking BookingConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Storage StorageConfig
}

type HTTPConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
	UploadBodyLimit  string   `env:"UPLOAD_BODY_LIMIT,    default=10M"`
	EnforceAdminRole bool     `env:"ENFORCE_ADMIN_ROLE,   default=false"`
}

type BookingConfig struct {
	MaxClientsPerSlot int `env:"MAX_CLIENTS_PER_SLOT, default=3"`
	EventWorkers      int `env:"EVENT_WORKERS,        default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=salonDB"`
}

// RedisConfig is optional: an empty Addr disables Redis entirely.
type RedisConfig struct {
	Addr            string        `env:"REDIS_ADDR"`
	Password        string        `env:"REDIS_PASSWORD"`
	DB              int           `env:"REDIS_DB,          default=0"`
	SlotLockEnabled bool          `env:"SLOT_LOCK_ENABLED, default=false"`
	SlotLockTTL     time.Duration `env:"SLOT_LOCK_TTL,     default=5s"`
}

type StorageConfig struct {
	Driver    string `env:"STORAGE_DRIVER, default=local"`
	UploadDir string `env:"UPLOAD_DIR,     default=uploads"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION, default=us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// IsDevelopment reports whether the service runs with developer defaults
// (pretty logs).
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves the configuration from the given lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Booking.MaxClientsPerSlot <= 0 {
		return errors.New("MAX_CLIENTS_PER_SLOT must be positive")
	}
	if c.Redis.SlotLockEnabled && c.Redis.Addr == "" {
		return errors.New("SLOT_LOCK_ENABLED requires REDIS_ADDR")
	}
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			return errors.New("STORAGE_DRIVER=s3 requires S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}
