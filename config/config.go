package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	AvatarSize = 128

	EnvProduction  = "production"
	EnvDevelopment = "development"

	StorageDriverLocal    = "local"
	StorageDriverFirebase = "firebase"

	defaultJWTSecret        = "dev-access-secret"
	defaultJWTRefreshSecret = "dev-refresh-secret"
)

// DBConfig holds database configuration
type DBConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	FrontendOrigins []string
	BackendURL      string
	ShutdownTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type RateLimitConfig struct {
	Window  time.Duration
	Max     int
	AuthMax int
}

type StorageConfig struct {
	Driver         string
	UploadDir      string
	MaxUploadBytes int64
	FirebaseBucket string
}

type Config struct {
	DB        DBConfig
	Server    ServerConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	RedisURL  string
	LogLevel  string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	env := getEnv("NODE_ENV", getEnv("APP_ENV", EnvDevelopment))
	backendURL := getEnv("BACKEND_URL", "http://localhost:"+getEnv("PORT", "5000"))

	cfg := &Config{
		DB: DBConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			Env:             env,
			FrontendOrigins: splitList(getEnv("FRONTEND_URL", "http://localhost:3000")),
			BackendURL:      strings.TrimRight(backendURL, "/"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_SECRET", defaultJWTSecret),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", defaultJWTRefreshSecret),
			AccessTTL:     getEnvAsDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL:    getEnvAsDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Window:  getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			Max:     getEnvAsInt("RATE_LIMIT_MAX", 300),
			AuthMax: getEnvAsInt("AUTH_RATE_LIMIT_MAX", 20),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", StorageDriverLocal),
			UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 5<<20)),
			FirebaseBucket: os.Getenv("FIREBASE_BUCKET"),
		},
		RedisURL: os.Getenv("REDIS_URL"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	return cfg, cfg.Validate()
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.DB.URL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if c.IsProduction() {
		if c.JWT.AccessSecret == defaultJWTSecret || c.JWT.RefreshSecret == defaultJWTRefreshSecret {
			return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set in production")
		}
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	switch c.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverFirebase:
		if c.Storage.FirebaseBucket == "" {
			return errors.New("FIREBASE_BUCKET must be set when STORAGE_DRIVER=firebase")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.AuthMax <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

// LogFields returns the non-secret parts of the configuration for startup logs.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("port", c.Server.Port),
		zap.Strings("frontend_origins", c.Server.FrontendOrigins),
		zap.String("backend_url", c.Server.BackendURL),
		zap.String("storage_driver", c.Storage.Driver),
		zap.Bool("redis", c.RedisURL != ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimRight(part, "/"))
		}
	}
	return out
}
