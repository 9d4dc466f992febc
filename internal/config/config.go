package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	PoolMin     int
	PoolMax     int
	AutoMigrate bool
}

// JWTConfig holds the token signing secret and token lifetime.
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// UploadConfig holds report image upload settings.
type UploadConfig struct {
	Dir       string
	MaxSizeMB int
}

// MaxBytes returns the upload size limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxSizeMB) * 1024 * 1024
}

// RateLimitConfig holds the per-IP request window for /api routes.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// AdminConfig holds what the create-admin command needs.
type AdminConfig struct {
	Database DatabaseConfig
	Email    string
	Password string
}

// DefaultAdminEmail is used when ADMIN_EMAIL is not set.
const DefaultAdminEmail = "superuser@motorbike-parking.app"

func newViper() *viper.Viper {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "motorbike_parking")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("JWT_EXPIRES_IN", "168h")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MAX_FILE_SIZE_MB", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_MS", 15*60*1000)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:8081")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("ADMIN_EMAIL", DefaultAdminEmail)

	// Bind environment variables
	v.AutomaticEnv()

	return v
}

func databaseFrom(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:        v.GetString("DB_HOST"),
		Port:        v.GetString("DB_PORT"),
		Name:        v.GetString("DB_NAME"),
		User:        v.GetString("DB_USER"),
		Password:    v.GetString("DB_PASSWORD"),
		SSLMode:     v.GetString("DB_SSLMODE"),
		PoolMin:     v.GetInt("DB_POOL_MIN"),
		PoolMax:     v.GetInt("DB_POOL_MAX"),
		AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
	}
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := newViper()

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: databaseFrom(v),
		JWT: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			ExpiresIn: v.GetDuration("JWT_EXPIRES_IN"),
		},
		Upload: UploadConfig{
			Dir:       v.GetString("UPLOAD_DIR"),
			MaxSizeMB: v.GetInt("MAX_FILE_SIZE_MB"),
		},
		RateLimit: RateLimitConfig{
			Window:      time.Duration(v.GetInt64("RATE_LIMIT_WINDOW_MS")) * time.Millisecond,
			MaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadAdmin reads the database and admin account settings used by the
// create-admin command. The server-only settings are not required here.
func LoadAdmin() (*AdminConfig, error) {
	v := newViper()

	cfg := &AdminConfig{
		Database: databaseFrom(v),
		Email:    strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
		Password: v.GetString("ADMIN_PASSWORD"),
	}
	if cfg.Email == "" {
		cfg.Email = DefaultAdminEmail
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	// Validate JWT config
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be a positive duration")
	}

	// Validate upload config
	if c.Upload.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.Upload.MaxSizeMB < 1 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be at least 1")
	}

	// Validate rate limit config
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_MS must be positive")
	}
	if c.RateLimit.MaxRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be at least 1")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// Validate checks the database settings.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
