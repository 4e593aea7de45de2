package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration values for the application.
type Config struct {
	Env        string `mapstructure:"ENV"`
	ListenPort string `mapstructure:"LISTEN_PORT"`

	DatabaseURL    string `mapstructure:"DATABASE_URL"` // Empty selects the SQLite fallback
	SQLitePath     string `mapstructure:"SQLITE_PATH"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	UploadMaxBytes int64  `mapstructure:"UPLOAD_MAX_BYTES"`

	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionDir    string        `mapstructure:"SESSION_DIR"`
	SessionSecure bool          `mapstructure:"SESSION_SECURE"`
	SessionMaxAge time.Duration `mapstructure:"SESSION_MAX_AGE"`

	DefaultAdminPassword string `mapstructure:"DEFAULT_ADMIN_PASSWORD"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
}

var keys = []string{
	"ENV", "LISTEN_PORT",
	"DATABASE_URL", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"UPLOAD_DIR", "UPLOAD_MAX_BYTES",
	"SESSION_SECRET", "SESSION_DIR", "SESSION_SECURE", "SESSION_MAX_AGE",
	"DEFAULT_ADMIN_PASSWORD",
	"CORS_ORIGINS",
	"LOG_LEVEL", "LOG_FORMAT",
	"READ_TIMEOUT", "WRITE_TIMEOUT",
}

// LoadConfig loads configuration from environment variables and an optional
// .env file, falling back to defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LISTEN_PORT", "8080")
	v.SetDefault("SQLITE_PATH", "dev.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)
	v.SetDefault("SESSION_SECRET", "dev-secret-change-me-dev-secret-change-me")
	v.SetDefault("SESSION_SECURE", false)
	v.SetDefault("SESSION_MAX_AGE", 7*24*time.Hour)
	v.SetDefault("DEFAULT_ADMIN_PASSWORD", "1234")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("READ_TIMEOUT", 30*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 60*time.Second)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// The .env file is optional.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env values arrive as one comma-separated string.
	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesSQLite reports whether no Postgres URL is configured.
func (c *Config) UsesSQLite() bool {
	return c.DatabaseURL == ""
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.IsProduction() {
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 characters in production")
		}
		if c.UsesSQLite() {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
