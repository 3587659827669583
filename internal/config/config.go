package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultJWTSecret        = "default_jwt_secret"
	defaultJWTRefreshSecret = "default_refresh_secret"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string `mapstructure:"PORT"`
	Origin                    string `mapstructure:"ORIGIN"`
	Environment               string `mapstructure:"ENV"`
	LogLevel                  string `mapstructure:"LOG_LEVEL"`
	JWTSecret                 string `mapstructure:"JWT_SECRET"`
	JWTRefreshSecret          string `mapstructure:"JWT_REFRESH_SECRET"`
	JWTExpirationMinutes      int    `mapstructure:"JWT_EXPIRATION_MINUTES"`
	JWTRefreshExpirationHours int    `mapstructure:"JWT_REFRESH_EXPIRATION_HOURS"`
	SeedAdminEmail            string `mapstructure:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword         string `mapstructure:"SEED_ADMIN_PASSWORD"`

	Database DatabaseConfig `mapstructure:",squash"`
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver                 string `mapstructure:"DB_DRIVER"`
	Host                   string `mapstructure:"DB_HOST"`
	Port                   string `mapstructure:"DB_PORT"`
	Username               string `mapstructure:"DB_USERNAME"`
	Password               string `mapstructure:"DB_PASSWORD"`
	Name                   string `mapstructure:"DB_NAME"`
	URL                    string `mapstructure:"DATABASE_URL"`
	MaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
}

var defaults = map[string]any{
	"PORT":                         "3001",
	"ORIGIN":                       "http://localhost:4200",
	"ENV":                          "development",
	"LOG_LEVEL":                    "info",
	"JWT_SECRET":                   defaultJWTSecret,
	"JWT_REFRESH_SECRET":           defaultJWTRefreshSecret,
	"JWT_EXPIRATION_MINUTES":       15,
	"JWT_REFRESH_EXPIRATION_HOURS": 168,
	"SEED_ADMIN_EMAIL":             "admin@hospital.local",
	"SEED_ADMIN_PASSWORD":          "",
	"DB_DRIVER":                    "mysql",
	"DB_HOST":                      "localhost",
	"DB_PORT":                      "",
	"DB_USERNAME":                  "root",
	"DB_PASSWORD":                  "",
	"DB_NAME":                      "hospital",
	"DATABASE_URL":                 "",
	"DB_MAX_OPEN_CONNS":            25,
	"DB_MAX_IDLE_CONNS":            5,
	"DB_CONN_MAX_LIFETIME_MINUTES": 30,
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
		// Bind explicitly so Unmarshal sees environment overrides
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects configurations the server cannot or must not run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.JWTExpirationMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be positive, got %d", c.JWTExpirationMinutes)
	}
	if c.JWTRefreshExpirationHours <= 0 {
		return fmt.Errorf("JWT_REFRESH_EXPIRATION_HOURS must be positive, got %d", c.JWTRefreshExpirationHours)
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || c.JWTRefreshSecret == defaultJWTRefreshSecret {
			return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must be set in production")
		}
	}
	return nil
}

// DSN returns the connection string for the configured driver. DATABASE_URL
// wins when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	switch d.Driver {
	case "postgres":
		port := d.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host, port, d.Username, d.Password, d.Name)
	case "sqlite":
		return d.Name + ".db"
	default:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, port, d.Name)
	}
}

// ConnMaxLifetime returns the pool connection lifetime.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMinutes) * time.Minute
}
