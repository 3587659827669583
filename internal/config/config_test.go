package config

import (
	"strings"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3001" {
		t.Errorf("expected default port 3001, got %s", cfg.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("expected default driver mysql, got %s", cfg.Database.Driver)
	}
	if cfg.JWTExpirationMinutes != 15 || cfg.JWTRefreshExpirationHours != 168 {
		t.Errorf("unexpected token lifetimes %d/%d", cfg.JWTExpirationMinutes, cfg.JWTRefreshExpirationHours)
	}
	if !cfg.IsDev() {
		t.Errorf("expected development mode by default")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/hospital")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.Database.MaxOpenConns != 7 {
		t.Errorf("expected 7 max open conns, got %d", cfg.Database.MaxOpenConns)
	}
	if got := cfg.Database.DSN(); got != "postgres://u:p@db:5432/hospital" {
		t.Errorf("DATABASE_URL should win, got %s", got)
	}
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadConfig_ProductionNeedsSecrets(t *testing.T) {
	t.Setenv("ENV", "production")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for default secrets in production")
	}

	t.Setenv("JWT_SECRET", "s1")
	t.Setenv("JWT_REFRESH_SECRET", "s2")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"mysql", DatabaseConfig{Driver: "mysql", Host: "h", Username: "u", Password: "p", Name: "n"}, "u:p@tcp(h:3306)/n?"},
		{"postgres", DatabaseConfig{Driver: "postgres", Host: "h", Port: "6543", Username: "u", Password: "p", Name: "n"}, "host=h port=6543"},
		{"sqlite", DatabaseConfig{Driver: "sqlite", Name: "hospital"}, "hospital.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("DSN() = %s, want prefix %s", got, tt.want)
			}
		})
	}
}
