package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidateWithMemoryDriver(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Driver = DriverMemory
	cfg.Auth.SessionSecret = "test-session-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Notifications.Retention != 30*24*time.Hour {
		t.Errorf("retention = %v", cfg.Notifications.Retention)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "unknown database driver"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "out of range"},
		{"zero retention", func(c *Config) { c.Notifications.Retention = 0 }, "retention"},
		{"negative burst", func(c *Config) { c.RateLimit.Burst = -1 }, "rate limit"},
		{"empty session secret", func(c *Config) { c.Auth.SessionSecret = "" }, "SESSION_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Database.Driver = DriverMemory
			cfg.Auth.SessionSecret = "test-session-secret"
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("SESSION_SECRET", "env-session-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFICATION_RETENTION", "48h")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Notifications.Retention != 48*time.Hour {
		t.Errorf("retention = %v", cfg.Notifications.Retention)
	}
	if cfg.RateLimit.RPS != 2.5 {
		t.Errorf("rps = %v", cfg.RateLimit.RPS)
	}
	if cfg.Mail.Host != "smtp.example.com" || cfg.Mail.Enabled() {
		t.Errorf("mail = %+v", cfg.Mail)
	}
	if cfg.Notifications.ReaperInterval != time.Hour {
		t.Errorf("reaper interval default lost: %v", cfg.Notifications.ReaperInterval)
	}
	if cfg.Auth.SessionSecret != "env-session-secret" || cfg.Auth.BearerEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}

func TestLoadRejectsMissingSessionSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("Load() err = %v, want SESSION_SECRET error", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yaml := "database:\n  driver: memory\ncache:\n  categories_ttl: 5m\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SESSION_SECRET", "file-test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.CategoriesTTL != 5*time.Minute {
		t.Errorf("categories ttl = %v", cfg.Cache.CategoriesTTL)
	}
}
