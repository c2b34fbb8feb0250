// Package config loads service configuration: struct defaults, then an
// optional config.yaml, then environment variables (a .env file is read
// into the environment first).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	Auth          AuthConfig          `koanf:"auth"`
	Logging       LoggingConfig       `koanf:"logging"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Cache         CacheConfig         `koanf:"cache"`
	RateLimit     RateLimitConfig     `koanf:"rate_limit"`
	Mail          MailConfig          `koanf:"mail"`
}

type ServerConfig struct {
	Port         int           `koanf:"port"`
	SiteURL      string        `koanf:"site_url"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	LogSQL          bool          `koanf:"log_sql"`
}

type AuthConfig struct {
	SessionSecret string `koanf:"session_secret"`
	JWTSecret     string `koanf:"jwt_secret"`
}

// BearerEnabled reports whether bearer tokens can be verified.
func (a AuthConfig) BearerEnabled() bool {
	return a.JWTSecret != ""
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

type NotificationsConfig struct {
	Retention      time.Duration `koanf:"retention"`
	ReaperInterval time.Duration `koanf:"reaper_interval"`
}

type CacheConfig struct {
	CategoriesTTL time.Duration `koanf:"categories_ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

type MailConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	From string `koanf:"from"`
}

// Enabled reports whether every SMTP setting is present.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.Port > 0 && m.User != "" && m.Pass != "" && m.From != ""
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			SiteURL:      "http://localhost:8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
		Notifications: NotificationsConfig{
			Retention:      30 * 24 * time.Hour,
			ReaperInterval: time.Hour,
		},
		Cache:     CacheConfig{CategoriesTTL: time.Minute},
		RateLimit: RateLimitConfig{RPS: 20, Burst: 40},
		Mail:      MailConfig{Port: 587},
	}
}

var envMappings = map[string]string{
	"port":                   "server.port",
	"site_url":               "server.site_url",
	"read_timeout":           "server.read_timeout",
	"write_timeout":          "server.write_timeout",
	"db_driver":              "database.driver",
	"database_url":           "database.url",
	"db_max_open_conns":      "database.max_open_conns",
	"db_max_idle_conns":      "database.max_idle_conns",
	"db_conn_max_lifetime":   "database.conn_max_lifetime",
	"db_log_sql":             "database.log_sql",
	"session_secret":         "auth.session_secret",
	"jwt_secret":             "auth.jwt_secret",
	"log_level":              "logging.level",
	"log_pretty":             "logging.pretty",
	"notification_retention": "notifications.retention",
	"reaper_interval":        "notifications.reaper_interval",
	"categories_cache_ttl":   "cache.categories_ttl",
	"rate_limit_rps":         "rate_limit.rps",
	"rate_limit_burst":       "rate_limit.burst",
	"smtp_host":              "mail.host",
	"smtp_port":              "mail.port",
	"smtp_user":              "mail.user",
	"smtp_pass":              "mail.pass",
	"smtp_from":              "mail.from",
}

// envTransform maps a known environment variable to its config path.
// Unknown variables map to "" and are ignored.
func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load builds the configuration and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, reading environment only")
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Auth.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required to sign session cookies"))
	}
	if c.Notifications.Retention <= 0 {
		errs = append(errs, errors.New("notification retention must be positive"))
	}
	if c.Notifications.ReaperInterval <= 0 {
		errs = append(errs, errors.New("reaper interval must be positive"))
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate limit values must not be negative"))
	}
	return errors.Join(errs...)
}
