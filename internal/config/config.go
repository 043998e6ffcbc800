package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"microblog/internal/auth"
)

type Config struct {
	App   AppConfig   `toml:"app"`
	Auth  AuthConfig  `toml:"auth"`
	Store StoreConfig `toml:"store"`
	Web   WebConfig   `toml:"web"`
}

type AppConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type AuthConfig struct {
	// SessionSecret signs the session cookie. Must be injected via
	// config file or environment, never a source literal.
	SessionSecret     string `toml:"session_secret"`
	AdminUser         string `toml:"admin_user"`
	AdminPasswordHash string `toml:"admin_password_hash"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type WebConfig struct {
	TemplateDir  string `toml:"template_dir"`
	StaticDir    string `toml:"static_dir"`
	SecureCookie bool   `toml:"secure_cookie"`
}

// Load reads the optional TOML config file, applies environment
// overrides, and validates that the injected secrets are present.
// A plain ADMIN_PASSWORD is accepted for dev setups and hashed once
// here; ADMIN_PASSWORD_HASH wins when both are set.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file: %w", err)
		}
	}

	overrideByEnv(cfg)

	if cfg.Auth.AdminPasswordHash == "" {
		if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return nil, fmt.Errorf("hash admin password: %w", err)
			}
			cfg.Auth.AdminPasswordHash = hash
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) validate() error {
	if c.Auth.SessionSecret == "" {
		return errors.New("session secret is not set (SESSION_SECRET)")
	}
	if c.Auth.AdminUser == "" {
		return errors.New("admin username is not set (ADMIN_USER)")
	}
	if c.Auth.AdminPasswordHash == "" {
		return errors.New("admin password is not set (ADMIN_PASSWORD_HASH or ADMIN_PASSWORD)")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Store: StoreConfig{
			Path: "blog.db",
		},
		Web: WebConfig{
			TemplateDir:  "web/templates",
			StaticDir:    "web/static",
			SecureCookie: false,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Host = getEnv("HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("PORT", cfg.App.Port)

	cfg.Auth.SessionSecret = getEnv("SESSION_SECRET", cfg.Auth.SessionSecret)
	cfg.Auth.AdminUser = getEnv("ADMIN_USER", cfg.Auth.AdminUser)
	cfg.Auth.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.Auth.AdminPasswordHash)

	cfg.Store.Path = getEnv("DB_PATH", cfg.Store.Path)

	cfg.Web.TemplateDir = getEnv("TEMPLATE_DIR", cfg.Web.TemplateDir)
	cfg.Web.StaticDir = getEnv("STATIC_DIR", cfg.Web.StaticDir)
	cfg.Web.SecureCookie = getEnvAsBool("SECURE_COOKIE", cfg.Web.SecureCookie)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
