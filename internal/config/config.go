// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v8"
)

// DevSecretKey is the fallback signing key for local development. Refused in
// prod by Validate.
const DevSecretKey = "dev-secret"

type Config struct {
	Addr      string `env:"ADDR" envDefault:":8080"`
	DBPath    string `env:"DB_PATH" envDefault:"gastos.db"`
	SecretKey string `env:"SECRET_KEY" envDefault:"dev-secret"`

	// Env is "dev" (default) or "prod".
	Env string `env:"ENV" envDefault:"dev"`

	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"web/templates"`
	StaticDir   string `env:"STATIC_DIR" envDefault:"web/static"`

	// SecureCookie marks the session cookie Secure; enable behind TLS.
	SecureCookie bool `env:"SECURE_COOKIE" envDefault:"false"`

	// LogFormat is "text" (default) or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// AdminUser and AdminPassword seed the first account when the database
	// has no users yet. Both optional.
	AdminUser     string `env:"ADMIN_USER"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe to run in prod.
func (c Config) Validate() error {
	if c.Env == "prod" && (c.SecretKey == "" || c.SecretKey == DevSecretKey) {
		return fmt.Errorf("SECRET_KEY must be set to a non-default value when ENV=prod")
	}
	return nil
}
