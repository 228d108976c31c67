// Package config loads the application configuration from environment
// variables.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// ClientSecretFile is the default path to the Google OAuth credentials
// JSON file.
const ClientSecretFile = "data/client_secret.json"

// DefaultSenders are the bank addresses notifications arrive from. The
// bank uses more than one sender depending on the message type.
var DefaultSenders = []string{
	"alertasynotificaciones@notificacionesbancolombia.com",
	"alertasynotificaciones@bancolombia.com.co",
}

// Config holds the application configuration.
type Config struct {
	// Senders is a comma-separated list of bank sender addresses to
	// fetch from. Environment variable: EXPENSES_SENDERS
	Senders string `koanf:"EXPENSES_SENDERS"`

	// ForeignRate converts decimal-comma (foreign currency) amounts to
	// COP. Environment variable: EXPENSES_USD_COP_RATE
	ForeignRate float64 `koanf:"EXPENSES_USD_COP_RATE"`

	// FetchLimit caps the number of emails fetched per sender per run.
	// Zero means unlimited within the period window.
	// Environment variable: EXPENSES_FETCH_LIMIT
	FetchLimit int `koanf:"EXPENSES_FETCH_LIMIT"`

	// SecretsFile is the path to the Google OAuth credentials file.
	// Environment variable: EXPENSES_CLIENT_SECRET
	SecretsFile string `koanf:"EXPENSES_CLIENT_SECRET"`

	// APIAddr is the listen address of the reporting API.
	// Environment variable: EXPENSES_API_ADDR
	APIAddr string `koanf:"EXPENSES_API_ADDR"`

	// APIToken is the bearer token the reporting API requires. Empty
	// disables authentication (local use only).
	// Environment variable: EXPENSES_API_TOKEN
	APIToken string `koanf:"EXPENSES_API_TOKEN"`

	Postgres PostgresConfig
}

// PostgresConfig holds the transaction store connection settings. An
// empty host disables persistence and the short-circuit read path.
type PostgresConfig struct {
	Host     string `koanf:"POSTGRES_HOST"`
	Port     int    `koanf:"POSTGRES_PORT"`
	Database string `koanf:"POSTGRES_DB"`
	User     string `koanf:"POSTGRES_USER"`
	Password string `koanf:"POSTGRES_PASSWORD"`
	SSLMode  string `koanf:"POSTGRES_SSLMODE"`
}

// Load reads the configuration from the environment. A .env file at
// envFile is loaded first when present; a missing file is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := k.UnmarshalWithConf("", &cfg.Postgres, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling postgres config: %w", err)
	}

	if cfg.SecretsFile == "" {
		cfg.SecretsFile = ClientSecretFile
	}
	if cfg.APIAddr == "" {
		cfg.APIAddr = ":5000"
	}

	return cfg, nil
}

// SenderList returns the configured sender addresses, falling back to
// DefaultSenders.
func (c Config) SenderList() []string {
	if strings.TrimSpace(c.Senders) == "" {
		return DefaultSenders
	}

	parts := strings.Split(c.Senders, ",")
	senders := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			senders = append(senders, s)
		}
	}
	return senders
}
