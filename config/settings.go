package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Settings holds every environment-driven knob of the server.
type Settings struct {
	Port            string           `env:"PORT"`
	Prod            bool             `env:"PROD"`
	UseHTTPS        bool             `env:"USE_HTTPS"`
	TLSCertFile     string           `env:"TLS_CERT_FILE"`
	TLSKeyFile      string           `env:"TLS_KEY_FILE"`
	Key             string           `env:"KEY"`
	JWTTTL          time.Duration    `env:"JWT_TTL" envDefault:"24h"`
	Storage         string           `env:"STORAGE" envDefault:"postgres"`
	MigratePostgres bool             `env:"MIGRATE_POSTGRES"`
	VerbosePostgres bool             `env:"VERBOSE_POSTGRES"`
	RedisURL        string           `env:"REDIS_URL"`
	Postgres        PostgresSettings `envPrefix:"POSTGRES_"`
}

type PostgresSettings struct {
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Database string `env:"DATABASE"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DSN builds the lib/pq connection URL.
func (p PostgresSettings) DSN() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.Database,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

// Load reads .env (when present) and parses the environment.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[CONFIG] Error loading .env file: %v", err)
	}
	return Parse()
}

// Parse reads Settings from the current environment only.
func Parse() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	switch s.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid STORAGE %q: expected %q or %q", s.Storage, StoragePostgres, StorageMemory)
	}
	if s.UseHTTPS && (s.TLSCertFile == "" || s.TLSKeyFile == "") {
		return errors.New("USE_HTTPS requires TLS_CERT_FILE and TLS_KEY_FILE")
	}
	if s.Prod && s.Key == "" {
		return errors.New("KEY must be set in production")
	}
	if s.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

// ListenPort keeps the historical defaults: 443 over HTTPS, 8080 otherwise.
func (s Settings) ListenPort() string {
	if s.Port != "" {
		return s.Port
	}
	if s.UseHTTPS {
		return "443"
	}
	return "8080"
}
