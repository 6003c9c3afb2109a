package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
	"secure-quiz-service/internal/crypto"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Crypto struct {
		Secret string `yaml:"secret"`
	} `yaml:"crypto"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		TokenTTL  string `yaml:"tokenTTL"`
	} `yaml:"auth"`
	Quiz struct {
		TimeLimit string `yaml:"timeLimit"`
	} `yaml:"quiz"`
	Store struct {
		Retries      int    `yaml:"retries"`
		RetryBackoff string `yaml:"retryBackoff"`
	} `yaml:"store"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error; the environment alone can configure the service.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	override := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override("PORT", &c.Server.Port)
	override("POSTGRES_URL", &c.Postgres.URL)
	override("REDIS_ADDR", &c.Redis.Addr)
	override("REDIS_PASSWORD", &c.Redis.Password)
	override("CRYPTO_SECRET", &c.Crypto.Secret)
	override("JWT_SECRET", &c.Auth.JWTSecret)
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	return nil
}

// Validate rejects configurations the server must not start with.
func (c Config) Validate() error {
	if c.Crypto.Secret == "" {
		return errors.New("crypto secret is not configured (crypto.secret or CRYPTO_SECRET)")
	}
	if len(c.Crypto.Secret) < crypto.MinSecretLength {
		return fmt.Errorf("crypto secret must be at least %d bytes", crypto.MinSecretLength)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is not configured (auth.jwtSecret or JWT_SECRET)")
	}
	if c.Store.Retries < 0 {
		return errors.New("store.retries must not be negative")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
