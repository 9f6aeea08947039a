package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// insecureSecret is the development fallback; Validate rejects it outside
// development environments.
const insecureSecret = "supersecretkey"

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	PageSize      int           `yaml:"page_size"`
	MaxPageSize   int           `yaml:"max_page_size"`
	SeedGuests    bool          `yaml:"seed_guests"`
}

// LoadConfig builds the configuration from environment defaults and, when
// path is non-empty, overrides from a YAML file.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("CODERR_ADDR", ":8080"),
		JWTSecret:     getEnv("CODERR_JWT_SECRET", insecureSecret),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("CODERR_DATABASE_PATH", "coderr.db"),
		TokenDuration: 24 * time.Hour,
		PageSize:      6,
		MaxPageSize:   100,
		SeedGuests:    getEnvBool("CODERR_SEED_GUESTS", true),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the configuration for values that must not reach a real
// deployment and fills defaults for zero values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 24 * time.Hour
	}
	if c.PageSize <= 0 {
		c.PageSize = 6
	}
	if c.MaxPageSize < c.PageSize {
		c.MaxPageSize = 100
	}
	if c.JWTSecret == insecureSecret && os.Getenv("CODERR_ENV") != "development" {
		return fmt.Errorf("jwt_secret is the insecure default; set CODERR_JWT_SECRET")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return def
}
