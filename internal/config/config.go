// Package config loads settings for the back-office CLI and the dev API from
// an optional .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	APIURL      string `mapstructure:"API_URL"`
	HTTPTimeout string `mapstructure:"HTTP_TIMEOUT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	StorePath   string `mapstructure:"STORE_PATH"`
	StoreDSN    string `mapstructure:"STORE_DSN"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	DevAPIAddr    string `mapstructure:"DEVAPI_ADDR"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	KafkaBrokers  string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic    string `mapstructure:"KAFKA_TOPIC"`
	AdminUsername string `mapstructure:"DEVAPI_ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"DEVAPI_ADMIN_PASSWORD"`
	AdminEmail    string `mapstructure:"DEVAPI_ADMIN_EMAIL"`
	ResetLinkBase string `mapstructure:"RESET_LINK_BASE"`
}

var drivers = []string{"sqlite", "postgres", "redis", "memory"}

func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Notice: cannot load %s: %v. Using system environment variables", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("API_URL", "http://localhost:8000")
	v.SetDefault("HTTP_TIMEOUT", "0s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "sqlite")
	v.SetDefault("STORE_PATH", defaultStorePath())
	v.SetDefault("STORE_DSN", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "backoffice:")
	v.SetDefault("DEVAPI_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "backoffice_events")
	v.SetDefault("DEVAPI_ADMIN_USERNAME", "")
	v.SetDefault("DEVAPI_ADMIN_PASSWORD", "")
	v.SetDefault("DEVAPI_ADMIN_EMAIL", "")
	v.SetDefault("RESET_LINK_BASE", "http://localhost:5173")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: API_URL must be an absolute URL, got %q", c.APIURL)
	}

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	known := false
	for _, d := range drivers {
		if d == c.StoreDriver {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("config: STORE_DRIVER must be one of %s, got %q", strings.Join(drivers, ", "), c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.StoreDSN == "" {
		return errors.New("config: STORE_DSN must be set when STORE_DRIVER=postgres")
	}

	if _, err := time.ParseDuration(c.HTTPTimeout); err != nil {
		return fmt.Errorf("config: HTTP_TIMEOUT: %w", err)
	}
	return nil
}

// Timeout is zero when unset, which leaves http.Client without a deadline.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func (c *Config) Brokers() []string {
	return CSV(c.KafkaBrokers)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "backoffice_storage.db"
	}
	return filepath.Join(dir, "restaurant-backoffice", "storage.db")
}
