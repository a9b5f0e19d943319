// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // external base URL, used for webhook callbacks
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // session cache TTL
}

type PaymentConfig struct {
	MercadoPago struct {
		AccessToken     string `yaml:"access_token"`
		BaseURL         string `yaml:"base_url"`
		NotificationURL string `yaml:"notification_url"`
	} `yaml:"mercadopago"`
}

type AuthConfig struct {
	HMACSecret string        `yaml:"hmac_secret"`
	TTL        time.Duration `yaml:"ttl"`
}

type LookupConfig struct {
	Origin string `yaml:"origin"`
	APIKey string `yaml:"api_key"`
}

type SchedulerConfig struct {
	ExpiryCheckEvery time.Duration `yaml:"expiry_check_every"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Auth      AuthConfig      `yaml:"auth"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Payment.MercadoPago.BaseURL == "" {
		cfg.Payment.MercadoPago.BaseURL = "https://api.mercadopago.com"
	}
	if cfg.Payment.MercadoPago.NotificationURL == "" && cfg.Server.PublicURL != "" {
		cfg.Payment.MercadoPago.NotificationURL = cfg.Server.PublicURL + "/api/payments/webhook"
	}
	if cfg.Auth.TTL <= 0 {
		cfg.Auth.TTL = 24 * time.Hour
	}
	if cfg.Scheduler.ExpiryCheckEvery <= 0 {
		cfg.Scheduler.ExpiryCheckEvery = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Payment.MercadoPago.AccessToken == "" {
		return nil, errors.New("payment.mercadopago.access_token is required")
	}
	if cfg.Auth.HMACSecret == "" {
		return nil, errors.New("auth.hmac_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
