// Package config загружает конфигурацию сервера из YAML-файла
// с переопределением через переменные окружения.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	Addr      string          `yaml:"addr"`
	DBPath    string          `yaml:"db_path"`
	LogLevel  string          `yaml:"log_level"`
	JWTSecret string          `yaml:"jwt_secret"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig controls the per-user request limiter.
type RateLimitConfig struct {
	Rate   int           `yaml:"rate"`
	Window time.Duration `yaml:"window"`
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "syncmarks.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RateLimit.Rate <= 0 {
		c.RateLimit.Rate = 120
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
}

// env-переопределения поверх файла
func (c *Config) applyEnv() {
	if v := os.Getenv("SYNCMARKS_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("SYNCMARKS_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("SYNCMARKS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SYNCMARKS_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
}

// Validate проверяет обязательные поля.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required (config file or SYNCMARKS_JWT_SECRET)")
	}
	return nil
}

// Load reads a YAML config file; a missing path loads defaults + env only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.defaults()

	return cfg, nil
}
