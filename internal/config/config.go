package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config runtime configuration for the admin console
type Config struct {
	Env string `yaml:"env"`

	// Backend API
	APIBaseURL string `yaml:"api_base_url"`
	APIPrefix  string `yaml:"api_prefix"`

	// Public site (preview iframe family)
	SiteOrigin string `yaml:"site_origin"`

	// Local preview bridge
	BridgeAddr string `yaml:"bridge_addr"`

	// Operator state (durable token / preference slots)
	StatePath string `yaml:"state_path"`

	// Optional Redis cache mirror
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// Load builds the config from environment variables, optionally overlaid
// by a yaml file pointed at by ADMIN_CONFIG_FILE.
// Priority: OS env > yaml file > defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Env:        "development",
		APIBaseURL: "http://localhost:3000",
		APIPrefix:  "/api",
		SiteOrigin: "https://www.pyomin.com",
		BridgeAddr: "127.0.0.1:4173",
		StatePath:  defaultStatePath(),
	}

	if file := os.Getenv("ADMIN_CONFIG_FILE"); file != "" {
		if err := cfg.loadFile(file); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cfg.SiteOrigin == "" {
		return nil, fmt.Errorf("config: SITE_ORIGIN must be set")
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("ADMIN_ENV", c.Env)
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.APIPrefix = getEnv("API_PREFIX", c.APIPrefix)
	c.SiteOrigin = getEnv("SITE_ORIGIN", c.SiteOrigin)
	c.BridgeAddr = getEnv("BRIDGE_ADDR", c.BridgeAddr)
	c.StatePath = getEnv("ADMIN_STATE_PATH", c.StatePath)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)

	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bluecool-admin.db"
	}
	return filepath.Join(dir, "bluecool-admin", "state.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
