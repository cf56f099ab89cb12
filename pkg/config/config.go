package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gatewaykit/portalsync/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Edge       EdgeConfig       `yaml:"edge"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`
	Audit      AuditConfig      `yaml:"audit"`
	LogLevel   string           `yaml:"log_level"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// EdgeConfig holds gateway management API connection settings
type EdgeConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Organization string        `yaml:"organization"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	Timeout      time.Duration `yaml:"timeout"`
}

// PostgresConfig holds account database settings
type PostgresConfig struct {
	URL          string        `yaml:"url"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	ConnLifetime time.Duration `yaml:"conn_lifetime"`
}

// RedisConfig holds entity cache backend settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// CacheConfig holds entity cache tuning
type CacheConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	L1Entries int           `yaml:"l1_entries"`
}

// ReconcilerConfig holds the scheduled reconciliation settings
type ReconcilerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Schedule    string `yaml:"schedule"`
	Concurrency int    `yaml:"concurrency"`
}

// AuditConfig holds audit log settings
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	MaxSize  int64  `yaml:"max_size"`
	MaxFiles int    `yaml:"max_files"`
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Edge: EdgeConfig{
			Timeout: 30 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			ConnLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Cache: CacheConfig{
			TTL:       15 * time.Minute,
			L1Entries: 1024,
		},
		Reconciler: ReconcilerConfig{
			Schedule:    "@every 1h",
			Concurrency: 8,
		},
		Audit: AuditConfig{
			Dir: "audit-logs",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and environment variable overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads configuration from environment variables only
func LoadConfig() (*Config, error) {
	return Load("")
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Server.Host = getEnv("PORTALSYNC_HOST", c.Server.Host)
	c.Server.Port = getEnv("PORTALSYNC_PORT", c.Server.Port)
	c.Server.HealthPort = getEnv("PORTALSYNC_HEALTH_PORT", c.Server.HealthPort)
	c.Server.ReadTimeout = getEnvDuration("PORTALSYNC_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("PORTALSYNC_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("PORTALSYNC_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("PORTALSYNC_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Edge.BaseURL = getEnv("PORTALSYNC_EDGE_BASE_URL", c.Edge.BaseURL)
	c.Edge.Organization = getEnv("PORTALSYNC_EDGE_ORG", c.Edge.Organization)
	c.Edge.Username = getEnv("PORTALSYNC_EDGE_USERNAME", c.Edge.Username)
	c.Edge.Password = getEnv("PORTALSYNC_EDGE_PASSWORD", c.Edge.Password)
	c.Edge.Timeout = getEnvDuration("PORTALSYNC_EDGE_TIMEOUT", c.Edge.Timeout)

	c.Postgres.URL = getEnv("PORTALSYNC_POSTGRES_URL", c.Postgres.URL)
	c.Postgres.MaxOpenConns = getEnvInt("PORTALSYNC_POSTGRES_MAX_CONNS", c.Postgres.MaxOpenConns)
	c.Postgres.MaxIdleConns = getEnvInt("PORTALSYNC_POSTGRES_IDLE_CONNS", c.Postgres.MaxIdleConns)
	c.Postgres.ConnLifetime = getEnvDuration("PORTALSYNC_POSTGRES_CONN_LIFETIME", c.Postgres.ConnLifetime)

	c.Redis.Addr = getEnv("PORTALSYNC_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("PORTALSYNC_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("PORTALSYNC_REDIS_DB", c.Redis.DB)
	c.Redis.PoolSize = getEnvInt("PORTALSYNC_REDIS_POOL_SIZE", c.Redis.PoolSize)

	c.Cache.TTL = getEnvDuration("PORTALSYNC_CACHE_TTL", c.Cache.TTL)
	c.Cache.L1Entries = getEnvInt("PORTALSYNC_CACHE_L1_ENTRIES", c.Cache.L1Entries)

	c.Reconciler.Enabled = getEnvBool("PORTALSYNC_RECONCILER_ENABLED", c.Reconciler.Enabled)
	c.Reconciler.Schedule = getEnv("PORTALSYNC_RECONCILER_SCHEDULE", c.Reconciler.Schedule)
	c.Reconciler.Concurrency = getEnvInt("PORTALSYNC_RECONCILER_CONCURRENCY", c.Reconciler.Concurrency)

	c.Audit.Enabled = getEnvBool("PORTALSYNC_AUDIT_ENABLED", c.Audit.Enabled)
	c.Audit.Dir = getEnv("PORTALSYNC_AUDIT_DIR", c.Audit.Dir)

	c.LogLevel = getEnv("PORTALSYNC_LOG_LEVEL", c.LogLevel)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Edge.BaseURL == "" {
		return fmt.Errorf("edge base URL is required")
	}
	if c.Edge.Organization == "" {
		return fmt.Errorf("edge organization is required")
	}

	if c.Postgres.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Reconciler.Enabled && c.Reconciler.Schedule == "" {
		return fmt.Errorf("reconciler schedule is required when the reconciler is enabled")
	}
	return nil
}

// ParsedLogLevel returns the configured log level
func (c *Config) ParsedLogLevel() observability.LogLevel {
	return observability.ParseLogLevel(c.LogLevel)
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
