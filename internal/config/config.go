package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable holding an optional YAML
// config file. Environment variables win over values from the file.
const ConfigFileEnv = "PROFILE_SYNC_CONFIG"

// Config holds application configuration
type Config struct {
	DatabaseURL     string `yaml:"database_url"`
	ServerPort      string `yaml:"server_port"`
	ServerDebugMode bool   `yaml:"server_debug_mode"`
	LogFormat       string `yaml:"log_format"`
	EnableHSTS      bool   `yaml:"enable_hsts"`
	MigrateOnStart  bool   `yaml:"migrate_on_start"`

	RedisURL           string `yaml:"redis_url"`
	RateLimit          string `yaml:"rate_limit"`
	CORSAllowedOrigins string `yaml:"cors_allowed_origins"`
	RabbitMQURL        string `yaml:"rabbitmq_url"`

	OTELEnabled  bool   `yaml:"otel_enabled"`
	OTELEndpoint string `yaml:"otel_endpoint"`

	AuthRequired     bool   `yaml:"auth_required"`
	IdentityIssuer   string `yaml:"identity_issuer"`
	IdentityJWKSURL  string `yaml:"identity_jwks_url"`
	IdentityAudience string `yaml:"identity_audience"`
	IdentityAPIURL   string `yaml:"identity_api_url"`
	IdentityAPIKey   string `yaml:"identity_api_key"`
}

// MemoryDatabaseURL selects the in-process profile store
const MemoryDatabaseURL = "memory://"

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		ServerPort:         "8080",
		LogFormat:          "json",
		RateLimit:          "20-S",
		CORSAllowedOrigins: "http://localhost:3000",
	}
}

// Load loads configuration from the optional YAML file and then from
// environment variables
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.EnableHSTS = getEnvBool("ENABLE_HSTS", cfg.EnableHSTS)
	cfg.MigrateOnStart = getEnvBool("MIGRATE_ON_START", cfg.MigrateOnStart)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RateLimit = getEnv("RATE_LIMIT", cfg.RateLimit)
	cfg.CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)
	cfg.AuthRequired = getEnvBool("AUTH_REQUIRED", cfg.AuthRequired)
	cfg.IdentityIssuer = getEnv("IDENTITY_ISSUER", cfg.IdentityIssuer)
	cfg.IdentityJWKSURL = getEnv("IDENTITY_JWKS_URL", cfg.IdentityJWKSURL)
	cfg.IdentityAudience = getEnv("IDENTITY_AUDIENCE", cfg.IdentityAudience)
	cfg.IdentityAPIURL = getEnv("IDENTITY_API_URL", cfg.IdentityAPIURL)
	cfg.IdentityAPIKey = getEnv("IDENTITY_API_KEY", cfg.IdentityAPIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at startup
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.AuthRequired && c.IdentityIssuer == "" {
		return errors.New("IDENTITY_ISSUER is required when AUTH_REQUIRED is enabled")
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("SERVER_PORT must be numeric, got %q", c.ServerPort)
	}
	return nil
}

// UsesMemoryStore reports whether profiles are kept in process memory
func (c *Config) UsesMemoryStore() bool {
	return strings.HasPrefix(c.DatabaseURL, MemoryDatabaseURL)
}

// IdentityConfigured reports whether the session endpoint can verify tokens
func (c *Config) IdentityConfigured() bool {
	return c.IdentityIssuer != "" && c.IdentityAPIURL != ""
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
