// Package config loads catalog settings from an optional YAML file and the
// environment. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Service  string
	Port     int
	LogLevel string

	DatabaseURL string
	RedisURL    string

	KafkaBrokers           []string
	KafkaTopicProductAdded string

	MetricsEnabled bool
	MetricsToken   string

	StrictNotFound       bool
	WriteRateLimitPerMin int
	ShutdownTimeout      time.Duration

	// Ignored lists environment keys whose values could not be parsed and
	// were replaced by the file or default value.
	Ignored []string
}

type configFile struct {
	Service struct {
		Name     string `yaml:"name"`
		Port     int    `yaml:"port"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"service"`
	Dependencies struct {
		DatabaseURL            string   `yaml:"database_url"`
		RedisURL               string   `yaml:"redis_url"`
		KafkaBrokers           []string `yaml:"kafka_brokers"`
		KafkaTopicProductAdded string   `yaml:"kafka_topic_product_added"`
	} `yaml:"dependencies"`
	HTTP struct {
		MetricsEnabled         *bool `yaml:"metrics_enabled"`
		StrictNotFound         *bool `yaml:"strict_not_found"`
		WriteRateLimitPerMin   int   `yaml:"write_rate_limit_per_min"`
		ShutdownTimeoutSeconds int   `yaml:"shutdown_timeout_seconds"`
	} `yaml:"http"`
}

func Default() Config {
	return Config{
		Service:                "catalog",
		Port:                   8082,
		LogLevel:               "info",
		KafkaTopicProductAdded: "catalog.product_added",
		MetricsEnabled:         true,
		ShutdownTimeout:        10 * time.Second,
	}
}

// Load applies path (if it exists) and then the environment on top of the
// defaults. A missing file is not an error; an unparsable one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(&cfg, raw); err != nil {
				return Config{}, err
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.Service.Name != "" {
		cfg.Service = f.Service.Name
	}
	if f.Service.Port > 0 {
		cfg.Port = f.Service.Port
	}
	if f.Service.LogLevel != "" {
		cfg.LogLevel = f.Service.LogLevel
	}
	if f.Dependencies.DatabaseURL != "" {
		cfg.DatabaseURL = f.Dependencies.DatabaseURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}
	if f.Dependencies.KafkaTopicProductAdded != "" {
		cfg.KafkaTopicProductAdded = f.Dependencies.KafkaTopicProductAdded
	}
	if f.HTTP.MetricsEnabled != nil {
		cfg.MetricsEnabled = *f.HTTP.MetricsEnabled
	}
	if f.HTTP.StrictNotFound != nil {
		cfg.StrictNotFound = *f.HTTP.StrictNotFound
	}
	if f.HTTP.WriteRateLimitPerMin > 0 {
		cfg.WriteRateLimitPerMin = f.HTTP.WriteRateLimitPerMin
	}
	if f.HTTP.ShutdownTimeoutSeconds > 0 {
		cfg.ShutdownTimeout = time.Duration(f.HTTP.ShutdownTimeoutSeconds) * time.Second
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Service = envOrDefault("SERVICE_NAME", cfg.Service)
	cfg.Port = cfg.envInt("PORT", cfg.Port)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicProductAdded = envOrDefault("KAFKA_TOPIC_PRODUCT_ADDED", cfg.KafkaTopicProductAdded)
	cfg.MetricsEnabled = cfg.envBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.MetricsToken = envOrDefault("METRICS_TOKEN", cfg.MetricsToken)
	cfg.StrictNotFound = cfg.envBool("STRICT_NOT_FOUND", cfg.StrictNotFound)
	cfg.WriteRateLimitPerMin = cfg.envInt("WRITE_RATE_LIMIT_PER_MIN", cfg.WriteRateLimitPerMin)
	cfg.ShutdownTimeout = time.Duration(cfg.envInt("SHUTDOWN_TIMEOUT_SECONDS", int(cfg.ShutdownTimeout.Seconds()))) * time.Second
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func (c *Config) envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.Ignored = append(c.Ignored, name)
		return fallback
	}
	return v
}

func (c *Config) envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.Ignored = append(c.Ignored, name)
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
