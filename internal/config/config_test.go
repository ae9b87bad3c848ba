package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8082 || cfg.Addr() != ":8082" {
		t.Fatalf("port=%d addr=%s", cfg.Port, cfg.Addr())
	}
	if !cfg.MetricsEnabled || cfg.StrictNotFound {
		t.Fatalf("unexpected flags: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown=%v", cfg.ShutdownTimeout)
	}
	if cfg.KafkaTopicProductAdded != "catalog.product_added" {
		t.Fatalf("topic=%s", cfg.KafkaTopicProductAdded)
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	p := writeFile(t, `
service:
  name: catalog-eu
  port: 9001
dependencies:
  redis_url: redis://cache:6379/0
  kafka_brokers: [" k1:9092 ", "", "k2:9092"]
http:
  metrics_enabled: false
  strict_not_found: true
  write_rate_limit_per_min: 30
  shutdown_timeout_seconds: 3
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Service != "catalog-eu" || cfg.Port != 9001 {
		t.Fatalf("service=%s port=%d", cfg.Service, cfg.Port)
	}
	if cfg.RedisURL != "redis://cache:6379/0" {
		t.Fatalf("redis=%s", cfg.RedisURL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers=%v", cfg.KafkaBrokers)
	}
	if cfg.MetricsEnabled || !cfg.StrictNotFound {
		t.Fatalf("flags: %+v", cfg)
	}
	if cfg.WriteRateLimitPerMin != 30 || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("limit=%d shutdown=%v", cfg.WriteRateLimitPerMin, cfg.ShutdownTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	p := writeFile(t, "service:\n  port: 9001\n")
	t.Setenv("PORT", "9100")
	t.Setenv("STRICT_NOT_FOUND", "true")
	t.Setenv("KAFKA_BROKERS", "a:1, b:2")
	t.Setenv("METRICS_TOKEN", "secret")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9100 {
		t.Fatalf("port=%d", cfg.Port)
	}
	if !cfg.StrictNotFound {
		t.Fatalf("strict not set")
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:2" {
		t.Fatalf("brokers=%v", cfg.KafkaBrokers)
	}
	if cfg.MetricsToken != "secret" {
		t.Fatalf("token=%s", cfg.MetricsToken)
	}
}

func TestBadEnvFallsBack(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8082 || !cfg.MetricsEnabled {
		t.Fatalf("cfg=%+v", cfg)
	}
	if strings.Join(cfg.Ignored, ",") != "PORT,METRICS_ENABLED" {
		t.Fatalf("ignored=%v", cfg.Ignored)
	}
}

func TestValidEnvIgnoresNothing(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Ignored) != 0 {
		t.Fatalf("ignored=%v", cfg.Ignored)
	}
	if cfg.ShutdownTimeout != 4*time.Second {
		t.Fatalf("shutdown=%v", cfg.ShutdownTimeout)
	}
}

func TestMalformedFile(t *testing.T) {
	p := writeFile(t, "service: [unterminated\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestInvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected port error")
	}
}
