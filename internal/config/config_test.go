package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "ENV",
		"GOOGLE_API_KEY", "AGENT_LIVE_MODEL", "AGENT_EVAL_MODEL", "AGENT_GEN_MODEL",
		"AGENT_MAX_RETRIES", "AGENT_RETRY_DELAY",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_SESSIONS", "KAFKA_TOPIC_FEEDBACK",
		"QUESTIONS_CATALOG_PATH", "QUESTIONS_CACHE_PATH",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_PORT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Service.Principal != "svc-interview" {
		t.Errorf("expected default principal 'svc-interview', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}

	if cfg.Agent.LiveModel != "gemini-2.0-flash-live-001" {
		t.Errorf("unexpected default live model %s", cfg.Agent.LiveModel)
	}
	if cfg.Agent.MaxRetries != 2 {
		t.Errorf("expected default max retries 2, got %d", cfg.Agent.MaxRetries)
	}
	if cfg.Agent.RetryDelay != 2*time.Second {
		t.Errorf("expected default retry delay 2s, got %v", cfg.Agent.RetryDelay)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicSessions != "interview.sessions" {
		t.Errorf("unexpected default sessions topic %s", cfg.Kafka.TopicSessions)
	}
	if cfg.Kafka.TopicFeedback != "interview.feedback" {
		t.Errorf("unexpected default feedback topic %s", cfg.Kafka.TopicFeedback)
	}

	if cfg.Questions.CatalogPath != "data/questions.json" {
		t.Errorf("unexpected default catalog path %s", cfg.Questions.CatalogPath)
	}

	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.MetricsPort != "9090" {
		t.Errorf("expected default metrics port '9090', got %s", cfg.Observability.MetricsPort)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)

	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("AGENT_MAX_RETRIES", "5")
	t.Setenv("AGENT_RETRY_DELAY", "500ms")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("LOG_FORMAT", "console")

	cfg := Load()

	if cfg.Service.HTTPPort != "9000" {
		t.Errorf("expected port '9000', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Agent.MaxRetries != 5 {
		t.Errorf("expected max retries 5, got %d", cfg.Agent.MaxRetries)
	}
	if cfg.Agent.RetryDelay != 500*time.Millisecond {
		t.Errorf("expected retry delay 500ms, got %v", cfg.Agent.RetryDelay)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker1:9092" || cfg.Kafka.Brokers[1] != "broker2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogFormat != "console" {
		t.Errorf("expected log format 'console', got %s", cfg.Observability.LogFormat)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)

	t.Setenv("AGENT_MAX_RETRIES", "not-a-number")
	t.Setenv("AGENT_RETRY_DELAY", "soon")
	t.Setenv("KAFKA_ENABLED", "maybe")

	cfg := Load()

	if cfg.Agent.MaxRetries != 2 {
		t.Errorf("expected fallback max retries 2, got %d", cfg.Agent.MaxRetries)
	}
	if cfg.Agent.RetryDelay != 2*time.Second {
		t.Errorf("expected fallback retry delay 2s, got %v", cfg.Agent.RetryDelay)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected fallback Kafka disabled")
	}
}
