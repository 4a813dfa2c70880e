// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig holds core service identity and ports.
type ServiceConfig struct {
	Principal string
	HTTPPort  string
	Env       string
}

// AgentConfig holds conversational-model settings.
type AgentConfig struct {
	APIKey     string
	LiveModel  string // model used for the live voice session
	EvalModel  string // model used for evaluation and feedback
	GenModel   string // model used for JD question generation
	MaxRetries int    // retries per pipeline stage (attempts = retries + 1)
	RetryDelay time.Duration
}

// KafkaConfig holds best-effort write-through settings.
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicSessions string
	TopicFeedback string
	Principal     string
}

// QuestionsConfig holds question catalog paths.
type QuestionsConfig struct {
	CatalogPath string
	CachePath   string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsPort string
}

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	Agent         AgentConfig
	Kafka         KafkaConfig
	Questions     QuestionsConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment, applying defaults.
func Load() *Configuration {
	return &Configuration{
		Service: ServiceConfig{
			Principal: envOrDefault("SERVICE_PRINCIPAL", "svc-interview"),
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
			Env:       envOrDefault("ENV", "development"),
		},
		Agent: AgentConfig{
			APIKey:     os.Getenv("GOOGLE_API_KEY"),
			LiveModel:  envOrDefault("AGENT_LIVE_MODEL", "gemini-2.0-flash-live-001"),
			EvalModel:  envOrDefault("AGENT_EVAL_MODEL", "gemini-2.5-flash"),
			GenModel:   envOrDefault("AGENT_GEN_MODEL", "gemini-2.5-flash"),
			MaxRetries: envOrDefaultInt("AGENT_MAX_RETRIES", 2),
			RetryDelay: envOrDefaultDuration("AGENT_RETRY_DELAY", 2*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envOrDefaultList("KAFKA_BROKERS", nil),
			TopicSessions: envOrDefault("KAFKA_TOPIC_SESSIONS", "interview.sessions"),
			TopicFeedback: envOrDefault("KAFKA_TOPIC_FEEDBACK", "interview.feedback"),
			Principal:     envOrDefault("SERVICE_PRINCIPAL", "svc-interview"),
		},
		Questions: QuestionsConfig{
			CatalogPath: envOrDefault("QUESTIONS_CATALOG_PATH", "data/questions.json"),
			CachePath:   envOrDefault("QUESTIONS_CACHE_PATH", "data/question_sets.json"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
