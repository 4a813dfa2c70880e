// Package events provides best-effort write-through of session records and
// feedback reports to Kafka. Absence or failure of the broker never affects
// in-memory correctness; when disabled the publisher degrades to log-only.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ai-interview-service/internal/observability/metrics"
)

// SessionRecord is the persisted shape of a session, keyed by session id.
type SessionRecord struct {
	SessionID     string  `json:"sessionId"`
	CandidateName string  `json:"candidateName"`
	Company       string  `json:"company"`
	Position      string  `json:"position"`
	Status        string  `json:"status"`
	QuestionCount int     `json:"questionCount"`
	CreatedAt     int64   `json:"createdAt"`
	CompletedAt   int64   `json:"completedAt,omitempty"`
	OverallScore  float64 `json:"overallScore,omitempty"`
}

// Publisher publishes session and feedback records to separate Kafka topics.
type Publisher struct {
	writerSessions *kafka.Writer
	writerFeedback *kafka.Writer
	principal      string
	topicSessions  string
	topicFeedback  string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicSessions string
	TopicFeedback string
	Principal     string
	Enabled       bool
}

// New creates a new Kafka publisher with separate topics for session records
// and feedback reports.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:     cfg.Principal,
			topicSessions: cfg.TopicSessions,
			topicFeedback: cfg.TopicFeedback,
			enabled:       false,
			metrics:       m,
		}
	}

	// Longer dial timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerSessions := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicSessions,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerFeedback := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicFeedback,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicSessions", cfg.TopicSessions).
		Str("topicFeedback", cfg.TopicFeedback).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerSessions: writerSessions,
		writerFeedback: writerFeedback,
		principal:      cfg.Principal,
		topicSessions:  cfg.TopicSessions,
		topicFeedback:  cfg.TopicFeedback,
		enabled:        true,
		metrics:        m,
	}
}

// PublishSession writes a session record, keyed by session id.
func (p *Publisher) PublishSession(ctx context.Context, sessionID string, record any) error {
	return p.publish(ctx, p.writerSessions, p.topicSessions, sessionID, record)
}

// PublishFeedback writes a feedback report, keyed by session id.
func (p *Publisher) PublishFeedback(ctx context.Context, sessionID string, report any) error {
	return p.publish(ctx, p.writerFeedback, p.topicFeedback, sessionID, report)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerSessions != nil {
		if e := p.writerSessions.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing sessions writer")
			err = e
		}
	}
	if p.writerFeedback != nil {
		if e := p.writerFeedback.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing feedback writer")
			err = e
		}
	}
	return err
}
