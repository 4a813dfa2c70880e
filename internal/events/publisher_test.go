package events

import (
	"context"
	"testing"
)

func TestNew_NilConfig(t *testing.T) {
	p := New(nil)

	if p.enabled {
		t.Error("expected publisher disabled for nil config")
	}
	// Publishing while disabled must be a no-op, not an error.
	if err := p.PublishSession(context.Background(), "sess-1", map[string]string{"k": "v"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_DisabledConfig(t *testing.T) {
	p := New(&Config{
		Enabled:       false,
		TopicSessions: "interview.sessions",
		TopicFeedback: "interview.feedback",
		Principal:     "svc-interview",
	})

	if p.enabled {
		t.Error("expected publisher disabled")
	}
	if p.topicSessions != "interview.sessions" {
		t.Errorf("unexpected sessions topic %s", p.topicSessions)
	}
	if err := p.PublishFeedback(context.Background(), "sess-1", SessionRecord{SessionID: "sess-1"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_EnabledWithoutBrokers(t *testing.T) {
	p := New(&Config{
		Enabled:       true,
		Brokers:       nil,
		TopicSessions: "interview.sessions",
		TopicFeedback: "interview.feedback",
	})

	if p.enabled {
		t.Error("expected publisher disabled when no brokers configured")
	}
}

func TestPublish_UnmarshalableEvent(t *testing.T) {
	p := New(nil)

	// Channels cannot be marshaled to JSON.
	err := p.PublishSession(context.Background(), "sess-1", make(chan int))
	if err == nil {
		t.Error("expected marshal error")
	}
}

func TestClose_Disabled(t *testing.T) {
	p := New(nil)
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
