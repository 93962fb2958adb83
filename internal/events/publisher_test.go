package events

import (
	"context"
	"testing"
)

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.enabled {
				t.Error("expected publisher to be disabled")
			}
			if p.writerCaption != nil {
				t.Error("expected nil caption writer when disabled")
			}
			if p.writerLog != nil {
				t.Error("expected nil log writer when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := &Config{
		Enabled:      false,
		Brokers:      []string{"localhost:9092"},
		TopicCaption: "test.caption",
		TopicLog:     "test.log",
		Principal:    "test-principal",
	}

	p := New(cfg)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topicCaption != "test.caption" {
		t.Errorf("expected topic caption 'test.caption', got %s", p.topicCaption)
	}
	if p.topicLog != "test.log" {
		t.Errorf("expected topic log 'test.log', got %s", p.topicLog)
	}
}

func TestPublisher_PublishCaption_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := map[string]string{"caption": "test caption"}
	err := p.PublishCaption(context.Background(), "test-key", event)

	if err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_PublishLog_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := map[string]string{"line": "test line"}
	err := p.PublishLog(context.Background(), "test-key", event)

	if err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_PublishCaption_InvalidJSON(t *testing.T) {
	p := New(&Config{Enabled: false})

	// Create an unmarshalable value (channel)
	event := make(chan int)
	err := p.PublishCaption(context.Background(), "test-key", event)

	if err == nil {
		t.Error("expected error for unmarshalable event")
	}
}

func TestPublisher_PublishLog_InvalidJSON(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := make(chan int)
	err := p.PublishLog(context.Background(), "test-key", event)

	if err == nil {
		t.Error("expected error for unmarshalable event")
	}
}

func TestPublisher_Close_NoWriters(t *testing.T) {
	p := New(&Config{Enabled: false})

	err := p.Close()
	if err != nil {
		t.Errorf("expected no error closing disabled publisher, got %v", err)
	}
}

func TestPublisher_Close_NilPublisher(t *testing.T) {
	p := &Publisher{
		writerCaption: nil,
		writerLog:     nil,
	}

	err := p.Close()
	if err != nil {
		t.Errorf("expected no error closing publisher with nil writers, got %v", err)
	}
}

type testEvent struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	Caption   string `json:"caption"`
}

func TestPublisher_PublishCaption_ValidEvent(t *testing.T) {
	p := New(&Config{
		Enabled:      false,
		TopicCaption: "test.caption",
		Principal:    "test-svc",
	})

	event := testEvent{
		EventType: "caption.updated",
		SessionID: "sess-123",
		Caption:   "hello world",
	}

	err := p.PublishCaption(context.Background(), "sess-123", event)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestPublisher_PublishLog_ValidEvent(t *testing.T) {
	p := New(&Config{
		Enabled:   false,
		TopicLog:  "test.log",
		Principal: "test-svc",
	})

	event := testEvent{
		EventType: "session.log",
		SessionID: "sess-123",
		Caption:   "hello world",
	}

	err := p.PublishLog(context.Background(), "sess-123", event)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
