// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"live-caption-service/internal/observability/metrics"
)

// Publisher publishes caption updates and session log lines to
// separate Kafka topics.
type Publisher struct {
	writerCaption *kafka.Writer
	writerLog     *kafka.Writer
	principal     string
	topicCaption  string
	topicLog      string
	enabled       bool
	metrics       *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicCaption string
	TopicLog     string
	Principal    string
	Enabled      bool
}

// New creates a new Kafka event publisher with separate topics for
// caption updates and finalized session log lines.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	// Handle nil config case
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
			principal:    cfg.Principal,
			topicCaption: cfg.TopicCaption,
			topicLog:     cfg.TopicLog,
			enabled:      false,
			metrics:      m,
		}
	}

	// Create a custom dialer with longer timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerCaption := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicCaption,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerLog := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicLog,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicCaption", cfg.TopicCaption).
		Str("topicLog", cfg.TopicLog).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerCaption: writerCaption,
		writerLog:     writerLog,
		principal:     cfg.Principal,
		topicCaption:  cfg.TopicCaption,
		topicLog:      cfg.TopicLog,
		enabled:       true,
		metrics:       m,
	}
}

// PublishCaption publishes a caption update event to the caption topic.
func (p *Publisher) PublishCaption(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerCaption, p.topicCaption, "caption", key, event)
}

// PublishLog publishes a session log event to the log topic.
func (p *Publisher) PublishLog(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerLog, p.topicLog, "log", key, event)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	// Log the event
	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerCaption != nil {
		if e := p.writerCaption.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing caption writer")
			err = e
		}
	}
	if p.writerLog != nil {
		if e := p.writerLog.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing log writer")
			err = e
		}
	}
	return err
}
