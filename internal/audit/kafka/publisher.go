// Package kafka publishes audit events to category-specific topics.
//
// Compliance, security, and operations events carry different retention and
// consumer requirements, so each category gets its own topic and downstream
// pipelines subscribe only to what they need.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"origo/internal/audit"
)

// Topics names the destination topic per event category.
type Topics struct {
	Compliance string
	Security   string
	Operations string
}

// DefaultTopics derives the three category topics from a common prefix.
func DefaultTopics(prefix string) Topics {
	return Topics{
		Compliance: prefix + ".compliance",
		Security:   prefix + ".security",
		Operations: prefix + ".ops",
	}
}

func (t Topics) forCategory(category audit.EventCategory) string {
	switch category {
	case audit.CategoryCompliance:
		return t.Compliance
	case audit.CategorySecurity:
		return t.Security
	default:
		return t.Operations
	}
}

func (t Topics) all() []string {
	return []string{t.Compliance, t.Security, t.Operations}
}

// Publisher produces audit payloads to Kafka. Writes are synchronous so the
// outbox relay only marks rows published after the broker acknowledged them.
type Publisher struct {
	client *kgo.Client
	topics Topics
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New connects to the brokers and ensures the category topics exist.
func New(ctx context.Context, brokers []string, topics Topics, opts ...Option) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &Publisher{client: client, topics: topics, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.ensureTopics(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureTopics(ctx context.Context) error {
	admin := kadm.NewClient(p.client)

	resp, err := admin.CreateTopics(ctx, 3, 1, nil, p.topics.all()...)
	if err != nil {
		return fmt.Errorf("create audit topics: %w", err)
	}
	for _, result := range resp {
		if result.Err != nil && !errors.Is(result.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", result.Topic, result.Err)
		}
	}
	return nil
}

// Publish sends one event payload to its category topic. Records are keyed
// by the aggregate ID so all events for one application land on the same
// partition in order.
func (p *Publisher) Publish(ctx context.Context, category audit.EventCategory, key string, payload []byte) error {
	record := &kgo.Record{
		Topic: p.topics.forCategory(category),
		Key:   []byte(key),
		Value: payload,
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
