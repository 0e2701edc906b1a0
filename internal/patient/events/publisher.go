package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"medigate/internal/platform/metrics"
)

// KafkaPublisher produces patient events to Kafka.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.PatientMetrics
}

// NewKafkaPublisher connects to the brokers and best-effort ensures the
// topic exists. metrics may be nil.
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration, logger *slog.Logger, m *metrics.PatientMetrics) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1 << 20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &KafkaPublisher{
		client:  client,
		topic:   topic,
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
	p.ensureTopic()
	return p, nil
}

// ensureTopic creates the topic if the cluster allows it. Failure is fine;
// most clusters auto-create or pre-provision.
func (p *KafkaPublisher) ensureTopic() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	adm := kadm.NewClient(p.client)
	if _, err := adm.CreateTopic(ctx, 1, 1, nil, p.topic); err != nil {
		p.logger.Warn("topic bootstrap skipped", "topic", p.topic, "error", err)
	}
}

// Publish produces a single event, blocking up to the publish timeout.
// Errors are logged and swallowed: event loss is acceptable, blocking
// patient onboarding on bus availability is not.
func (p *KafkaPublisher) Publish(ctx context.Context, event PatientEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal patient event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.PatientID),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if p.metrics != nil {
			p.metrics.EventsFailed.Inc()
		}
		p.logger.ErrorContext(ctx, "publish patient event failed",
			"event_type", event.EventType,
			"patient_id", event.PatientID,
			"error", err,
		)
		return
	}
	if p.metrics != nil {
		p.metrics.EventsPublished.Inc()
	}
}

// Close flushes buffered records and releases the client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}
