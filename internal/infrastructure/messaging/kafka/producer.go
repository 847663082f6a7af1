package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/openhaven/matchgrid/internal/config"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New(errors.CodeInternal, "kafka producer is closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes engine events as JSON messages.
type Producer struct {
	writer      WriterInterface
	topicPrefix string
	logger      logging.Logger
	closed      atomic.Bool
}

// NewProducer builds a Producer from the engine config.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		MaxAttempts:  max(cfg.ProducerRetries, 1),
		BatchSize:    max(cfg.BatchSize, 1),
		WriteTimeout: time.Duration(max(cfg.TimeoutMS, 1000)) * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
	return &Producer{
		writer:      writer,
		topicPrefix: cfg.TopicPrefix,
		logger:      logger.Named("kafka"),
	}
}

// NewProducerWithWriter wraps an existing writer.  Used by tests.
func NewProducerWithWriter(w WriterInterface, topicPrefix string, logger logging.Logger) *Producer {
	return &Producer{writer: w, topicPrefix: topicPrefix, logger: logger.Named("kafka")}
}

// Publish serializes event as JSON and writes it to topic, keyed so that
// events for the same key land on the same partition in order.
func (p *Producer) Publish(ctx context.Context, topic string, key string, event interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to encode event")
	}

	msg := kafkago.Message{
		Topic: FullTopic(p.topicPrefix, topic),
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CodeExternalService, "failed to publish event")
	}

	p.logger.Debug("event published",
		logging.String("topic", msg.Topic),
		logging.String("key", key),
	)
	return nil
}

// Close flushes and shuts down the writer.  Publish calls after Close fail
// with ErrProducerClosed.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
