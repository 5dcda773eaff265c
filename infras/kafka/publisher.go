package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./publisher.go -destination=./mocks/publisher_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"consultation/config"
	"consultation/infras/metrics"
	"consultation/infras/otel"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

const otelPublisherScope = "kafka.publisher"

var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher delivers a message to a topic exchange. Each exchange is a topic and
// the routing key travels as the message key.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body any) error
	Close() error
}

// Writer is the subset of *kafkaGo.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type WriterFactory func(topic string) Writer

type publisherImpl struct {
	mu        sync.Mutex
	writers   map[string]Writer
	newWriter WriterFactory
	closed    bool

	maxAttempts uint
	backOff     func() backoff.BackOff
	otel        otel.Otel
	metrics     *metrics.Metrics
}

type PublisherOption func(*publisherImpl)

// WithWriterFactory replaces the kafka writer constructor.
func WithWriterFactory(factory WriterFactory) PublisherOption {
	return func(p *publisherImpl) {
		p.newWriter = factory
	}
}

func NewPublisher(cfg *config.Config, ot otel.Otel, m *metrics.Metrics, opts ...PublisherOption) Publisher {
	transport := &kafkaGo.Transport{
		SASL: mechanism(cfg),
	}

	p := &publisherImpl{
		writers:     map[string]Writer{},
		maxAttempts: cfg.Kafka.PublishMaxAttempts,
		otel:        ot,
		metrics:     m,
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = cfg.Kafka.InitialBackoff
			b.MaxInterval = cfg.Kafka.MaxBackoff

			return b
		},
		newWriter: func(topic string) Writer {
			return &kafkaGo.Writer{
				Addr:                   kafkaGo.TCP(cfg.Kafka.Brokers...),
				Topic:                  topic,
				Transport:              transport,
				Balancer:               &kafkaGo.Hash{},
				RequiredAcks:           kafkaGo.RequireAll,
				AllowAutoTopicCreation: true,
				WriteTimeout:           cfg.Kafka.WriteTimeout,
			}
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.maxAttempts == 0 {
		p.maxAttempts = 1
	}

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka publisher initialized")

	return p
}

func (p *publisherImpl) writer(topic string) (Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPublisherClosed
	}

	if w, ok := p.writers[topic]; ok {
		return w, nil
	}

	w := p.newWriter(topic)
	p.writers[topic] = w

	return w, nil
}

func (p *publisherImpl) Publish(ctx context.Context, exchange, routingKey string, body any) (err error) {
	ctx, scope := p.otel.NewScope(ctx, otelPublisherScope, otelPublisherScope+".Publish")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttributes(map[string]any{
		"messaging.destination": exchange,
		"messaging.routing_key": routingKey,
	})

	defer func() { p.metrics.ObservePublish(exchange, err) }()

	message := Message{Key: routingKey, Value: body}

	msg, err := message.ToKafkaMessage()
	if err != nil {
		return err
	}

	w, err := p.writer(exchange)
	if err != nil {
		return err
	}

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++

		if writeErr := w.WriteMessages(ctx, msg); writeErr != nil {
			log.Warn().
				Err(writeErr).
				Str("exchange", exchange).
				Str("routing_key", routingKey).
				Int("attempt", attempt).
				Msg("Failed to publish message, retrying")

			return struct{}{}, writeErr
		}

		return struct{}{}, nil
	},
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(p.maxAttempts),
	)
	if err != nil {
		log.Error().Err(err).Str("exchange", exchange).Str("routing_key", routingKey).Msg("Failed to publish message")

		return fmt.Errorf("failed to publish to %s/%s: %w", exchange, routingKey, err)
	}

	log.Info().Str("exchange", exchange).Str("routing_key", routingKey).Msg("Published message")

	return nil
}

// Close flushes and closes every pooled writer.
func (p *publisherImpl) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	var errs []error

	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close writer %s: %w", topic, err))
		}

		delete(p.writers, topic)
	}

	return errors.Join(errs...)
}
