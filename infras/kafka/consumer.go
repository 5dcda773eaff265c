package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./consumer.go -destination=./mocks/consumer_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"consultation/config"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Handler processes one message. A failing message is retried in place; once the
// retries run out the consumer stops without committing it.
type Handler func(ctx context.Context, msg kafkaGo.Message) error

// Reader is the subset of *kafkaGo.Reader the consumer needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafkaGo.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type ReaderFactory func(group, topic string) Reader

type Consumer interface {
	Consume(ctx context.Context, group, topic string, handler Handler) error
}

type consumerImpl struct {
	defaultGroup string
	newReader    ReaderFactory
	maxAttempts  uint
	backOff      func() backoff.BackOff
}

type ConsumerOption func(*consumerImpl)

// WithHandlerBackOff replaces the wait between attempts at a failing message.
func WithHandlerBackOff(factory func() backoff.BackOff) ConsumerOption {
	return func(c *consumerImpl) {
		c.backOff = factory
	}
}

func WithReaderFactory(factory ReaderFactory) ConsumerOption {
	return func(c *consumerImpl) {
		c.newReader = factory
	}
}

func NewConsumer(cfg *config.Config, opts ...ConsumerOption) Consumer {
	dialer := &kafkaGo.Dialer{
		DualStack:     true,
		SASLMechanism: mechanism(cfg),
	}

	c := &consumerImpl{
		defaultGroup: cfg.Kafka.ConsumerGroup,
		maxAttempts:  cfg.Kafka.HandleMaxAttempts,
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = cfg.Kafka.InitialBackoff
			b.MaxInterval = cfg.Kafka.MaxBackoff

			return b
		},
		newReader: func(group, topic string) Reader {
			return kafkaGo.NewReader(kafkaGo.ReaderConfig{
				Brokers:     cfg.Kafka.Brokers,
				Topic:       topic,
				GroupID:     group,
				Dialer:      dialer,
				StartOffset: kafkaGo.FirstOffset,
			})
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Consume reads topic until ctx is done, handling messages one at a time.
func (c *consumerImpl) Consume(ctx context.Context, group, topic string, handler Handler) error {
	if topic == "" {
		return errors.New("topic name cannot be empty")
	}

	if group == "" {
		group = c.defaultGroup
	}

	reader := c.newReader(group, topic)

	defer func() {
		if err := reader.Close(); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to close Kafka reader.")
		}
	}()

	log.Info().Str("topic", topic).Str("group", group).Msg("Kafka consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Str("topic", topic).Msg("Consumer context done.")

				return nil
			}

			return fmt.Errorf("failed to read message from %s: %w", topic, err)
		}

		log.Debug().Str("topic", topic).Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("Received message from Kafka.")

		if err := c.handle(ctx, msg, handler); err != nil {
			if ctx.Err() != nil {
				log.Info().Str("topic", topic).Int64("offset", msg.Offset).Msg("Consumer context done before message was handled.")

				return nil
			}

			log.Error().Err(err).Str("topic", topic).Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("Giving up on message, stopping consumer")

			return fmt.Errorf("failed to handle message %s/%d: %w", topic, msg.Offset, err)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error().Err(err).Str("topic", topic).Int64("offset", msg.Offset).Msg("Failed to commit message")
		}
	}
}

// handle runs handler until it succeeds or maxAttempts is spent.
func (c *consumerImpl) handle(ctx context.Context, msg kafkaGo.Message, handler Handler) error {
	attempt := 0

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++

		if err := handler(ctx, msg); err != nil {
			log.Warn().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).Int("attempt", attempt).Msg("Failed to handle message, retrying")

			return struct{}{}, err
		}

		return struct{}{}, nil
	},
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(c.maxAttempts),
	)

	return err
}
