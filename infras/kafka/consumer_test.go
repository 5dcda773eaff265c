package kafka_test

import (
	"context"
	"errors"
	"testing"

	"consultation/config"
	"consultation/infras/kafka"

	"github.com/cenkalti/backoff/v5"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	messages  []kafkaGo.Message
	committed []int64
	closed    bool
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkaGo.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		<-ctx.Done()

		return kafkaGo.Message{}, ctx.Err()
	}

	msg := r.messages[0]
	r.messages = r.messages[1:]

	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	for _, msg := range msgs {
		r.committed = append(r.committed, msg.Offset)
	}

	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true

	return nil
}

func noWait() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

func TestConsumer_Consume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		messages: []kafkaGo.Message{
			{Offset: 1, Key: []byte("Payment.Payment.Success"), Value: []byte(`{"source_id":"a1"}`)},
			{Offset: 2, Key: []byte("Payment.Payment.Success"), Value: []byte(`{"source_id":"a2"}`)},
			{Offset: 3, Key: []byte("Payment.Payment.Success"), Value: []byte(`{"source_id":"a3"}`)},
		},
	}

	cfg := &config.Config{}
	cfg.Kafka.ConsumerGroup = "APPOINTMENT"
	cfg.Kafka.HandleMaxAttempts = 3

	var gotGroup, gotTopic string

	consumer := kafka.NewConsumer(cfg, kafka.WithHandlerBackOff(noWait), kafka.WithReaderFactory(func(group, topic string) kafka.Reader {
		gotGroup, gotTopic = group, topic

		return reader
	}))

	var handled []string

	failedOnce := false

	err := consumer.Consume(ctx, "", "PAYMENT", func(_ context.Context, msg kafkaGo.Message) error {
		body, err := kafka.Decode[map[string]string](msg)
		require.NoError(t, err)
		handled = append(handled, body["source_id"])

		if msg.Offset == 2 && !failedOnce {
			failedOnce = true

			return errors.New("connection reset")
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "APPOINTMENT", gotGroup)
	assert.Equal(t, "PAYMENT", gotTopic)
	assert.Equal(t, []string{"a1", "a2", "a2", "a3"}, handled)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	assert.True(t, reader.closed)
}

func TestConsumer_StopsWhenRetriesRunOut(t *testing.T) {
	reader := &fakeReader{
		cancel: func() {},
		messages: []kafkaGo.Message{
			{Offset: 1, Value: []byte(`{}`)},
			{Offset: 2, Value: []byte(`{}`)},
			{Offset: 3, Value: []byte(`{}`)},
		},
	}

	cfg := &config.Config{}
	cfg.Kafka.HandleMaxAttempts = 3

	consumer := kafka.NewConsumer(cfg, kafka.WithHandlerBackOff(noWait), kafka.WithReaderFactory(func(_, _ string) kafka.Reader {
		return reader
	}))

	attempts := 0

	err := consumer.Consume(context.Background(), "APPOINTMENT", "PAYMENT", func(_ context.Context, msg kafkaGo.Message) error {
		if msg.Offset == 2 {
			attempts++

			return assert.AnError
		}

		return nil
	})

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int64{1}, reader.committed)
	assert.Len(t, reader.messages, 1)
	assert.True(t, reader.closed)
}

func TestConsumer_EmptyTopic(t *testing.T) {
	consumer := kafka.NewConsumer(&config.Config{})

	assert.Error(t, consumer.Consume(context.Background(), "g", "", nil))
}

func TestRoutingKey_FallsBackToKey(t *testing.T) {
	assert.Equal(t, "Payment.Payment.Success", kafka.RoutingKey(kafkaGo.Message{Key: []byte("Payment.Payment.Success")}))
}
