package kafka

import (
	"encoding/json"
	"fmt"

	"consultation/config"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// HeaderRoutingKey carries the routing key of a topic exchange publish. The key is
// also the message key so partitioning follows it.
const HeaderRoutingKey = "routing_key"

type Message struct {
	Key   string
	Value any
}

func (m *Message) ToKafkaMessage() (kafkaGo.Message, error) {
	jsonValue, err := json.Marshal(m.Value)
	if err != nil {
		log.Error().Err(err).Str("key", m.Key).Msg("Failed to marshal message value to JSON")

		return kafkaGo.Message{}, fmt.Errorf("failed to marshal message value to JSON: %w", err)
	}

	return kafkaGo.Message{
		Key:   []byte(m.Key),
		Value: jsonValue,
		Headers: []kafkaGo.Header{
			{Key: HeaderRoutingKey, Value: []byte(m.Key)},
		},
	}, nil
}

// Decode unmarshals the JSON body of msg into T.
func Decode[T any](msg kafkaGo.Message) (T, error) {
	var value T

	if err := json.Unmarshal(msg.Value, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal Kafka message value from JSON: %w", err)
	}

	return value, nil
}

// RoutingKey returns the routing key header, falling back to the message key.
func RoutingKey(msg kafkaGo.Message) string {
	for _, header := range msg.Headers {
		if header.Key == HeaderRoutingKey {
			return string(header.Value)
		}
	}

	return string(msg.Key)
}

func mechanism(cfg *config.Config) sasl.Mechanism {
	if !cfg.Kafka.SASL.Enable {
		return nil
	}

	return plain.Mechanism{
		Username: cfg.Kafka.SASL.Username,
		Password: cfg.Kafka.SASL.Password,
	}
}
