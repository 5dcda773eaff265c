// Package payment applies payment-service results to appointments.
package payment

//go:generate go run go.uber.org/mock/mockgen -source=./payment.go -destination=./mocks/payment_mock.go -package=mocks

import (
	"context"
	"errors"

	"consultation/config"
	"consultation/infras/kafka"
	"consultation/infras/otel"
	"consultation/shared/constant"
	"consultation/shared/failure"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Event is the body published by the payment service.
type Event struct {
	SourceID     string `json:"source_id"`
	Organisation string `json:"organisation"`
	IsSuccess    bool   `json:"is_success"`
}

type Confirmer interface {
	ConfirmPayment(ctx context.Context, id, organisation string) error
}

type Consumer struct {
	consumer  kafka.Consumer
	confirmer Confirmer
	otel      otel.Otel
	group     string
	topic     string
	key       string
}

func New(cfg *config.Config, consumer kafka.Consumer, confirmer Confirmer, ot otel.Otel) *Consumer {
	return &Consumer{
		consumer:  consumer,
		confirmer: confirmer,
		otel:      ot,
		group:     cfg.Events.PaymentConsumerQueue,
		topic:     cfg.Events.PaymentExchange,
		key:       cfg.Events.PaymentSuccessKey,
	}
}

// Run consumes payment events until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.group, c.topic, c.Handle)
}

// Handle confirms the appointment named by a successful payment. Only a failure to
// store the confirmation is returned; the consumer retries the message until it lands.
func (c *Consumer) Handle(ctx context.Context, msg kafkaGo.Message) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".payment.Handle")
	defer scope.End()
	defer scope.TraceIfError(err)

	if key := kafka.RoutingKey(msg); key != c.key {
		log.Debug().Str("routing_key", key).Msg("ignoring payment event")

		return nil
	}

	event, err := kafka.Decode[Event](msg)
	if err != nil {
		log.Error().Err(err).Int64("offset", msg.Offset).Msg("dropping undecodable payment event")

		return nil
	}

	if !event.IsSuccess {
		return nil
	}

	if event.SourceID == constant.Empty || event.Organisation == constant.Empty {
		log.Warn().Int64("offset", msg.Offset).Msg("payment event without source")

		return nil
	}

	err = c.confirmer.ConfirmPayment(ctx, event.SourceID, event.Organisation)
	if err != nil {
		var f *failure.Failure
		if errors.As(err, &f) {
			log.Warn().Err(err).Str("appointment_id", event.SourceID).Msg("payment event rejected")

			return nil
		}

		return err
	}

	log.Info().Str("appointment_id", event.SourceID).Str("organisation", event.Organisation).Msg("payment confirmed")

	return nil
}
