package di

import (
	"io"

	"consultation/config"
	"consultation/infras/directory"
	"consultation/infras/kafka"
	"consultation/infras/metrics"
	"consultation/infras/otel"
	"consultation/infras/postgres"
	"consultation/infras/redis"
	"consultation/internal/consumers/payment"
	"consultation/internal/domains/appointment/orchestrator"
	"consultation/internal/domains/appointment/validation"
	consultationRepository "consultation/internal/domains/consultation/repository"
	"consultation/internal/domains/outbox/relay"
	outboxRepository "consultation/internal/domains/outbox/repository"
	"consultation/shared/secret"

	"github.com/prometheus/client_golang/prometheus"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Worker is the background process: the outbox relay and the payment consumer.
type Worker struct {
	Config  *config.Config
	Relay   *relay.Relay
	Payment *payment.Consumer
	Metrics *metrics.Metrics
}

func provideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func providePostgres(cfg *config.Config) (*postgres.Connection, func()) {
	conn := postgres.New(cfg)

	return conn, conn.Close
}

func provideRedis(cfg *config.Config) (*goRedis.Client, func()) {
	client := redis.New(cfg)

	return client, func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
}

func provideSecretBox(cfg *config.Config) (secret.Box, error) {
	return secret.New(cfg.Secret.Key)
}

func provideDirectoryClient(cfg *config.Config) (directory.Client, func(), error) {
	client, err := directory.NewGRPCClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if closer, ok := client.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close user service connection")
			}
		}
	}

	return client, cleanup, nil
}

func providePublisher(cfg *config.Config, ot otel.Otel, m *metrics.Metrics) (kafka.Publisher, func()) {
	publisher := kafka.NewPublisher(cfg, ot, m)

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to flush kafka writers")
		}
	}
}

func provideConsumer(cfg *config.Config) kafka.Consumer {
	return kafka.NewConsumer(cfg)
}

func provideValidator(offerings consultationRepository.Offering, ot otel.Otel) validation.Validator {
	return validation.New(offerings, ot)
}

func provideRelay(
	cfg *config.Config,
	outbox outboxRepository.Outbox,
	orch orchestrator.Orchestrator,
	publisher kafka.Publisher,
	ot otel.Otel,
	m *metrics.Metrics,
) *relay.Relay {
	return relay.New(cfg, outbox, orch, publisher, ot, m)
}
