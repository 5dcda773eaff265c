// Package relay delivers outbox rows: orchestration jobs run in process, events go to
// the bus. Failed rows are retried with exponential backoff and end up DEAD after the
// configured number of attempts.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"consultation/config"
	"consultation/infras/kafka"
	"consultation/infras/metrics"
	"consultation/infras/otel"
	"consultation/internal/domains/appointment/orchestrator"
	"consultation/internal/domains/outbox/model"
	"consultation/internal/domains/outbox/repository"
	"consultation/shared/constant"
	"consultation/shared/timezone"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

var ErrUnknownKind = errors.New("unknown outbox message kind")

type Relay struct {
	outbox       repository.Outbox
	orchestrator orchestrator.Orchestrator
	publisher    kafka.Publisher
	otel         otel.Otel
	metrics      *metrics.Metrics

	batchSize   int
	interval    time.Duration
	maxAttempts int
	lease       time.Duration
	schedule    func() backoff.BackOff
	now         func() time.Time
}

type Option func(*Relay)

// WithClock replaces the wall clock used for leases and retry times.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		r.now = now
	}
}

func New(
	cfg *config.Config,
	outbox repository.Outbox,
	orch orchestrator.Orchestrator,
	publisher kafka.Publisher,
	ot otel.Otel,
	m *metrics.Metrics,
	opts ...Option,
) *Relay {
	r := &Relay{
		outbox:       outbox,
		orchestrator: orch,
		publisher:    publisher,
		otel:         ot,
		metrics:      m,
		batchSize:    cfg.Outbox.BatchSize,
		interval:     cfg.Outbox.PollInterval,
		maxAttempts:  cfg.Outbox.MaxAttempts,
		lease:        cfg.Outbox.LeaseDuration,
		schedule: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = cfg.Outbox.InitialBackoff
			b.MaxInterval = cfg.Outbox.MaxBackoff
			b.RandomizationFactor = 0

			return b
		},
		now: timezone.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.lease <= 0 {
		r.lease = time.Minute
	}

	return r
}

// Run drains the outbox every poll interval until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	log.Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("Outbox relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Outbox relay stopped")

			return nil
		case <-ticker.C:
			r.Drain(ctx)
		}
	}
}

// Drain handles one batch of due rows and returns how many it claimed.
func (r *Relay) Drain(ctx context.Context) int {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".relay.Drain")
	defer scope.End()

	now := r.now()

	msgs, err := r.outbox.ClaimDue(ctx, r.batchSize, now, now.Add(r.lease))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to claim outbox messages")

		return 0
	}

	for _, msg := range msgs {
		r.handle(ctx, msg)
	}

	return len(msgs)
}

func (r *Relay) handle(ctx context.Context, msg model.Message) {
	logger := log.With().
		Str("outbox_id", msg.ID).
		Str("kind", msg.Kind).
		Str("aggregate_id", msg.AggregateID).
		Int("attempt", msg.Attempts+1).
		Logger()

	dctx, cancel := context.WithTimeout(ctx, r.lease)
	err := r.dispatch(dctx, msg)
	cancel()

	if err == nil {
		if err := r.outbox.MarkDelivered(ctx, msg.ID, r.now()); err != nil {
			logger.Error().Err(err).Msg("failed to mark outbox message delivered")

			return
		}

		r.metrics.ObserveOutbox(msg.Kind, metrics.ResultSuccess)
		logger.Debug().Msg("outbox message delivered")

		return
	}

	attempts := msg.Attempts + 1

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) || attempts >= r.maxAttempts {
		if markErr := r.outbox.MarkDead(ctx, msg.ID, attempts, err.Error()); markErr != nil {
			logger.Error().Err(markErr).Msg("failed to dead-letter outbox message")

			return
		}

		r.metrics.ObserveOutbox(msg.Kind, metrics.ResultDead)
		logger.Error().Err(err).Msg("outbox message dead-lettered")

		return
	}

	next := r.now().Add(r.delay(attempts))

	if markErr := r.outbox.MarkFailed(ctx, msg.ID, attempts, next, err.Error()); markErr != nil {
		logger.Error().Err(markErr).Msg("failed to reschedule outbox message")

		return
	}

	r.metrics.ObserveOutbox(msg.Kind, metrics.ResultRetry)
	logger.Warn().Err(err).Time("next_attempt_at", next).Msg("outbox delivery failed, will retry")
}

func (r *Relay) dispatch(ctx context.Context, msg model.Message) error {
	switch msg.Kind {
	case model.KindOrchestration:
		var job orchestrator.Job
		if err := json.Unmarshal(msg.Payload, &job); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode orchestration job: %w", err))
		}

		return r.orchestrator.Run(ctx, job)
	case model.KindEvent:
		return r.publisher.Publish(ctx, msg.Exchange, msg.RoutingKey, json.RawMessage(msg.Payload))
	default:
		return backoff.Permanent(fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind))
	}
}

// delay is the wait before the given attempt number is retried.
func (r *Relay) delay(attempts int) time.Duration {
	b := r.schedule()

	d := b.NextBackOff()
	for i := 1; i < attempts; i++ {
		d = b.NextBackOff()
	}

	return d
}
