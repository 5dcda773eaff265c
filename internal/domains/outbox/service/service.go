package service

import (
	"context"
	"fmt"

	"consultation/infras/otel"
	"consultation/internal/domains/outbox/model/dto"
	"consultation/internal/domains/outbox/repository"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/failure"
	gModel "consultation/shared/model"
	"consultation/shared/timezone"

	"github.com/rs/zerolog/log"
)

var ErrDeadLetterNotFound = failure.NotFound("Dead letter not found")

// Outbox exposes the dead letters of the caller's organisation.
type Outbox interface {
	GetDead(ctx context.Context, params gDto.QueryParams) (dto.GetMessagesResponse, error)
	Requeue(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo repository.Outbox
	otel otel.Otel
}

func New(repo repository.Outbox, otel otel.Otel) Outbox {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) GetDead(ctx context.Context, params gDto.QueryParams) (res dto.GetMessagesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".outbox.GetDead")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	msgs, total, err := s.repo.ListDead(ctx, actor.Organisation, params)
	if err != nil {
		log.Error().Err(err).Msg("failed to list dead letters")

		return res, fmt.Errorf("failed to list dead letters: %w", err)
	}

	res.FromModels(msgs, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) Requeue(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".outbox.Requeue")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	requeued, err := s.repo.Requeue(ctx, actor.Organisation, id, timezone.Now())
	if err != nil {
		log.Error().Err(err).Str("outbox_id", id).Msg("failed to requeue dead letter")

		return fmt.Errorf("failed to requeue dead letter: %w", err)
	}

	if !requeued {
		return ErrDeadLetterNotFound
	}

	log.Info().Str("outbox_id", id).Str("by", actor.UserID).Msg("dead letter requeued")

	return nil
}
