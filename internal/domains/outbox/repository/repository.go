package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"consultation/infras/otel"
	"consultation/infras/postgres"
	"consultation/internal/domains/outbox/model"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/logger"
	gRepo "consultation/shared/repository"
	"consultation/shared/timezone"

	"github.com/jmoiron/sqlx"
)

type Outbox interface {
	Insert(ctx context.Context, msg model.Message) error
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, msg model.Message) error
	// InsertBatch writes every message or none of them.
	InsertBatch(ctx context.Context, msgs []model.Message) error
	// ClaimDue leases up to limit pending rows whose next attempt is due. A leased row is
	// invisible to other relays until leaseUntil.
	ClaimDue(ctx context.Context, limit int, now, leaseUntil time.Time) ([]model.Message, error)
	MarkDelivered(ctx context.Context, id string, now time.Time) error
	MarkFailed(ctx context.Context, id string, attempts int, nextAttempt time.Time, lastErr string) error
	MarkDead(ctx context.Context, id string, attempts int, lastErr string) error
	ListDead(ctx context.Context, organisation string, params gDto.QueryParams) ([]model.Message, int, error)
	Requeue(ctx context.Context, organisation, id string, now time.Time) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Message]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Outbox {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Message](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) InsertBatch(ctx context.Context, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	return r.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return r.InsertBulkTx(ctx, tx, msgs)
	})
}

var claimColumns = strings.Join([]string{
	"id", "kind", "organisation", "aggregate_id", "exchange", "routing_key", "payload",
	"status", "attempts", "next_attempt_at", "last_error", "created_at", "modified_at",
}, ", ")

func (r *repositoryImpl) ClaimDue(ctx context.Context, limit int, now, leaseUntil time.Time) ([]model.Message, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".ClaimDue")
	defer scope.End()

	query := fmt.Sprintf(`UPDATE %[1]s SET next_attempt_at = $1, modified_at = $2
WHERE id IN (
	SELECT id FROM %[1]s
	WHERE status = $3 AND next_attempt_at <= $2
	ORDER BY next_attempt_at
	LIMIT $4
	FOR UPDATE SKIP LOCKED
)
RETURNING %[2]s`, model.TableName, claimColumns)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	msgs := []model.Message{}
	if err := r.db.Write.SelectContext(ctx, &msgs, query, leaseUntil, now, model.StatusPending, limit); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to claim outbox messages: %w", err)
	}

	return msgs, nil
}

func (r *repositoryImpl) MarkDelivered(ctx context.Context, id string, now time.Time) error {
	return r.mark(ctx, id, map[string]any{
		model.FieldStatus:     model.StatusDelivered,
		model.FieldLastError:  nil,
		model.FieldModifiedAt: now,
	})
}

func (r *repositoryImpl) MarkFailed(ctx context.Context, id string, attempts int, nextAttempt time.Time, lastErr string) error {
	return r.mark(ctx, id, map[string]any{
		model.FieldAttempts:      attempts,
		model.FieldNextAttemptAt: nextAttempt,
		model.FieldLastError:     lastErr,
		model.FieldModifiedAt:    timezone.Now(),
	})
}

func (r *repositoryImpl) MarkDead(ctx context.Context, id string, attempts int, lastErr string) error {
	return r.mark(ctx, id, map[string]any{
		model.FieldStatus:     model.StatusDead,
		model.FieldAttempts:   attempts,
		model.FieldLastError:  lastErr,
		model.FieldModifiedAt: timezone.Now(),
	})
}

func (r *repositoryImpl) mark(ctx context.Context, id string, fields map[string]any) error {
	_, err := r.Update(ctx, fields, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq},
			gDto.Filter{Field: model.FieldStatus, Value: model.StatusPending, Operator: gDto.FilterOperatorEq},
		},
	})

	return err
}

func (r *repositoryImpl) ListDead(ctx context.Context, organisation string, params gDto.QueryParams) ([]model.Message, int, error) {
	filter := byStatus(organisation, model.StatusDead)

	msgs, err := r.GetAll(ctx, params, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return msgs, total, nil
}

// Requeue puts a dead message back in the queue with a fresh attempt budget.
func (r *repositoryImpl) Requeue(ctx context.Context, organisation, id string, now time.Time) (bool, error) {
	filter := byStatus(organisation, model.StatusDead)
	filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq})

	affected, err := r.Update(ctx, map[string]any{
		model.FieldStatus:        model.StatusPending,
		model.FieldAttempts:      0,
		model.FieldNextAttemptAt: now,
		model.FieldModifiedAt:    now,
	}, filter)
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func byStatus(organisation, status string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: constant.FieldOrganisation, Value: organisation, Operator: gDto.FilterOperatorEq},
			gDto.Filter{Field: model.FieldStatus, Value: status, Operator: gDto.FilterOperatorEq},
		},
	}
}
