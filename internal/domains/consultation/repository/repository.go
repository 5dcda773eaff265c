package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"consultation/infras/otel"
	"consultation/infras/postgres"
	"consultation/internal/domains/consultation/model"
	gDto "consultation/shared/dto"
	gRepo "consultation/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Consultation interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Consultation) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Consultation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Consultation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type Offering interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Offering, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Offering, error)
	InsertBulkTx(ctx context.Context, sqltx *sqlx.Tx, models []model.Offering) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type consultationRepository struct {
	gRepo.Repository[model.Consultation]
}

func New(db *postgres.Connection, otel otel.Otel) Consultation {
	return &consultationRepository{
		Repository: gRepo.NewRepository[model.Consultation](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

type offeringRepository struct {
	gRepo.Repository[model.Offering]
}

func NewOffering(db *postgres.Connection, otel otel.Otel) Offering {
	return &offeringRepository{
		Repository: gRepo.NewRepository[model.Offering](model.OfferingEntityName, model.OfferingTableName, model.FieldID, db, otel),
	}
}
