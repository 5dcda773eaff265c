package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"consultation/infras/otel"
	"consultation/infras/postgres"
	"consultation/internal/domains/zoom/model"
	gDto "consultation/shared/dto"
	gRepo "consultation/shared/repository"
)

type Credential interface {
	Insert(ctx context.Context, model model.Credential) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Credential, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Credential, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Credential]
}

func New(db *postgres.Connection, otel otel.Otel) Credential {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Credential](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
