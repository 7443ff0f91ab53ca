package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fleet/infras/otel"
	"fleet/infras/postgres"
	"fleet/internal/domains/waitlist/model"
	gDto "fleet/shared/dto"
	gRepo "fleet/shared/repository"
)

type Waitlist interface {
	Insert(ctx context.Context, model model.Waitlist) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Waitlist, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Waitlist, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Waitlist]
}

func New(db *postgres.Connection, otel otel.Otel) Waitlist {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Waitlist](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
