package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fleet/infras/otel"
	"fleet/infras/postgres"
	"fleet/internal/domains/fee/model"
	gDto "fleet/shared/dto"
	gRepo "fleet/shared/repository"
)

type FeeSchedule interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.FeeSchedule, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.FeeSchedule]
}

func New(db *postgres.Connection, otel otel.Otel) FeeSchedule {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.FeeSchedule](model.EntityName, model.TableName, model.FieldFeeType, db, otel),
	}
}
