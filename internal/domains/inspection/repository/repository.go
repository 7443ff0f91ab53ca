package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fleet/infras/otel"
	"fleet/infras/postgres"
	"fleet/internal/domains/inspection/model"
	gDto "fleet/shared/dto"
	gRepo "fleet/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Release interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Release) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Release, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Release, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type Return interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Return) error
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Return, error)
}

type releaseRepositoryImpl struct {
	gRepo.Repository[model.Release]
}

func NewRelease(db *postgres.Connection, otel otel.Otel) Release {
	return &releaseRepositoryImpl{
		Repository: gRepo.NewRepository[model.Release](model.ReleaseEntityName, model.ReleaseTableName, model.FieldID, db, otel),
	}
}

type returnRepositoryImpl struct {
	gRepo.Repository[model.Return]
}

func NewReturn(db *postgres.Connection, otel otel.Otel) Return {
	return &returnRepositoryImpl{
		Repository: gRepo.NewRepository[model.Return](model.ReturnEntityName, model.ReturnTableName, model.FieldID, db, otel),
	}
}
