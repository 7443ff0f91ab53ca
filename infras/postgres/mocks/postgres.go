package mocks

import (
	"context"
	"fleet/infras/postgres"

	"github.com/jmoiron/sqlx"
)

type transactorImpl struct{}

// WithTransaction implements postgres.Transactor by running fn without a real transaction.
func (t *transactorImpl) WithTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}
