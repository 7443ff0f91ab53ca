package repository

import (
	"context"
	"fleet/shared/dto"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
)

const lockForUpdate = "FOR UPDATE"

func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	return repo.getOne(ctx, repo.db.Read, "", filter, columns)
}

func (repo *Repository[T]) GetTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup, columns ...string) (T, error) {
	return repo.getOne(ctx, sqltx, "", filter, columns)
}

// GetForUpdateTx reads a single row and holds its row lock until the transaction ends.
// A zero value means nothing matched the filter.
func (repo *Repository[T]) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup, columns ...string) (T, error) {
	return repo.getOne(ctx, sqltx, lockForUpdate, filter, columns)
}

func (repo *Repository[T]) getOne(ctx context.Context, p preparer, lock string, filter dto.FilterGroup, columns []string) (T, error) {
	var model T

	where, args := repo.BuildWhereClause(filter)
	statement := strings.Join(nonEmpty("SELECT", repo.selectList(columns), "FROM", repo.table, where, lock), " ")

	err := repo.query(ctx, p, "get", statement, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &model, args)
	})

	return model, err
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	return repo.getMany(ctx, repo.db.Read, params, filter, columns)
}

func (repo *Repository[T]) GetAllTx(ctx context.Context, sqltx *sqlx.Tx, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	return repo.getMany(ctx, sqltx, params, filter, columns)
}

// getMany trusts params.SortBy to be a whitelisted column, see dto.QueryParams.Sanitize.
func (repo *Repository[T]) getMany(ctx context.Context, p preparer, params dto.QueryParams, filter dto.FilterGroup, columns []string) ([]T, error) {
	var models []T

	where, args := repo.BuildWhereClause(filter)

	var ordering, pagination string

	if params.SortBy != "" && params.SortDir != "" {
		ordering = fmt.Sprintf("ORDER BY %s %s", params.SortBy, params.SortDir)
	}

	if params.Limit > 0 {
		args["limit"] = params.Limit
		pagination = "LIMIT :limit"

		if params.Page > 0 {
			args["offset"] = (params.Page - 1) * params.Limit
			pagination += " OFFSET :offset"
		}
	}

	statement := strings.Join(nonEmpty("SELECT", repo.selectList(columns), "FROM", repo.table, where, ordering, pagination), " ")

	err := repo.query(ctx, p, "getAll", statement, func(stmt *sqlx.NamedStmt) error {
		return stmt.SelectContext(ctx, &models, args)
	})

	return models, err
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	var count int

	where, args := repo.BuildWhereClause(filter)
	statement := strings.Join(nonEmpty(fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s", repo.table, repo.primary, repo.table), where), " ")

	err := repo.query(ctx, repo.db.Read, "count", statement, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &count, args)
	})

	return count, err
}

// selectList qualifies the requested columns with the table name. Unknown names are
// ignored and an empty request selects every column.
func (repo *Repository[T]) selectList(requested []string) string {
	selected := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(requested) > 0 && !slices.Contains(requested, col) {
			continue
		}

		selected = append(selected, repo.table+"."+col)
	}

	return strings.Join(selected, ", ")
}

// BuildWhereClause renders the filter with its named arguments. The map is never nil.
func (repo *Repository[T]) BuildWhereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return "WHERE " + where, args
}

func nonEmpty(parts ...string) []string {
	return slices.DeleteFunc(parts, func(s string) bool { return s == "" })
}
