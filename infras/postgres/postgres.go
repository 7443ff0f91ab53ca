package postgres

//nolint:revive
import (
	"context"
	"database/sql"
	"errors"
	"fleet/config"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName      = "postgres"
	maxIdleConns    = 10
	maxOpenConns    = 20
	connMaxIdleTime = 5 * time.Minute
)

// Connection splits reads from writes. Transactions always run on Write so a
// conflict check never reads a lagging replica.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres
	wait := time.Duration(pg.RetryWaitTime) * time.Second

	return &Connection{
		Read:  connect("read", pg.Read, DSN(pg.Read, pg.Prefix, nil), pg.MaxRetry, wait),
		Write: connect("write", pg.Write, DSN(pg.Write, pg.Prefix, nil), pg.MaxRetry, wait),
	}
}

// DSN renders a node as a postgres URL. Credentials are escaped, and extra carries
// driver specific parameters such as the migrations table.
func DSN(node config.PostgresNode, prefix string, extra url.Values) string {
	query := url.Values{}

	if node.SSLMode != "" {
		query.Set("sslmode", node.SSLMode)
	}

	if node.Timezone != "" {
		query.Set("timezone", node.Timezone)
	}

	for key, values := range extra {
		query[key] = values
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(node.Username, node.Password),
		Host:     net.JoinHostPort(node.Host, node.Port),
		Path:     "/" + prefix + node.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// connect retries until the node answers. Bookings cannot be taken without the
// database, so running out of attempts is fatal.
func connect(name string, node config.PostgresNode, dsn string, attempts int, wait time.Duration) *sqlx.DB {
	logger := log.With().Str("name", name).Str("host", node.Host).Str("port", node.Port).Str("dbName", node.Name).Logger()

	for attempt := 1; ; attempt++ {
		db, err := sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConns)
			db.SetMaxOpenConns(maxOpenConns)
			db.SetConnMaxIdleTime(connMaxIdleTime)

			logger.Info().Msg("Connected to database")

			return db
		}

		if attempt >= attempts {
			logger.Fatal().Err(err).Int("attempts", attempt).Msg("Could not connect to database")

			return nil
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")
		time.Sleep(wait)
	}
}

// Close releases both pools, even when closing the first one fails.
func (c *Connection) Close() error {
	var errs []error

	for _, db := range []*sqlx.DB{c.Read, c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Transactor runs a unit of work inside a single write transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// WithTransaction commits when fn returns nil and rolls back otherwise, including on panic.
func (c *Connection) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.Write.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback()

			panic(recovered)
		}
	}()

	if err = fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("Failed to roll back transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
