// Package postgres backs the run-history stores with PostgreSQL. Every
// append-only table carries a BIGSERIAL sequence column, so scan order is
// write order just like the file-backed journals.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the connection pool shared by all stores of one backend.
type Pool struct {
	*pgxpool.Pool
}

// NewPool opens a pool for the DSN and verifies the database answers before
// any store gets to use it.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close releases every pooled connection.
func (p *Pool) Close() {
	p.Pool.Close()
}

// unique_violation, the code Postgres raises when an append hits an
// existing primary key (a re-registered model id).
const pgErrUniqueViolation = "23505"

// isDuplicateKeyError reports whether err is a unique-constraint violation;
// the stores translate it to storage.ErrDuplicateKey.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}

	return false
}

// isNotFoundError reports whether a single-row query matched nothing; the
// stores translate it to storage.ErrNotFound.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
