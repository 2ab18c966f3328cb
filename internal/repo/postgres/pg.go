package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBObserver is satisfied by observability.Prom; repos accept a nil
// observer so tests can construct them without a metrics registry.
type DBObserver interface {
	ObserveDB(op string, fn func() error) error
}

func observe(o DBObserver, op string, fn func() error) error {
	if o == nil {
		return fn()
	}
	return o.ObserveDB(op, fn)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}
