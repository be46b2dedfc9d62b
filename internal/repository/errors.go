package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrOverlap is returned when the bookings exclusion constraint rejects a row.
	ErrOverlap = errors.New("booking dates overlap an active booking")

	// ErrDuplicate is returned when a unique index rejects a row.
	ErrDuplicate = errors.New("duplicate record")

	// ErrReferenced is returned when a row is still referenced by a foreign key.
	ErrReferenced = errors.New("record is still referenced")
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgExclusionViolation  = "23P01"
)

func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgExclusionViolation:
		return ErrOverlap
	case pgUniqueViolation:
		return ErrDuplicate
	case pgForeignKeyViolation:
		return ErrReferenced
	}
	return err
}
