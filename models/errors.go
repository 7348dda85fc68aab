package models

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUniqueViolation is returned when a unique column (name, part number) collides.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrInvalidReference is returned when a foreign key points at a missing row.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrStorageUnavailable is returned when the database cannot be reached or the query fails.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInUse is returned when a record cannot be deleted because other rows still reference it.
	ErrInUse = errors.New("record still referenced")
)

// translateError maps driver and gorm errors onto the package sentinels.
// notFound is returned as-is for gorm.ErrRecordNotFound so callers get the
// entity specific error (ErrProductNotFound, ErrCategoryNotFound).
//
// Raw queries bypass gorm's TranslateError, so the driver's *pgconn.PgError
// is matched here as well as gorm's translated sentinels.
func translateError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
}

// translateDeleteError is translateError for deletes, where a foreign key
// violation means the row is still referenced rather than pointing at a
// missing one.
func translateDeleteError(err error, notFound error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %w", ErrInUse, err)
	}
	return translateError(err, notFound)
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || hasSQLState(err, pgUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || hasSQLState(err, pgForeignKeyViolation)
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
