package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// SQLSTATE codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
)

// MapError translates a pgx error for entity/id into a domain error:
//
//	no rows, foreign key violation  -> ErrNotFound
//	unique violation                -> ErrAlreadyExists
//	check violation                 -> *ValidationError naming the column
//	serialization failure, deadlock -> ErrConflict
//
// Context errors and unknown codes keep their original chain.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	prefix := fmt.Sprintf("%s %s", entity, id)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", prefix, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", prefix, err)
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", prefix, domain.ErrAlreadyExists)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", prefix, domain.ErrNotFound)
	case codeCheckViolation:
		return fmt.Errorf("%s: %w", prefix, checkViolation(pgErr))
	case codeSerialization, codeDeadlock:
		// Keep pgErr in the chain so TxManager can still retry.
		return fmt.Errorf("%s: %w: %w", prefix, domain.ErrConflict, pgErr)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// IsSerializationFailure reports whether err aborted a transaction that may
// succeed when run again.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerialization || pgErr.Code == codeDeadlock
}

// checkViolation names the column of a violated inline CHECK. Postgres
// names those constraints "<table>_<column>_check"; table-level checks
// spanning several columns map to a bare ErrValidation.
func checkViolation(pgErr *pgconn.PgError) error {
	column := checkColumn(pgErr.TableName, pgErr.ConstraintName)
	switch column {
	case "":
		return domain.ErrValidation
	case "box_number", "level":
		return domain.NewValidationError(column, fmt.Sprintf("must be between %d and %d", domain.MinBox, domain.MaxBox))
	case "name", "front", "back":
		return domain.NewValidationError(column, "must not be blank")
	case "review_count", "total_cards", "correct_count", "incorrect_count":
		return domain.NewValidationError(column, "must not be negative")
	}
	return domain.NewValidationError(column, "violates "+pgErr.ConstraintName)
}

func checkColumn(table, constraint string) string {
	if table == "" {
		return ""
	}
	rest, ok := strings.CutPrefix(constraint, table+"_")
	if !ok {
		return ""
	}
	column, ok := strings.CutSuffix(rest, "_check")
	if !ok {
		return ""
	}
	return column
}
