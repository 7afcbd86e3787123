package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Postgres error codes surfaced as domain errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translate maps constraint violations to typed errors and wraps everything else
// with the failed action. sql.ErrNoRows is preserved for callers.
func translate(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("%s: slot already taken (%s)", action, pqErr.Constraint))
		case pqForeignKeyViolation:
			return appErrors.Wrap(err, appErrors.ErrReferential.Code, appErrors.ErrReferential.Status, appErrors.ErrReferential.Message)
		case pqCheckViolation:
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("%s: %s", action, pqErr.Message))
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
