package service

import (
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

var entityIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-:.]{0,63}$`)

// NewValidator returns a validator with the timetable-specific tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerValidations(v)
	return v
}

func registerValidations(v *validator.Validate) *validator.Validate {
	if v == nil {
		v = validator.New()
	}
	_ = v.RegisterValidation("entity_id", func(fl validator.FieldLevel) bool {
		return entityIDPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return v
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || appErrors.Is(err, appErrors.ErrNotFound)
}

// persistenceError keeps typed errors from the persistence driver and wraps anything
// else as a remote failure.
func persistenceError(err error, message string) error {
	if err == nil {
		return nil
	}
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	return appErrors.Wrap(err, appErrors.ErrRemote.Code, appErrors.ErrRemote.Status, message)
}
