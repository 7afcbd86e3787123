package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// remoteError is one entry of a GraphQL errors array, also accepted as a REST error body.
type remoteError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

func (e remoteError) code() string {
	if e.Extensions.Code != "" {
		return strings.ToUpper(e.Extensions.Code)
	}
	return strings.ToUpper(e.Code)
}

// toError maps the backend code onto the local taxonomy. Messages are passed through verbatim.
func (e remoteError) toError() error {
	message := e.Message
	if message == "" {
		message = appErrors.ErrRemote.Message
	}
	switch e.code() {
	case "BAD_USER_INPUT", "VALIDATION_ERROR":
		return appErrors.Clone(appErrors.ErrValidation, message)
	case "CONFLICT":
		return appErrors.Clone(appErrors.ErrConflict, message)
	case "TEACHER_BUSY", "GRADE_BUSY":
		reason := models.ConflictReason(e.code())
		conflictErr := &models.LessonConflictError{Reason: reason, Message: message, Conflict: models.LessonConflict{Reason: reason}}
		appErr := appErrors.Wrap(conflictErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
		appErr.Details = conflictErr.Conflict
		return appErr
	case "NOT_FOUND":
		return appErrors.Clone(appErrors.ErrReferential, message)
	default:
		return appErrors.Clone(appErrors.ErrRemote, message)
	}
}

func statusError(status int, body []byte) error {
	var payload struct {
		remoteError
		Error  string        `json:"error"`
		Errors []remoteError `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Errors) > 0 {
			return payload.Errors[0].toError()
		}
		if payload.Message == "" {
			payload.Message = payload.Error
		}
		if payload.Message != "" || payload.code() != "" {
			return payload.remoteError.toError()
		}
	}
	message := strings.TrimSpace(string(body))
	if len(message) > maxErrorBody {
		message = message[:maxErrorBody]
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return appErrors.Clone(appErrors.ErrRemote, fmt.Sprintf("backend returned %d: %s", status, message))
}

// asNotFound turns a missing-record rejection into NOT_FOUND for lookups by primary id.
func asNotFound(err error) error {
	if appErrors.Is(err, appErrors.ErrReferential) {
		return appErrors.Clone(appErrors.ErrNotFound, err.Error())
	}
	return err
}
