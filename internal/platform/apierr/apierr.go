package apierr

import (
	"fmt"
	"net/http"

	"github.com/yungbote/studyforge-backend/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps a coded error onto an HTTP status with a stable code.
// Uncoded errors become 500 with fallbackCode.
func FromError(err error, fallbackCode string) *Error {
	if err == nil {
		return nil
	}
	code := aggregates.CodeOf(err)
	switch code {
	case aggregates.CodeValidation:
		return New(http.StatusBadRequest, string(code), err)
	case aggregates.CodeNotFound:
		return New(http.StatusNotFound, string(code), err)
	case aggregates.CodeConflict, aggregates.CodePreconditionFailed:
		return New(http.StatusConflict, string(code), err)
	case aggregates.CodeInvalidDocument, aggregates.CodeEmptyDocument:
		return New(http.StatusUnprocessableEntity, string(code), err)
	case aggregates.CodeDataIntegrity, aggregates.CodeInvariantViolation:
		// Corrupt persisted data is a server fault; callers still get the stable code.
		return New(http.StatusInternalServerError, string(code), fmt.Errorf("stored data is inconsistent"))
	case "":
		return New(http.StatusInternalServerError, fallbackCode, fmt.Errorf("internal error"))
	default:
		return New(http.StatusInternalServerError, string(code), fmt.Errorf("internal error"))
	}
}
