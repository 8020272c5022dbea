package aggregates

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorCode standardizes failure semantics across the pipeline and request paths.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeInternal           ErrorCode = "internal"

	// CodeInvalidDocument marks an unreadable or corrupt source document.
	CodeInvalidDocument ErrorCode = "invalid_document"
	// CodeEmptyDocument marks a readable document that produced no usable text.
	CodeEmptyDocument ErrorCode = "empty_document"
	// CodeDataIntegrity marks corrupt persisted data, e.g. an answer letter outside the option bounds.
	CodeDataIntegrity ErrorCode = "data_integrity"
)

// Error is the canonical coded error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a coded error with explicit operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with a code.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func InvalidDocument(op, message string, cause error) error {
	return NewError(CodeInvalidDocument, op, message, cause)
}

func EmptyDocument(op, message string) error {
	return NewError(CodeEmptyDocument, op, message, nil)
}

func DataIntegrity(op, message string) error {
	return NewError(CodeDataIntegrity, op, message, nil)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// MapError converts persistence errors into coded errors. Already-coded errors pass through.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(CodeNotFound, op, "record not found", err)
	}
	return Wrap(CodeInternal, op, err)
}
