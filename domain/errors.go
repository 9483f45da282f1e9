package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Field is set when the error
// belongs to a single attribute of an entity (end_date, due_date, ...).
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewFieldError builds an INVALID error attached to a single field.
// Message is a message key rendered by the i18n catalog.
func NewFieldError(field, message string) *Error {
	return &Error{Code: ErrCodeInvalid, Field: field, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound     = NewError(ErrCodeNotFound, "user not found")
	ErrProjectNotFound  = NewError(ErrCodeNotFound, "project not found")
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "authentication required")
	ErrForbidden        = NewError(ErrCodeForbidden, "permission denied")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrBadCredentials   = NewError(ErrCodeUnauthorized, "invalid username or password")
	ErrValidationFailed = NewError(ErrCodeInvalid, "validation failed")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// FieldErrors collects user-facing validation messages keyed by form
// field. The empty key holds errors that belong to no single field.
type FieldErrors map[string][]string

// NonField is the key used for form-wide errors.
const NonField = ""

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		name := field
		if name == NonField {
			name = "__all__"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e[field], ", ")))
	}
	return strings.Join(parts, "; ")
}

// ValidationFailed wraps field errors into an INVALID domain error, or
// returns nil when there is nothing to report.
func ValidationFailed(errs FieldErrors) error {
	if errs.Empty() {
		return nil
	}
	return WrapError(ErrCodeInvalid, ErrValidationFailed.Message, errs)
}

// AsFieldErrors extracts form errors from err, including a single
// field-scoped domain error.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	var dErr *Error
	if errors.As(err, &dErr) && dErr.Code == ErrCodeInvalid && dErr.Field != "" {
		return FieldErrors{dErr.Field: {dErr.Message}}, true
	}
	return nil, false
}
