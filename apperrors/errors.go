// Package apperrors holds the error kinds every portal workflow reports.
// Workflow boundaries return *Error so callers can branch on Kind instead
// of matching message strings.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindAuthRequired       Kind = "AUTH_REQUIRED"
	KindUploadFailure      Kind = "UPLOAD_FAILURE"
	KindPersistenceFailure Kind = "PERSISTENCE_FAILURE"
	KindAccessDenied       Kind = "ACCESS_DENIED"
	KindNotFound           Kind = "NOT_FOUND"
)

// Error is a user-facing failure scoped to a single interaction.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause. The cause text becomes the detail shown to the user.
func Wrap(kind Kind, message string, err error) *Error {
	e := &Error{Kind: kind, Message: message, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

func Validation(format string, args ...interface{}) *Error {
	return Newf(KindValidation, format, args...)
}

func AuthRequired(message string) *Error {
	return New(KindAuthRequired, message)
}

func AccessDenied(message string) *Error {
	return New(KindAccessDenied, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err did not come from a workflow boundary.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
