package services

import (
	"errors"
	"fmt"

	"github.com/hypernova-labs/fattura-service/internal/database"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrRender     = errors.New("document render failed")
	ErrDelivery   = errors.New("delivery failed")
)

// Error is a service failure of a known kind with a client-facing message
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is matches the error kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(message string, err error) error {
	return &Error{Kind: ErrNotFound, Message: message, Err: err}
}

// translateStoreError converts repository sentinels into service kinds.
// Anything else is returned wrapped and surfaces as an internal error.
func translateStoreError(err error, notFoundMessage, action string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return notFoundError(notFoundMessage, err)
	case errors.Is(err, database.ErrDuplicate):
		return &Error{Kind: ErrConflict, Message: "resource already exists", Err: err}
	default:
		return fmt.Errorf("error %s: %w", action, err)
	}
}
