// Package domain holds the quote widget's model: categories, quotes, share
// targets, the color palette and the per-visitor widget state.
//
// Errors here say why a quote could not be produced. They carry no transport
// detail; the HTTP layer maps them to status codes and the CLI to exit codes.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable")

	// ErrNoQuotes means the upstream answered successfully with zero quotes.
	ErrNoQuotes = fmt.Errorf("%w: no quotes found", ErrNotFound)
)

// ValidationError rejects one input. Value is kept for logging and is never
// part of the message.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	if e.Field != "" {
		b.WriteString(" for ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnavailableError reports that a dependency such as the quotes API could not
// answer. Reason is safe to log but is not shown to visitors.
type UnavailableError struct {
	Service string
	Reason  string
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("service %q %s", e.Service, ErrUnavailable)
	if e.Reason == "" {
		return msg
	}
	return msg + ": " + e.Reason
}

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool  { return errors.Is(err, ErrValidation) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
