package common

import (
	"errors"
	"fmt"
)

// Domain errors. Callers match these with errors.Is; the HTTP and CLI
// layers translate them into status codes and exit codes.
var (
	// ErrNotFound is returned when a job or account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a replay targets a job that is not
	// in the failed state.
	ErrInvalidState = errors.New("only failed jobs can be replayed")

	// ErrInvalidPayload is returned for malformed or incomplete job
	// payloads. It is surfaced at enqueue time and never retried.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInsufficientFunds covers both a short balance and a missing
	// source account: the conditional debit cannot tell the two apart.
	ErrInsufficientFunds = errors.New("insufficient funds or account not found")

	// ErrDestinationNotFound is returned after the compensating refund
	// of a transfer whose credit leg failed.
	ErrDestinationNotFound = errors.New("destination account not found, source refunded")

	// ErrDecryption is returned when the payload envelope fails
	// authentication. No partial plaintext is ever returned.
	ErrDecryption = errors.New("payload decryption failed")
)

// APIError is the structured error shape returned to HTTP callers.
type APIError struct {
	Status  int            `json:"-"`
	Message string         `json:"error"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func (e APIError) Error() string {
	return e.Message
}

func Errf(status int, format string, args ...any) APIError {
	return APIError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// NewAPIError creates an APIError with status, message, and optional fields
func NewAPIError(status int, message string, fields map[string]any) APIError {
	return APIError{
		Status:  status,
		Message: message,
		Fields:  fields,
	}
}
