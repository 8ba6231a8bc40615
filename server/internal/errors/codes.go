package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for event handling.
type ErrorCode string

const (
	// ErrCodeInvalidPayload indicates the request body is not a JSON event object.
	ErrCodeInvalidPayload ErrorCode = "INVALID_PAYLOAD"
	// ErrCodeMissingField indicates a field required by the event kind is absent.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidArgument indicates a field is present but unusable.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeQueueClosed indicates the ingest queue no longer accepts events.
	ErrCodeQueueClosed ErrorCode = "QUEUE_CLOSED"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeApplyFailed indicates the reducer could not apply an event.
	ErrCodeApplyFailed ErrorCode = "APPLY_FAILED"
)

// EventError represents a structured error for event ingestion and reduction.
type EventError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *EventError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *EventError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *EventError) WithContext(key string, value interface{}) *EventError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *EventError) GetCode() ErrorCode {
	return e.Code
}

// InvalidPayload creates an invalid payload error.
func InvalidPayload(cause error) *EventError {
	return &EventError{Code: ErrCodeInvalidPayload, Message: "event payload is not a JSON object", Cause: cause}
}

// MissingField creates a missing field error for the given event type.
func MissingField(eventType, field string) *EventError {
	return &EventError{
		Code:    ErrCodeMissingField,
		Message: fmt.Sprintf("%s event requires field %q", eventType, field),
	}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *EventError {
	return &EventError{Code: ErrCodeInvalidArgument, Message: msg}
}

// QueueClosed creates a queue closed error.
func QueueClosed() *EventError {
	return &EventError{Code: ErrCodeQueueClosed, Message: "ingest queue is closed"}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *EventError {
	return &EventError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// ApplyFailed creates an apply failed error.
func ApplyFailed(msg string, cause error) *EventError {
	return &EventError{Code: ErrCodeApplyFailed, Message: msg, Cause: cause}
}

// IsCode checks if an error, or any error it wraps, carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	var evErr *EventError
	if errors.As(err, &evErr) {
		return evErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an EventError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var evErr *EventError
	if errors.As(err, &evErr) {
		return evErr.Code
	}
	return defaultCode
}
