package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"nba-stats-explorer/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ExplorerError struct {
	Message string
	Cause   error
}

func (e *ExplorerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExplorerError) Unwrap() error {
	return e.Cause
}

// Distinct error types so callers can branch with errors.As
type ValidationError struct{ ExplorerError }
type FetchError struct{ ExplorerError }
type SchemaError struct{ ExplorerError }
type StoreError struct{ ExplorerError }

// -----------------------------------------------------------------------------

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{ExplorerError{Message: fmt.Sprintf(format, args...)}}
}

func NewFetchError(cause error, format string, args ...interface{}) error {
	return &FetchError{ExplorerError{Message: fmt.Sprintf(format, args...), Cause: cause}}
}

func NewSchemaError(format string, args ...interface{}) error {
	return &SchemaError{ExplorerError{Message: fmt.Sprintf(format, args...)}}
}

func NewStoreError(cause error, format string, args ...interface{}) error {
	return &StoreError{ExplorerError{Message: fmt.Sprintf(format, args...), Cause: cause}}
}

// -----------------------------------------------------------------------------

// StatusCode maps an error to the HTTP status the dashboard answers with.
func StatusCode(err error) int {
	var validation *ValidationError
	var fetch *FetchError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &fetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger *logger.Logger
	count  atomic.Int64
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

// ResetErrorCount zeroes the counter reported by Count.
func (e *ErrorHandler) ResetErrorCount() {
	e.count.Store(0)
}

// Count returns the number of errors handled since the last reset.
func (e *ErrorHandler) Count() int64 {
	return e.count.Load()
}

// -----------------------------------------------------------------------------

// Handle logs err with its context. Fetch and schema failures are expected
// for seasons the source has not published, so they log as warnings.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}
	e.count.Add(1)

	var fetch *FetchError
	var schema *SchemaError
	var validation *ValidationError
	if errors.As(err, &fetch) || errors.As(err, &schema) || errors.As(err, &validation) {
		e.Logger.Warning("%s: %v", context, err)
		return
	}
	e.Logger.Error("Error in %s: %v", context, err)
}
