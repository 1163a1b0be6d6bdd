package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an upstream API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeUnknown
}

// FromStatus maps a non-2xx HTTP status code to an *Error
func FromStatus(statusCode int, url string) *Error {
	errType := ErrorTypeUnknown
	switch {
	case statusCode == http.StatusNotFound:
		errType = ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		errType = ErrorTypeRateLimit
	case statusCode >= 500:
		errType = ErrorTypeServerError
	}
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf("unexpected status %d from %s", statusCode, url),
		Code:    statusCode,
	}
}
