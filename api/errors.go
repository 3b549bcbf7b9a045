// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-iotlb.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrInvalidationFailed = fmt.Errorf("hardware invalidation failed")
	ErrMappingNotFound    = fmt.Errorf("mapping not found")
	ErrDoubleUnmap        = fmt.Errorf("translation already removed")
	ErrQueueOverflow      = fmt.Errorf("pending queue overflow")
	ErrInvalidArgument    = fmt.Errorf("invalid argument")
	ErrNotSupported       = fmt.Errorf("operation not supported")
	ErrBackendUnknown     = fmt.Errorf("unknown backend family")
	ErrArenaExhausted     = fmt.Errorf("arena exhausted")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeInvalidationFailed
	ErrCodeMappingNotFound
	ErrCodeOverflow
	ErrCodeNotSupported
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
