package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeForbidden  ErrorType = "FORBIDDEN"

	// Application errors
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal     ErrorType = "INTERNAL"

	// Infrastructure errors
	ErrorTypeDatabase ErrorType = "DATABASE"
)

// Error codes for the graph core taxonomy. Handlers and tests match on
// these rather than on message text.
const (
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeUnknownKind           = "UNKNOWN_KIND"
	CodeSelfLoop              = "SELF_LOOP"
	CodeNoMatchingRule        = "NO_MATCHING_RULE"
	CodeDuplicateRelationship = "DUPLICATE_RELATIONSHIP"
	CodeWriteNotPermitted     = "WRITE_NOT_PERMITTED"
	CodeTransactionAborted    = "TRANSACTION_ABORTED"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{
		Type:       ErrorTypeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
		StackTrace: captureStackTrace(),
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    fmt.Sprintf("database operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// Constructors for the graph core taxonomy.

// NewInvalidTokenError indicates an external id token that could not be decoded.
func NewInvalidTokenError(token string) *AppError {
	return NewValidationError("invalid identifier token").
		WithCode(CodeInvalidToken).
		WithDetails(map[string]interface{}{"token": token})
}

// NewUnknownKindError indicates an entity kind outside the registered set.
func NewUnknownKindError(kind string) *AppError {
	return NewValidationError(fmt.Sprintf("unknown entity kind %q", kind)).
		WithCode(CodeUnknownKind)
}

// NewSelfLoopError indicates a synapse whose endpoints are the same entity.
func NewSelfLoopError(id string) *AppError {
	return NewValidationError("synapse endpoints must differ").
		WithCode(CodeSelfLoop).
		WithDetails(map[string]interface{}{"id": id})
}

// NewNoMatchingRuleError indicates a relationship the registry does not permit.
// The offending tuple travels in Details for diagnostics.
func NewNoMatchingRuleError(sourceKind, targetKind, role, direction string) *AppError {
	return NewValidationError(
		fmt.Sprintf("no relationship rule permits %s -[%s/%s]-> %s", sourceKind, role, direction, targetKind)).
		WithCode(CodeNoMatchingRule).
		WithDetails(map[string]interface{}{
			"source_kind": sourceKind,
			"target_kind": targetKind,
			"role":        role,
			"direction":   direction,
		})
}

// NewDuplicateRelationshipError indicates a second live synapse with an
// identical (from, to, role) tuple.
func NewDuplicateRelationshipError(from, to, role string) *AppError {
	return NewConflictError("an identical live synapse already exists").
		WithCode(CodeDuplicateRelationship).
		WithDetails(map[string]interface{}{
			"from": from,
			"to":   to,
			"role": role,
		})
}

// NewWriteNotPermittedError indicates the external write gate rejected the mutation.
func NewWriteNotPermittedError() *AppError {
	return NewForbiddenError("writes are not currently permitted").
		WithCode(CodeWriteNotPermitted)
}

// NewTransactionAbortedError indicates the store could not commit the write.
func NewTransactionAbortedError(err error) *AppError {
	return NewConflictError("transaction aborted").
		WithCode(CodeTransactionAborted).
		WithCause(err)
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// HasCode checks if an error carries a specific taxonomy code
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsForbidden checks if an error is a forbidden error
func IsForbidden(err error) bool {
	return IsType(err, ErrorTypeForbidden)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
