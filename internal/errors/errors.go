package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError carrying the same code, so
// errors.Is(err, ErrNotFound) matches any not-found error in the chain.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context, keeping the code of the
// innermost AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the code of the first AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeIO              = "IO_ERROR"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeDegenerateInput = "DEGENERATE_INPUT"
	CodeSchema          = "SCHEMA_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrNotFound        = New(CodeNotFound, "not found")
	ErrIO              = New(CodeIO, "i/o failure")
	ErrInvalidArgument = New(CodeInvalidArgument, "invalid argument")
	ErrDegenerateInput = New(CodeDegenerateInput, "degenerate input")
	ErrSchema          = New(CodeSchema, "schema mismatch")
	ErrConfigInvalid   = New(CodeConfigInvalid, "invalid configuration")
	ErrDatabase        = New(CodeDatabaseError, "database failure")
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func IOError(message string, cause error) *AppError {
	return &AppError{Code: CodeIO, Message: message, Cause: cause}
}

func InvalidArgument(format string, args ...interface{}) *AppError {
	return Newf(CodeInvalidArgument, format, args...)
}

func DegenerateInput(format string, args ...interface{}) *AppError {
	return Newf(CodeDegenerateInput, format, args...)
}

func SchemaError(message string) *AppError {
	return New(CodeSchema, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// IsNotFound reports whether err carries the NOT_FOUND code
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsInvalidArgument reports whether err carries the INVALID_ARGUMENT code
func IsInvalidArgument(err error) bool {
	return stderrors.Is(err, ErrInvalidArgument)
}
