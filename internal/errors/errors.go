package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured error surfaced once to the caller of a tool.
// Message is meant to be shown verbatim by a presentation layer.
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

// Is reports whether target is an AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
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

// Wrap wraps an error with additional context, keeping the code of an
// underlying AppError.
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

// WithCode replaces the code of an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Tool engine error codes
const (
	CodeInvalidField       = "INVALID_FIELD"
	CodeMissingData        = "MISSING_DATA"
	CodeTooFewCols         = "TOO_FEW_COLS"
	CodeTooFewRows         = "TOO_FEW_ROWS"
	CodeReplicationInvalid = "REPLICATION_INVALID"
	CodeNotEnoughData      = "NOT_ENOUGH_DATA"
	CodeNearSingular       = "NEAR_SINGULAR"
	CodeSingular           = "SINGULAR"
	CodeInvalidDimensions  = "INVALID_DIMENSIONS"
)

// Application error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidField(message string) *AppError {
	return New(CodeInvalidField, message)
}

func MissingData(message string) *AppError {
	return New(CodeMissingData, message)
}

func TooFewRows(message string) *AppError {
	return New(CodeTooFewRows, message)
}

func TooFewCols(message string) *AppError {
	return New(CodeTooFewCols, message)
}

func NotEnoughData(message string) *AppError {
	return New(CodeNotEnoughData, message)
}

func InvalidDimensions(message string) *AppError {
	return New(CodeInvalidDimensions, message)
}
