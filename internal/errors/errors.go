package errors

import (
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
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
	if appErr, ok := err.(*AppError); ok {
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

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given error code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeDatabaseError      = "DATABASE_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeHeaderNotFound     = "HEADER_NOT_FOUND"
	CodeColumnCollision    = "COLUMN_COLLISION"
	CodeUnparseableMeasure = "UNPARSEABLE_MEASURE"
	CodeLoadFailure        = "LOAD_FAILURE"
	CodeFetchFailed        = "FETCH_FAILED"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// HeaderNotFound signals that no row in the scanned depth of a sheet met the
// recognized-token threshold. Fatal for that sheet only; the run continues.
func HeaderNotFound(sheetName string, scanned, minTokens int) *AppError {
	return New(CodeHeaderNotFound,
		fmt.Sprintf("no header row with >=%d recognized tokens in first %d rows of sheet %q", minTokens, scanned, sheetName))
}

// ColumnCollision is an internal-invariant violation: the deterministic
// suffixing policy left two columns with the same name.
func ColumnCollision(name string) *AppError {
	return New(CodeColumnCollision, fmt.Sprintf("column name collision unresolved: %q", name))
}

// LoadFailure wraps a store-level write error; aborts the whole run.
func LoadFailure(table string, cause error) *AppError {
	return &AppError{
		Code:    CodeLoadFailure,
		Message: fmt.Sprintf("failed to load table %s", table),
		Cause:   cause,
	}
}

// FetchFailed wraps a source-fetch error from the external collaborator.
func FetchFailed(source string, cause error) *AppError {
	return &AppError{
		Code:    CodeFetchFailed,
		Message: fmt.Sprintf("failed to fetch source %s", source),
		Cause:   cause,
	}
}
