// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It maps
// each code onto an HTTP status, since this service's documented boundary
// is HTTP/JSON rather than gRPC.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Validation
	CodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	CodeInvalidCity      ErrorCode = "INVALID_CITY"
	CodeInvalidThreshold ErrorCode = "INVALID_THRESHOLD"
	CodeInvalidPagination ErrorCode = "INVALID_PAGINATION"
	CodeDatasetInvalid   ErrorCode = "DATASET_INVALID"

	// Graph / connectivity
	CodeGraphUnavailable ErrorCode = "GRAPH_UNAVAILABLE"
	CodeGraphOutOfSync   ErrorCode = "GRAPH_OUT_OF_SYNC"
	CodeGraphInvalid     ErrorCode = "GRAPH_INVALID"
	CodeNoPath           ErrorCode = "NO_PATH"
	CodeStopsNotFound    ErrorCode = "STOPS_NOT_FOUND"
	CodeRoutesNotFound   ErrorCode = "ROUTES_NOT_FOUND"
	CodeCityNotFound     ErrorCode = "CITY_NOT_FOUND"

	// Algorithm
	CodeAlgorithmError ErrorCode = "ALGORITHM_ERROR"
	CodeTimeout        ErrorCode = "TIMEOUT"
	CodeNegativeCycle  ErrorCode = "NEGATIVE_CYCLE"

	// Data pipeline
	CodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	CodeRecoveryFailed    ErrorCode = "RECOVERY_FAILED"
	CodeCacheError        ErrorCode = "CACHE_ERROR"
	CodeSyncFailed        ErrorCode = "SYNC_FAILED"

	// General
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeNilInput         ErrorCode = "NIL_INPUT"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a
// severity level.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps an ErrorCode onto the HTTP status returned by the
// internal/httpapi boundary.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest, CodeInvalidCity, CodeInvalidThreshold,
		CodeInvalidPagination, CodeDatasetInvalid, CodeNilInput:
		return http.StatusBadRequest

	case CodeStopsNotFound, CodeRoutesNotFound, CodeCityNotFound, CodeNotFound:
		return http.StatusNotFound

	case CodeNoPath, CodeGraphOutOfSync, CodeGraphInvalid, CodeNegativeCycle:
		return http.StatusUnprocessableEntity

	case CodeGraphUnavailable, CodeSourceUnavailable:
		return http.StatusServiceUnavailable

	case CodeTimeout:
		return http.StatusGatewayTimeout

	case CodeUnauthenticated:
		return http.StatusUnauthorized

	case CodePermissionDenied:
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}

// New creates a new application error with SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityError}
}

// NewWithField creates a new application error tied to a request field.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field, Details: make(map[string]any), Severity: SeverityError}
}

// NewWarning creates a new application error with SeverityWarning.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityWarning}
}

// NewCritical creates a new application error with SeverityCritical.
func NewCritical(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityCritical}
}

// Wrap creates a new application error wrapping an existing cause.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]any), Severity: SeverityError}
}

// WithDetails adds a key-value pair to the error's details map.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks if err is an *Error with a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error, defaulting to CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ToHTTPStatus extracts the HTTP status an error should be reported as.
func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// IsWarning reports whether err is an *Error with SeverityWarning.
func IsWarning(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityWarning
	}
	return false
}

// IsCritical reports whether err is an *Error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// Predefined errors for common scenarios.
var (
	ErrNoPath            = New(CodeNoPath, "no path between the requested stops")
	ErrGraphUnavailable  = New(CodeGraphUnavailable, "graph is not yet initialized")
	ErrGraphOutOfSync    = New(CodeGraphOutOfSync, "graph is stale relative to the current dataset")
	ErrTimeout           = New(CodeTimeout, "operation timed out")
	ErrNilInput          = New(CodeNilInput, "required input is nil")
)

// ValidationErrors is a collection of application errors and warnings,
// typically used for aggregating results of multiple validation checks.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

// NewValidationErrors creates a new empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*Error, 0), Warnings: make([]*Error, 0)}
}

// Add appends an *Error to the appropriate slice based on its Severity.
func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

// AddError creates and adds a new application error with SeverityError.
func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

// AddWarning creates and adds a new application error with SeverityWarning.
func (v *ValidationErrors) AddWarning(code ErrorCode, message string) {
	v.Warnings = append(v.Warnings, NewWarning(code, message))
}

// HasErrors returns true if the collection contains any non-warning errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// HasWarnings returns true if the collection contains any warnings.
func (v *ValidationErrors) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// IsValid returns true if the collection contains no errors.
func (v *ValidationErrors) IsValid() bool {
	return !v.HasErrors()
}

// Merge combines another ValidationErrors collection into this one.
func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

// ErrorMessages returns string messages for all collected errors.
func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}
