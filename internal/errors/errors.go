// Package errors provides a lightweight structured error type (RenderError)
// for category-based classification and retry semantics in the render
// pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a render error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Content recovery and layout errors
	CategoryExtract ErrorCategory = "extract"
	CategoryLayout  ErrorCategory = "layout"
	CategoryImage   ErrorCategory = "image"

	// Output and persistence errors
	CategoryOutput     ErrorCategory = "output"
	CategoryLedger     ErrorCategory = "ledger"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RenderError is a structured error with category, retryability, and context
type RenderError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for RenderError
type ContextFields map[string]any

// Error implements the error interface
func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *RenderError) WithContext(key string, value any) *RenderError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new RenderError
func New(category ErrorCategory, severity ErrorSeverity, message string) *RenderError {
	return &RenderError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new RenderError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *RenderError {
	return &RenderError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// Retryable creates a new retryable RenderError
func Retryable(category ErrorCategory, severity ErrorSeverity, message string) *RenderError {
	return &RenderError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: true,
	}
}

// WrapRetryable creates a new retryable RenderError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *RenderError {
	return &RenderError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if re, ok := err.(*RenderError); ok {
		return re.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if re, ok := err.(*RenderError); ok {
		return re.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a RenderError
func GetCategory(err error) ErrorCategory {
	if re, ok := err.(*RenderError); ok {
		return re.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error for content contract violations
func ValidationError(message string) *RenderError {
	return &RenderError{
		Category:  CategoryValidation,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// WrapError wraps an existing error with a new RenderError
func WrapError(err error, category ErrorCategory, message string) *RenderError {
	return &RenderError{
		Category:  category,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}
