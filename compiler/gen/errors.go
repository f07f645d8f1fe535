package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("convexgen: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("convexgen: code generation failed")
	// ErrSerialization indicates the generated source could not be
	// rendered or formatted.
	ErrSerialization = errors.New("convexgen: serialization failed")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("convexgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("convexgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a code generation failure.
type GenerationError struct {
	Scope   string // table, function or type the failure belongs to
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("convexgen: generation failed")
	if e.Scope != "" {
		b.WriteString(" for ")
		b.WriteString(e.Scope)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(scope, message string, cause error) *GenerationError {
	return &GenerationError{
		Scope:   scope,
		Message: message,
		Cause:   cause,
	}
}

// SerializationError represents a rendering or formatting failure of the
// generated output.
type SerializationError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("convexgen: serialization failed for %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("convexgen: serialization failed: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SerializationError.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// IsGenerationError reports whether err is a code generation failure.
func IsGenerationError(err error) bool {
	return errors.Is(err, ErrGenerationFailed)
}

// IsSerializationError reports whether err is a serialization failure.
func IsSerializationError(err error) bool {
	return errors.Is(err, ErrSerialization)
}
