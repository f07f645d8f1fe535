package syntax

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for ingestion failures.
var (
	// ErrMissingInput indicates that a source document does not exist.
	ErrMissingInput = errors.New("convexgen: missing input document")
	// ErrEmptyInput indicates that a source document has no content.
	ErrEmptyInput = errors.New("convexgen: empty input document")
	// ErrParseFailed indicates that the parser rejected a source document.
	ErrParseFailed = errors.New("convexgen: parse failed")
	// ErrExtractionFailed indicates a failure in the ingestion machinery
	// itself rather than in the document being parsed.
	ErrExtractionFailed = errors.New("convexgen: extraction failed")
)

// MissingInputError reports a source document that could not be found.
type MissingInputError struct {
	Path  string
	Cause error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("convexgen: input document %q not found", e.Path)
}

// Unwrap returns the underlying error.
func (e *MissingInputError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for MissingInputError.
func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// EmptyInputError reports a source document with no parseable content.
type EmptyInputError struct {
	Path string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("convexgen: input document %q is empty", e.Path)
}

// Is reports whether the target matches the sentinel error for EmptyInputError.
func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// ParseError reports a document the parser could not accept. Details carries
// the parser's diagnostic text verbatim.
type ParseError struct {
	Path    string
	Details []string
	Cause   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("convexgen: parse failed")
	if e.Path != "" {
		fmt.Fprintf(&b, " for %q", e.Path)
	}
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParseFailed }

// ExtractionError wraps failures of the ingestion collaborator that are not
// diagnostics about the document itself: unreadable files, cache decoding,
// runaway helper stubs.
type ExtractionError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString("convexgen: extraction failed")
	if e.Path != "" {
		fmt.Fprintf(&b, " for %q", e.Path)
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
func (e *ExtractionError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for ExtractionError.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }

// IsParseError reports whether the error is a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
