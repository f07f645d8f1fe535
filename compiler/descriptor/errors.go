package descriptor

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for descriptor building.
var (
	// ErrInvalidType indicates an unrecognized validator constructor.
	ErrInvalidType = errors.New("convexgen: invalid validator type")
	// ErrCircularReference indicates an object type that re-enters its own
	// structural path.
	ErrCircularReference = errors.New("convexgen: circular type reference")
)

// InvalidTypeError reports a validator constructor outside the recognized
// set. Valid always carries the full recognized set, so the message tells
// the user what would have been accepted.
type InvalidTypeError struct {
	Found   string
	Context string
	Valid   []string
}

func (e *InvalidTypeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "convexgen: invalid validator type %q", e.Found)
	if e.Context != "" {
		fmt.Fprintf(&b, " at %s", e.Context)
	}
	fmt.Fprintf(&b, " (valid types: %s)", strings.Join(e.Valid, ", "))
	return b.String()
}

// Is reports whether the target matches the sentinel error for InvalidTypeError.
func (e *InvalidTypeError) Is(target error) bool { return target == ErrInvalidType }

// CircularReferenceError reports an object whose structural path revisits
// itself. Chain holds the full path stack at the point of the revisit.
type CircularReferenceError struct {
	Context string
	Chain   []string
}

func (e *CircularReferenceError) Error() string {
	var b strings.Builder
	b.WriteString("convexgen: circular type reference")
	if e.Context != "" {
		fmt.Fprintf(&b, " at %s", e.Context)
	}
	if len(e.Chain) > 0 {
		fmt.Fprintf(&b, " (chain: %s)", strings.Join(e.Chain, " -> "))
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for CircularReferenceError.
func (e *CircularReferenceError) Is(target error) bool { return target == ErrCircularReference }

// StructureError reports a validator expression whose shape does not match
// what its constructor requires, e.g. an optional with no inner type.
type StructureError struct {
	Context string
	Message string
}

func (e *StructureError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("convexgen: invalid validator structure at %s: %s", e.Context, e.Message)
	}
	return "convexgen: invalid validator structure: " + e.Message
}

// IsInvalidType reports whether the error is an InvalidTypeError.
func IsInvalidType(err error) bool {
	var ite *InvalidTypeError
	return errors.As(err, &ite)
}

// IsCircularReference reports whether the error is a CircularReferenceError.
func IsCircularReference(err error) bool {
	var cre *CircularReferenceError
	return errors.As(err, &cre)
}
