package load

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema is reported when a schema document does not have the
// shape the extractor requires. Matched with errors.Is.
var ErrInvalidSchema = errors.New("convexgen: invalid schema structure")

// SchemaError describes a structural problem in a schema document.
type SchemaError struct {
	Path    string // source file the schema was read from
	Context string // table or column the problem was found at
	Message string
}

func (e *SchemaError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("convexgen: invalid schema structure in %s (%s): %s", e.Path, e.Context, e.Message)
	}
	return fmt.Sprintf("convexgen: invalid schema structure in %s: %s", e.Path, e.Message)
}

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// FunctionError describes a structural problem in a function declaration.
type FunctionError struct {
	Path     string
	Function string
	Message  string
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("convexgen: invalid function %s in %s: %s", e.Function, e.Path, e.Message)
}

func (e *FunctionError) Is(target error) bool { return target == ErrInvalidSchema }

// IsSchemaError reports whether err is a structural schema or function error.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}
