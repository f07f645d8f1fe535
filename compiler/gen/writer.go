package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"
)

// renderFile renders the generated file and runs it through goimports.
// Everything happens in memory so a failure leaves no partial output.
func renderFile(f *jen.File, path string) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, &SerializationError{Path: path, Cause: err}
	}
	out, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		return nil, &SerializationError{Path: path, Cause: err}
	}
	return out, nil
}

// writeFile writes the rendered output in a single operation.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("convexgen: create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("convexgen: write %s: %w", path, err)
	}
	return nil
}
