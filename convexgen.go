// Package convexgen generates typed Go client bindings from the schema and
// function declarations of a Convex backend. The schema document yields one
// struct per table, the function documents yield one client method per
// declared query, mutation and action, and all of it lands in a single
// generated file.
//
// The heavy lifting lives under compiler/: syntax parses the source
// documents, load extracts schema and function declarations, and gen lowers
// them to Go source. This package is the stable entry point.
package convexgen

import (
	"context"

	"github.com/syssam/convexgen/compiler/gen"
	"github.com/syssam/convexgen/compiler/syntax"
)

// Config describes one generation run. See gen.Config for the field
// documentation.
type Config = gen.Config

// Generate runs the full pipeline described by cfg. The output file is
// written only when every stage succeeded; a failing run leaves any
// previous output in place.
func Generate(ctx context.Context, cfg *Config) error {
	return gen.Generate(ctx, cfg)
}

// NewCachingParser returns a parser backed by an in-memory parse cache,
// keyed by source content. Useful for watch loops where most files do not
// change between runs.
func NewCachingParser(helperStubs map[string]string) *syntax.Parser {
	return syntax.NewParser(
		syntax.WithCache(syntax.NewMemoryCache()),
		syntax.WithHelperStubs(helperStubs),
	)
}
