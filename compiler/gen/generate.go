package gen

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/convexgen/compiler/load"
	"github.com/syssam/convexgen/compiler/syntax"
)

// Config carries everything one generation run needs.
type Config struct {
	// SchemaPath is the schema document to read table definitions from.
	SchemaPath string
	// FunctionPaths are the documents scanned for function declarations,
	// processed in the given order.
	FunctionPaths []string
	// OutFile is the single Go file the run produces. Nothing is written
	// unless the whole run succeeds.
	OutFile string
	// Package overrides the generated package name. Defaults to the base
	// name of OutFile's directory.
	Package string
	// HelperStubs are extra sources whose top-level declarations join the
	// binding table of every processed file. They are forwarded to the
	// parser untouched.
	HelperStubs map[string]string
	// Parser overrides the default source parser, e.g. to add a cache.
	Parser *syntax.Parser
	// Workers bounds the number of files parsed concurrently. Defaults
	// to GOMAXPROCS.
	Workers int
}

func (c *Config) validate() error {
	if c == nil {
		return NewConfigError("Config", nil, "missing configuration")
	}
	if c.SchemaPath == "" {
		return NewConfigError("SchemaPath", nil, "missing schema path")
	}
	if c.OutFile == "" {
		return NewConfigError("OutFile", nil, "missing output file")
	}
	return nil
}

func (c *Config) packageName() string {
	if c.Package != "" {
		return c.Package
	}
	dir := filepath.Base(filepath.Dir(c.OutFile))
	if dir == "." || dir == string(filepath.Separator) {
		return "api"
	}
	return strings.ToLower(snake(dir))
}

// Generate runs the whole pipeline: parse the schema and function files,
// extract and lower their declarations, and emit the bindings file. The
// output is rendered and formatted fully in memory; the file on disk is
// replaced only when everything succeeded.
func Generate(ctx context.Context, cfg *Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	parser := cfg.Parser
	if parser == nil {
		parser = syntax.NewParser(syntax.WithHelperStubs(cfg.HelperStubs))
	}

	stubFiles, err := parseStubs(ctx, parser)
	if err != nil {
		return err
	}

	schemaFile, err := parser.ParseFile(ctx, cfg.SchemaPath)
	if err != nil {
		return err
	}
	bindings := load.CollectBindings(append(stubFiles, schemaFile)...)
	schema, err := load.ExtractSchema(schemaFile, bindings)
	if err != nil {
		return err
	}

	functions, err := parseFunctions(ctx, parser, append(stubFiles, schemaFile), cfg)
	if err != nil {
		return err
	}

	f := jen.NewFile(cfg.packageName())
	f.HeaderComment("Code generated by convexgen. DO NOT EDIT.")
	f.ImportName(runtimePkg, "convex")
	f.ImportAlias(jsonPkg, "json")

	b := newTypeBuilder(f)
	for _, t := range schema.Tables {
		if err := genEntity(b, t); err != nil {
			return err
		}
	}
	if len(functions) > 0 {
		genClient(b)
	}
	for _, fn := range functions {
		if err := genFunction(b, fn); err != nil {
			return err
		}
	}
	b.emitHelpers()

	out, err := renderFile(f, cfg.OutFile)
	if err != nil {
		return err
	}
	return writeFile(cfg.OutFile, out)
}

// parseStubs parses the helper stub sources in name order, so binding
// shadowing between stubs is deterministic.
func parseStubs(ctx context.Context, parser *syntax.Parser) ([]*syntax.File, error) {
	stubs := parser.HelperStubs()
	names := make([]string, 0, len(stubs))
	for name := range stubs {
		names = append(names, name)
	}
	sort.Strings(names)
	files := make([]*syntax.File, 0, len(names))
	for _, name := range names {
		file, err := parser.Parse(ctx, name, []byte(stubs[name]))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// parseFunctions loads every function file concurrently. Each file resolves
// bindings against baseFiles (helper stubs plus the schema file) followed by
// its own declarations, so shared validators exported from the schema stay in
// scope. Results keep the order of Config.FunctionPaths regardless of
// completion order.
func parseFunctions(ctx context.Context, parser *syntax.Parser, baseFiles []*syntax.File, cfg *Config) ([]*load.Function, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	perFile := make([][]*load.Function, len(cfg.FunctionPaths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, path := range cfg.FunctionPaths {
		i, path := i, path
		eg.Go(func() error {
			file, err := parser.ParseFile(ctx, path)
			if err != nil {
				return err
			}
			files := make([]*syntax.File, 0, len(baseFiles)+1)
			files = append(files, baseFiles...)
			files = append(files, file)
			bindings := load.CollectBindings(files...)
			fns, err := load.ExtractFunctions(file, bindings)
			if err != nil {
				return err
			}
			perFile[i] = fns
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	var out []*load.Function
	for _, fns := range perFile {
		out = append(out, fns...)
	}
	return out, nil
}
