package syntax

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser turns TypeScript source documents into File trees using
// tree-sitter. A Parser is safe for concurrent use: each Parse call creates
// its own tree-sitter instance.
type Parser struct {
	cache Cache
	stubs map[string]string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithCache installs a parse cache. Cached entries are keyed by the content
// hash of the source, so stale files never produce stale trees.
func WithCache(c Cache) ParserOption {
	return func(p *Parser) { p.cache = c }
}

// WithHelperStubs forwards the import-pattern to stub-document map. The
// parser exposes it through HelperStubs; stub documents are parsed like any
// other source and merged into the binding table by the loader. The
// classification and emission core never interprets this map.
func WithHelperStubs(stubs map[string]string) ParserOption {
	return func(p *Parser) { p.stubs = stubs }
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HelperStubs returns the configured import-pattern to stub-document map.
func (p *Parser) HelperStubs() map[string]string { return p.stubs }

// ParseFile reads and parses one source document.
func (p *Parser) ParseFile(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingInputError{Path: path, Cause: err}
		}
		return nil, &ExtractionError{Path: path, Message: "read input document", Cause: err}
	}
	return p.Parse(ctx, path, src)
}

// Parse parses source text. The path is used for error context and for the
// File name; it is not read.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*File, error) {
	if strings.TrimSpace(string(src)) == "" {
		return nil, &EmptyInputError{Path: path}
	}

	if p.cache != nil {
		if f, ok := p.cache.Get(cacheKey(src)); ok {
			f.Path = path
			f.Name = fileName(path)
			return f, nil
		}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &ParseError{Path: path, Details: []string{"parser returned no tree"}}
	}
	if root.HasError() {
		return nil, &ParseError{Path: path, Details: collectDiagnostics(root, src)}
	}

	file := &File{
		Name: fileName(path),
		Path: path,
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		file.Decls = append(file.Decls, convertStatement(root.NamedChild(i), src)...)
	}

	if p.cache != nil {
		p.cache.Set(cacheKey(src), file)
	}
	return file, nil
}

// fileName strips the directory and extension: convex/messages.ts -> messages.
func fileName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// collectDiagnostics walks the tree for error and missing nodes and renders
// them with their source position, the way the parser would report them.
func collectDiagnostics(n *sitter.Node, src []byte) []string {
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "ERROR" || n.IsMissing() {
			point := n.StartPoint()
			snippet := n.Content(src)
			if len(snippet) > 40 {
				snippet = snippet[:40] + "..."
			}
			out = append(out, fmt.Sprintf("syntax error at %d:%d near %q", point.Row+1, point.Column+1, snippet))
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
	if len(out) == 0 {
		out = append(out, "source contains syntax errors")
	}
	return out
}

// convertStatement maps one top-level statement to zero or more Decls.
// Statements that cannot hold a schema or function declaration (imports,
// type aliases, interfaces) produce nothing.
func convertStatement(n *sitter.Node, src []byte) []Decl {
	switch n.Type() {
	case "export_statement":
		return convertExport(n, src)
	case "lexical_declaration", "variable_declaration":
		return convertDeclarators(n, src, false)
	case "expression_statement":
		if expr := firstNamedChild(n); expr != nil {
			if node := convertExpr(expr, src); node != nil && node.Kind == KindCall {
				return []Decl{{Init: node}}
			}
		}
	}
	return nil
}

func convertExport(n *sitter.Node, src []byte) []Decl {
	isDefault := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "default" {
			isDefault = true
			break
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "lexical_declaration", "variable_declaration":
			return convertDeclarators(child, src, true)
		case "export_clause", "comment":
			// Re-exports carry no initializer.
		default:
			// `export default <expr>;`
			if node := convertExpr(child, src); node != nil {
				return []Decl{{Exported: true, Default: isDefault, Init: node}}
			}
		}
	}
	return nil
}

func convertDeclarators(n *sitter.Node, src []byte, exported bool) []Decl {
	var out []Decl
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if name == nil || value == nil || name.Type() != "identifier" {
			continue
		}
		out = append(out, Decl{
			Name:     name.Content(src),
			Exported: exported,
			Init:     convertExpr(value, src),
		})
	}
	return out
}

// convertExpr maps a tree-sitter expression onto the Node variant set.
// Unknown shapes come back as KindOther rather than failing: whether that is
// an error depends on where the node ends up.
func convertExpr(n *sitter.Node, src []byte) *Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "parenthesized_expression", "non_null_expression":
		return convertExpr(firstNamedChild(n), src)
	case "as_expression", "satisfies_expression":
		// Keep the value, drop the type annotation.
		return convertExpr(n.NamedChild(0), src)
	case "identifier":
		return &Node{Kind: KindIdent, Name: n.Content(src)}
	case "member_expression":
		prop := n.ChildByFieldName("property")
		if prop == nil {
			return &Node{Kind: KindOther}
		}
		return &Node{
			Kind:   KindMember,
			Name:   prop.Content(src),
			Object: convertExpr(n.ChildByFieldName("object"), src),
		}
	case "call_expression":
		call := &Node{
			Kind:   KindCall,
			Callee: convertExpr(n.ChildByFieldName("function"), src),
		}
		if args := n.ChildByFieldName("arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				call.Args = append(call.Args, convertExpr(args.NamedChild(i), src))
			}
		}
		return call
	case "object":
		obj := &Node{Kind: KindObject}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if prop := convertProperty(n.NamedChild(i), src); prop != nil {
				obj.Props = append(obj.Props, prop)
			}
		}
		return obj
	case "array":
		arr := &Node{Kind: KindArray}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			arr.Elems = append(arr.Elems, convertExpr(n.NamedChild(i), src))
		}
		return arr
	case "string":
		return &Node{Kind: KindString, Str: stringContent(n, src)}
	case "number":
		f, err := strconv.ParseFloat(strings.ReplaceAll(n.Content(src), "_", ""), 64)
		if err != nil {
			return &Node{Kind: KindOther}
		}
		return &Node{Kind: KindNumber, Num: f}
	case "true":
		return &Node{Kind: KindBool, Bool: true}
	case "false":
		return &Node{Kind: KindBool, Bool: false}
	case "null", "undefined":
		return &Node{Kind: KindNull}
	default:
		return &Node{Kind: KindOther}
	}
}

func convertProperty(n *sitter.Node, src []byte) *Node {
	switch n.Type() {
	case "pair":
		key := convertKey(n.ChildByFieldName("key"), src)
		if key == nil {
			return nil
		}
		return &Node{
			Kind:  KindProperty,
			Key:   key,
			Value: convertExpr(n.ChildByFieldName("value"), src),
		}
	case "shorthand_property_identifier":
		// `{ chatType }` desugars to a key plus an identifier value so the
		// binding resolver can substitute the value while the key stays put.
		name := n.Content(src)
		return &Node{
			Kind:  KindProperty,
			Key:   &Node{Kind: KindIdent, Name: name},
			Value: &Node{Kind: KindIdent, Name: name},
		}
	}
	return nil
}

func convertKey(n *sitter.Node, src []byte) *Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "property_identifier", "identifier":
		return &Node{Kind: KindIdent, Name: n.Content(src)}
	case "string":
		return &Node{Kind: KindString, Str: stringContent(n, src)}
	}
	return nil
}

// stringContent returns the unquoted text of a string literal.
func stringContent(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "string_fragment" {
			return c.Content(src)
		}
	}
	// Empty string literals have no fragment child.
	return ""
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}
