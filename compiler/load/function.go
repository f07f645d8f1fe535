package load

import (
	"github.com/syssam/convexgen/compiler/descriptor"
	"github.com/syssam/convexgen/compiler/syntax"
)

// FunctionKind identifies the constructor a remote function was declared
// with. The kind decides both the invocation route and whether the
// generated client gets a subscription companion.
type FunctionKind string

const (
	KindQuery            FunctionKind = "query"
	KindMutation         FunctionKind = "mutation"
	KindAction           FunctionKind = "action"
	KindInternalQuery    FunctionKind = "internalQuery"
	KindInternalMutation FunctionKind = "internalMutation"
	KindInternalAction   FunctionKind = "internalAction"
	KindHTTPAction       FunctionKind = "httpAction"
)

// IsQuery reports whether the function is invoked over the query route and
// therefore supports subscriptions.
func (k FunctionKind) IsQuery() bool {
	return k == KindQuery || k == KindInternalQuery
}

func functionKind(name string) (FunctionKind, bool) {
	switch k := FunctionKind(name); k {
	case KindQuery, KindMutation, KindAction,
		KindInternalQuery, KindInternalMutation, KindInternalAction,
		KindHTTPAction:
		return k, true
	}
	return "", false
}

// Function is one loaded remote function declaration.
type Function struct {
	// File is the base name of the declaring file, e.g. "messages".
	// Combined with Name it forms the invocation path "messages:send".
	File string       `json:"file,omitempty"`
	Name string       `json:"name,omitempty"`
	Kind FunctionKind `json:"kind,omitempty"`

	// Args is an object descriptor of the declared arguments. It is an
	// any descriptor when the declaration references a validator that
	// cannot be resolved, and an empty object when no args are declared.
	Args *descriptor.Descriptor `json:"args,omitempty"`

	// Returns is nil when the declaration carries no returns validator.
	Returns *descriptor.Descriptor `json:"returns,omitempty"`
}

// Path returns the invocation path of the function, "file:name".
func (f *Function) Path() string {
	return f.File + ":" + f.Name
}

// ExtractFunctions scans the exported declarations of a file for remote
// function constructors. Exports that are not recognized constructors are
// skipped without error, so helper exports can live next to functions.
// HTTP actions are recognized and skipped: they are routed by URL, not by
// function path, and carry no validators to generate from.
func ExtractFunctions(file *syntax.File, bindings Bindings) ([]*Function, error) {
	var fns []*Function
	for _, d := range file.Decls {
		if !d.Exported || d.Name == "" || d.Init == nil {
			continue
		}
		if d.Init.Kind != syntax.KindCall {
			continue
		}
		callee, ok := d.Init.CalleeName()
		if !ok {
			continue
		}
		kind, ok := functionKind(callee)
		if !ok || kind == KindHTTPAction {
			continue
		}
		fn, err := extractFunction(file, d.Name, kind, d.Init, bindings)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

func extractFunction(file *syntax.File, name string, kind FunctionKind, call *syntax.Node, bindings Bindings) (*Function, error) {
	fn := &Function{
		File: file.Name,
		Name: name,
		Kind: kind,
		Args: descriptor.Object(),
	}
	if len(call.Args) == 0 || call.Args[0] == nil {
		return nil, &FunctionError{Path: file.Path, Function: name, Message: "constructor requires a configuration object"}
	}
	config := call.Args[0]
	if config.Kind != syntax.KindObject {
		return nil, &FunctionError{Path: file.Path, Function: name, Message: "configuration must be an object literal"}
	}
	for _, prop := range config.Props {
		pname, ok := prop.KeyName()
		if !ok {
			continue
		}
		switch pname {
		case "args":
			args, err := extractArgs(file, name, prop.Value, bindings)
			if err != nil {
				return nil, err
			}
			fn.Args = args
		case "returns":
			ret, err := extractReturns(name, prop.Value, bindings)
			if err != nil {
				return nil, err
			}
			fn.Returns = ret
		}
	}
	return fn, nil
}

// extractArgs lowers the args validator map. An unresolved validator
// reference degrades to any instead of failing the whole run: for the map
// as a whole when the args node itself is an identifier, and for a single
// argument when only that argument's validator is unresolved.
func extractArgs(file *syntax.File, fnName string, node *syntax.Node, bindings Bindings) (*descriptor.Descriptor, error) {
	resolved, err := bindings.Resolve(node)
	if err != nil {
		return nil, err
	}
	if resolved.Kind == syntax.KindIdent {
		return descriptor.Any(), nil
	}
	if resolved.Kind != syntax.KindObject {
		return nil, &FunctionError{Path: file.Path, Function: fnName, Message: "args must be an object literal"}
	}
	props := make([]descriptor.Prop, 0, len(resolved.Props))
	for _, prop := range resolved.Props {
		pname, ok := prop.KeyName()
		if !ok {
			return nil, &FunctionError{Path: file.Path, Function: fnName, Message: "invalid argument name"}
		}
		if prop.Value != nil && prop.Value.Kind == syntax.KindIdent {
			props = append(props, descriptor.Prop{Name: pname, Type: descriptor.Any()})
			continue
		}
		ctx := descriptor.NewContext(fnName + "." + pname)
		typ, err := descriptor.Build(prop.Value, ctx)
		if err != nil {
			return nil, err
		}
		props = append(props, descriptor.Prop{Name: pname, Type: typ})
	}
	return descriptor.Object(props...), nil
}

func extractReturns(fnName string, node *syntax.Node, bindings Bindings) (*descriptor.Descriptor, error) {
	resolved, err := bindings.Resolve(node)
	if err != nil {
		return nil, err
	}
	if resolved.Kind == syntax.KindIdent {
		return descriptor.Any(), nil
	}
	return descriptor.Build(resolved, descriptor.NewContext(fnName+".returns"))
}
