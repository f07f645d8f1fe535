// Package gen turns a loaded schema and function set into Go source. It is
// the final stage of the pipeline: naming, union classification and code
// emission all live here.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	Source documents (schema.ts, convex/*.ts)
//	        ↓
//	   syntax.File (parsed declaration trees)
//	        ↓
//	   load.Schema + load.Function (extracted declarations)
//	        ↓
//	   descriptor.Descriptor (validator expression trees)
//	        ↓
//	   Generated bindings (one Go file)
//
// # Key Types
//
//   - Config: everything one generation run needs
//   - typeBuilder: lowers descriptors to Go types, owns name allocation
//   - unionInfo: classification of a union into its emission shape
//
// Everything is rendered in memory first. The output file is replaced only
// when rendering and formatting both succeeded, so a failing run never
// leaves a half-written file behind.
package gen
