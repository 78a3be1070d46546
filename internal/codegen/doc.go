// Package codegen emits typed Go views over the runtime classes of a namespace.
//
// Generation uses text/template and golang.org/x/tools/imports for formatting.
// Every generated type wraps *record.Record and adds:
//   - an Args struct and a constructor bound to the runtime class
//   - typed accessors and setters per field
//   - keyed access methods for collections
//
// classes.go resolves the runtime classes from a build.TypeMap, so generated
// views and records created by the engine share one class per data type.
package codegen
