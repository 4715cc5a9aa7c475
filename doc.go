// Package sema builds semantic descriptors for Rust algebraic data type
// definitions (structs and enums) on top of an incremental tree-sitter
// index. It turns syntax-level definitions into cached, shared,
// field-and-type-resolved models for downstream tooling: type inference,
// completion, navigation.
//
// # Pipeline
//
// Sema operates in two layers:
//
//  1. Extract: for each source file, parse with tree-sitter, pull out every
//     struct and enum definition (name, field flavor, per-field name and
//     type reference), and persist the rows to SQLite. Files whose content
//     hash is unchanged are skipped.
//
//  2. Describe: on first query for a definition, construct its descriptor —
//     resolving each field's type reference in the definition's scope —
//     memoize it, and share it read-only with every later caller.
//
// # Usage
//
// Create an Engine, index source files, and query descriptors:
//
//	e, err := sema.New("sema.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	err = e.IndexDirectory(ctx, "path/to/crate")
//
//	q := e.Query()
//	st, ok, err := q.StructByName("Point")
//	data, err := st.StructData(ctx, e.DB())
//
// # Cancellation
//
// Descriptor construction is cooperative: whenever indexed source actually
// changes, in-flight descriptor queries abort with [ErrCanceled] instead of
// returning partial results. Callers detect this with [IsCanceled] and
// retry; the next query recomputes from the new source. Malformed source is
// never an error — missing names degrade to a sentinel name and
// unresolvable types to the unknown type, so tooling keeps working on code
// that is mid-edit.
//
// # Scripts
//
// Downstream analyses can run as Risor scripts via [Engine.RunScript],
// which exposes descriptor queries (structs, enums, struct_data, enum_data,
// field_type) as host functions.
package sema
