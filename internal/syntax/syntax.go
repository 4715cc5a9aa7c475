// Package syntax extracts algebraic data type definitions (structs and
// enums) from Rust source using tree-sitter. It produces plain syntax
// models — names, field flavor, per-field name and type-reference text —
// and deliberately tolerates malformed input: missing names, missing type
// annotations, and absent bodies all map to absent values, never errors.
package syntax

// Flavor is the syntactic form in which a definition declares its fields.
type Flavor int

const (
	// FlavorUnit — no field list at all (`struct Marker;`, `None`).
	FlavorUnit Flavor = iota
	// FlavorTuple — positional fields (`struct Point(i32, i32);`).
	FlavorTuple
	// FlavorRecord — named fields (`struct Point { x: i32, y: i32 }`).
	FlavorRecord
)

func (f Flavor) String() string {
	switch f {
	case FlavorTuple:
		return "tuple"
	case FlavorRecord:
		return "record"
	default:
		return "unit"
	}
}

// TypeRef is the raw source text of a type reference, e.g. "i32" or
// "Vec<Foo>". Resolution to a semantic type happens elsewhere.
type TypeRef struct {
	Text string
}

// FieldDef is one declared field. Name is empty with HasName false for
// tuple fields and for record fields whose identifier failed to parse.
// TypeRef is nil when the source carries no parsable type.
type FieldDef struct {
	Name    string
	HasName bool
	TypeRef *TypeRef
}

// StructDef is the syntax-level model of a struct definition.
type StructDef struct {
	Name    string
	HasName bool
	Flavor  Flavor
	Fields  []FieldDef

	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// VariantDef is one declared enum variant, carrying its own field flavor.
type VariantDef struct {
	Name    string
	HasName bool
	Flavor  Flavor
	Fields  []FieldDef
}

// EnumDef is the syntax-level model of an enum definition. HasVariantList
// distinguishes `enum E {}` (empty list) from a malformed or
// forward-declared enum with no body at all.
type EnumDef struct {
	Name           string
	HasName        bool
	HasVariantList bool
	Variants       []VariantDef

	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// File holds every ADT definition found in one source file, in
// declaration order.
type File struct {
	Structs []StructDef
	Enums   []EnumDef
}
