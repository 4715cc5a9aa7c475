// Package ty defines the semantic type values attached to struct and enum
// fields, and the resolver that turns type-reference syntax into them.
// Resolution is total: malformed or unresolvable input degrades to the
// Unknown type, never an error. The only failure a resolver may report is
// cooperative cancellation.
package ty

// DefID identifies a definition site. It is the rowid of the definition's
// row in the store, so it is stable until the defining file itself is
// re-indexed, and unaffected by edits to other files. Used as the
// descriptor cache key.
type DefID int64

// Kind classifies a semantic type value.
type Kind int

const (
	Unknown Kind = iota
	Unit
	Bool
	Char
	Str
	Int
	Uint
	Float
	Named
)

// Type is a resolved semantic type. Cheap to copy; compared by value.
// Name carries the builtin spelling ("i32", "bool") or the named type's
// identifier. Def is the target definition for Named types, 0 otherwise.
type Type struct {
	Kind Kind
	Name string
	Def  DefID
}

// UnknownType is the degraded value for absent or unresolvable references.
func UnknownType() Type {
	return Type{Kind: Unknown}
}

func (t Type) IsUnknown() bool { return t.Kind == Unknown }

func (t Type) String() string {
	switch t.Kind {
	case Unknown:
		return "{unknown}"
	case Unit:
		return "()"
	default:
		return t.Name
	}
}

// Scope is the lexical context a type reference resolves in. LookupType
// returns the definition a bare type name refers to, if any.
type Scope interface {
	LookupType(name string) (DefID, bool)
}

// EmptyScope resolves nothing. Useful as a degraded default and in tests.
type EmptyScope struct{}

func (EmptyScope) LookupType(string) (DefID, bool) { return 0, false }
