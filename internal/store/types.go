package store

import "time"

// Def kinds.
const (
	KindStruct = "struct"
	KindEnum   = "enum"
)

type File struct {
	ID          int64
	Path        string
	Hash        string
	LineCount   int
	LastIndexed time.Time
}

// Def is one struct or enum definition site. Its rowid is the definition
// identifier the descriptor layer caches by, so it stays stable until the
// defining file itself is re-indexed.
type Def struct {
	ID             int64
	FileID         int64
	Kind           string
	Name           string
	HasName        bool
	Flavor         string // unit | tuple | record (structs only)
	HasVariantList bool   // enums only
	StartLine      int
	StartCol       int
	EndLine        int
	EndCol         int
}

// Variant is one declared enum variant, ordered by Ordinal within its def.
type Variant struct {
	ID      int64
	DefID   int64
	Ordinal int
	Name    string
	HasName bool
	Flavor  string
}

// Field is one declared field. VariantID is nil for struct fields and set
// for enum variant fields. TypeRef holds the raw type-reference text;
// HasType false means the declaration carried no parsable type.
type Field struct {
	ID        int64
	DefID     int64
	VariantID *int64
	Ordinal   int
	Name      string
	HasName   bool
	TypeRef   string
	HasType   bool
}
