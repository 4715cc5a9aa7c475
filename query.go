package sema

import (
	"context"
	"fmt"

	"github.com/jward/sema/internal/hir"
	"github.com/jward/sema/internal/store"
)

// QueryBuilder is the consumer-facing query API: it finds definitions in
// the store and hands out descriptor handles backed by the memoizing
// query database.
type QueryBuilder struct {
	store *store.Store
	db    *hir.QueryDB
}

// NewQueryBuilder wraps an existing Store and descriptor DB. Most callers
// use Engine.Query instead.
func NewQueryBuilder(s *store.Store, db *hir.QueryDB) *QueryBuilder {
	return &QueryBuilder{store: s, db: db}
}

// StructByName returns a handle for the first indexed struct with the given
// declared name. Returns ok=false when no such struct is indexed.
func (q *QueryBuilder) StructByName(name string) (hir.Struct, bool, error) {
	defs, err := q.store.DefsByName(name)
	if err != nil {
		return hir.Struct{}, false, fmt.Errorf("struct by name: %w", err)
	}
	for _, d := range defs {
		if d.Kind == store.KindStruct {
			return hir.NewStruct(hir.DefID(d.ID)), true, nil
		}
	}
	return hir.Struct{}, false, nil
}

// EnumByName returns a handle for the first indexed enum with the given
// declared name. Returns ok=false when no such enum is indexed.
func (q *QueryBuilder) EnumByName(name string) (hir.Enum, bool, error) {
	defs, err := q.store.DefsByName(name)
	if err != nil {
		return hir.Enum{}, false, fmt.Errorf("enum by name: %w", err)
	}
	for _, d := range defs {
		if d.Kind == store.KindEnum {
			return hir.NewEnum(hir.DefID(d.ID)), true, nil
		}
	}
	return hir.Enum{}, false, nil
}

// Structs returns handles for every indexed struct, ordered by name.
func (q *QueryBuilder) Structs() ([]hir.Struct, error) {
	defs, err := q.store.DefsByKind(store.KindStruct)
	if err != nil {
		return nil, fmt.Errorf("list structs: %w", err)
	}
	out := make([]hir.Struct, 0, len(defs))
	for _, d := range defs {
		out = append(out, hir.NewStruct(hir.DefID(d.ID)))
	}
	return out, nil
}

// Enums returns handles for every indexed enum, ordered by name.
func (q *QueryBuilder) Enums() ([]hir.Enum, error) {
	defs, err := q.store.DefsByKind(store.KindEnum)
	if err != nil {
		return nil, fmt.Errorf("list enums: %w", err)
	}
	out := make([]hir.Enum, 0, len(defs))
	for _, d := range defs {
		out = append(out, hir.NewEnum(hir.DefID(d.ID)))
	}
	return out, nil
}

// Defs returns raw definition rows, optionally filtered by kind
// ("struct" or "enum"; empty means all). Ordered by name.
func (q *QueryBuilder) Defs(kind string) ([]*store.Def, error) {
	if kind == "" {
		return q.store.Defs()
	}
	return q.store.DefsByKind(kind)
}

// DefsByFile returns the definition rows extracted from one file, in
// declaration order.
func (q *QueryBuilder) DefsByFile(path string) ([]*store.Def, error) {
	f, err := q.store.FileByPath(path)
	if err != nil {
		return nil, fmt.Errorf("defs by file: %w", err)
	}
	if f == nil {
		return nil, nil
	}
	return q.store.DefsByFile(f.ID)
}

// TypeDescription is a renderable view of one descriptor, used by the CLI
// and the script runtime.
type TypeDescription struct {
	Name     string               `json:"name,omitempty"`
	Kind     string               `json:"kind"`
	Shape    string               `json:"shape,omitempty"`
	Fields   []FieldDescription   `json:"fields,omitempty"`
	Variants []VariantDescription `json:"variants,omitempty"`
}

type FieldDescription struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type VariantDescription struct {
	Name   string             `json:"name"`
	Shape  string             `json:"shape"`
	Fields []FieldDescription `json:"fields,omitempty"`
}

// Describe builds a TypeDescription for the named struct or enum. Structs
// shadow enums when both share a name. Returns nil when the name is not
// indexed. Propagates cancellation from descriptor construction.
func (q *QueryBuilder) Describe(ctx context.Context, name string) (*TypeDescription, error) {
	if st, ok, err := q.StructByName(name); err != nil {
		return nil, err
	} else if ok {
		data, err := st.StructData(ctx, q.db)
		if err != nil {
			return nil, err
		}
		return describeStruct(data), nil
	}

	en, ok, err := q.EnumByName(name)
	if err != nil || !ok {
		return nil, err
	}
	data, err := en.EnumData(ctx, q.db)
	if err != nil {
		return nil, err
	}
	return describeEnum(data), nil
}

func describeStruct(data *hir.StructData) *TypeDescription {
	name, _ := data.Name()
	vd := data.VariantData()
	return &TypeDescription{
		Name:   name,
		Kind:   store.KindStruct,
		Shape:  vd.Shape().String(),
		Fields: describeFields(vd),
	}
}

func describeEnum(data *hir.EnumData) *TypeDescription {
	name, _ := data.Name()
	desc := &TypeDescription{
		Name: name,
		Kind: store.KindEnum,
	}
	for _, v := range data.Variants() {
		desc.Variants = append(desc.Variants, VariantDescription{
			Name:   v.Name,
			Shape:  v.Data.Shape().String(),
			Fields: describeFields(v.Data),
		})
	}
	return desc
}

func describeFields(vd *hir.VariantData) []FieldDescription {
	var out []FieldDescription
	for _, f := range vd.Fields() {
		out = append(out, FieldDescription{Name: f.Name, Type: f.Type.String()})
	}
	return out
}
