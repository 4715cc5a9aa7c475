package hir

import (
	"context"
	"strconv"

	"github.com/jward/sema/internal/syntax"
	"github.com/jward/sema/internal/ty"
)

// ShapeKind classifies a field layout: no fields, positional fields, or
// named fields.
type ShapeKind int

const (
	ShapeUnit ShapeKind = iota
	ShapeTuple
	ShapeRecord
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeTuple:
		return "tuple"
	case ShapeRecord:
		return "record"
	default:
		return "unit"
	}
}

// StructField is a single field of a struct or enum variant: its name and
// resolved type. Tuple fields are named by their zero-based declaration
// index ("0", "1", …) so named and positional lookup are uniform.
type StructField struct {
	Name string
	Type ty.Type
}

// VariantData is the field layout of a struct or of one enum variant.
// Immutable once built; shared by pointer across arbitrarily many readers.
type VariantData struct {
	shape  ShapeKind
	fields []StructField
}

func (v *VariantData) Shape() ShapeKind {
	return v.shape
}

// Fields returns the field list in declaration order. Empty for the unit
// shape. Callers must not mutate the returned slice.
func (v *VariantData) Fields() []StructField {
	return v.fields
}

// FieldType returns the resolved type of the named field. Lookup is a
// linear first-match scan in declaration order: field counts are small,
// and duplicate names (including the sentinel) resolve to the first match.
func (v *VariantData) FieldType(name string) (ty.Type, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return ty.Type{}, false
}

func (v *VariantData) IsRecord() bool { return v.shape == ShapeRecord }
func (v *VariantData) IsTuple() bool  { return v.shape == ShapeTuple }
func (v *VariantData) IsUnit() bool   { return v.shape == ShapeUnit }

// StructData is the descriptor of a struct definition: an optional declared
// name plus one shared field layout.
type StructData struct {
	name        string
	hasName     bool
	variantData *VariantData
}

func (d *StructData) Name() (string, bool) {
	return d.name, d.hasName
}

func (d *StructData) VariantData() *VariantData {
	return d.variantData
}

// EnumVariant pairs a declared variant name (or the sentinel) with its
// field layout.
type EnumVariant struct {
	Name string
	Data *VariantData
}

// EnumData is the descriptor of an enum definition: an optional declared
// name plus one (name, layout) pair per variant in declaration order.
// Variant names need not be unique; malformed source may repeat or omit
// them.
type EnumData struct {
	name     string
	hasName  bool
	variants []EnumVariant
}

func (d *EnumData) Name() (string, bool) {
	return d.name, d.hasName
}

func (d *EnumData) Variants() []EnumVariant {
	return d.variants
}

// Env carries the collaborators a construction needs: the lexical scope,
// the type resolver, and the staleness channel that signals cooperative
// cancellation when the underlying source changes mid-computation.
type Env struct {
	Scope    ty.Scope
	Resolver ty.Resolver
	Stale    <-chan struct{}
}

// checkCanceled is consulted at every type-resolution boundary.
func (e *Env) checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-e.Stale:
		return ErrCanceled
	default:
		return nil
	}
}

// resolve invokes the type resolver once for a declared field's type
// reference. ref may be nil (missing annotation); the resolver degrades
// that to the unknown type rather than failing.
func (e *Env) resolve(ctx context.Context, ref *syntax.TypeRef) (ty.Type, error) {
	if err := e.checkCanceled(ctx); err != nil {
		return ty.Type{}, err
	}
	return e.Resolver.ResolveType(ctx, e.Scope, ref)
}

// NewStructData builds a struct descriptor from its definition syntax.
// Construction is a pure function of (syntax, scope, resolver state):
// identical inputs produce structurally equal descriptors. Cancellation
// mid-construction aborts the whole build; no partial descriptor escapes.
func NewStructData(ctx context.Context, env *Env, def *syntax.StructDef) (*StructData, error) {
	variantData, err := NewVariantData(ctx, env, def.Flavor, def.Fields)
	if err != nil {
		return nil, err
	}
	return &StructData{
		name:        def.Name,
		hasName:     def.HasName,
		variantData: variantData,
	}, nil
}

// NewEnumData builds an enum descriptor. Variants keep declaration order.
// A variant with no parsable name gets the sentinel; an enum with no
// variant list at all yields an empty variant slice.
func NewEnumData(ctx context.Context, env *Env, def *syntax.EnumDef) (*EnumData, error) {
	data := &EnumData{
		name:    def.Name,
		hasName: def.HasName,
	}
	for _, v := range def.Variants {
		name := v.Name
		if !v.HasName {
			name = ErrorName
		}
		variantData, err := NewVariantData(ctx, env, v.Flavor, v.Fields)
		if err != nil {
			return nil, err
		}
		data.variants = append(data.variants, EnumVariant{Name: name, Data: variantData})
	}
	return data, nil
}

// NewVariantData builds one field layout from a declaration flavor and its
// field syntax. Field order exactly matches declaration order; that order
// is semantically significant for tuple indexing.
func NewVariantData(ctx context.Context, env *Env, flavor syntax.Flavor, fields []syntax.FieldDef) (*VariantData, error) {
	switch flavor {
	case syntax.FlavorTuple:
		built := make([]StructField, 0, len(fields))
		for i, fd := range fields {
			t, err := env.resolve(ctx, fd.TypeRef)
			if err != nil {
				return nil, err
			}
			built = append(built, StructField{
				Name: strconv.Itoa(i),
				Type: t,
			})
		}
		return &VariantData{shape: ShapeTuple, fields: built}, nil

	case syntax.FlavorRecord:
		built := make([]StructField, 0, len(fields))
		for _, fd := range fields {
			name := fd.Name
			if !fd.HasName {
				name = ErrorName
			}
			t, err := env.resolve(ctx, fd.TypeRef)
			if err != nil {
				return nil, err
			}
			built = append(built, StructField{Name: name, Type: t})
		}
		return &VariantData{shape: ShapeRecord, fields: built}, nil

	default:
		return &VariantData{shape: ShapeUnit}, nil
	}
}
