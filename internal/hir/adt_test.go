package hir

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sema/internal/syntax"
	"github.com/jward/sema/internal/ty"
)

// mapScope serves a fixed name → DefID table.
type mapScope map[string]ty.DefID

func (m mapScope) LookupType(name string) (ty.DefID, bool) {
	id, ok := m[name]
	return id, ok
}

func testEnv() *Env {
	return &Env{
		Scope:    mapScope{},
		Resolver: ty.ScopeResolver{},
	}
}

func typeRef(text string) *syntax.TypeRef {
	return &syntax.TypeRef{Text: text}
}

func namedField(name, typeText string) syntax.FieldDef {
	return syntax.FieldDef{Name: name, HasName: true, TypeRef: typeRef(typeText)}
}

func TestNewStructData_NamedFields(t *testing.T) {
	def := &syntax.StructDef{
		Name:    "Point",
		HasName: true,
		Flavor:  syntax.FlavorRecord,
		Fields: []syntax.FieldDef{
			namedField("x", "i32"),
			namedField("y", "i32"),
		},
	}

	data, err := NewStructData(context.Background(), testEnv(), def)
	require.NoError(t, err)

	name, ok := data.Name()
	require.True(t, ok)
	assert.Equal(t, "Point", name)

	vd := data.VariantData()
	require.True(t, vd.IsRecord())
	require.Len(t, vd.Fields(), 2)
	assert.Equal(t, StructField{Name: "x", Type: ty.Type{Kind: ty.Int, Name: "i32"}}, vd.Fields()[0])
	assert.Equal(t, StructField{Name: "y", Type: ty.Type{Kind: ty.Int, Name: "i32"}}, vd.Fields()[1])
}

func TestNewStructData_AnonymousStruct(t *testing.T) {
	data, err := NewStructData(context.Background(), testEnv(), &syntax.StructDef{})
	require.NoError(t, err)

	_, ok := data.Name()
	assert.False(t, ok)
	assert.True(t, data.VariantData().IsUnit())
}

func TestNewVariantData_TupleFieldNames(t *testing.T) {
	fields := []syntax.FieldDef{
		{TypeRef: typeRef("i32")},
		{TypeRef: typeRef("bool")},
		{TypeRef: typeRef("f64")},
	}

	vd, err := NewVariantData(context.Background(), testEnv(), syntax.FlavorTuple, fields)
	require.NoError(t, err)
	require.True(t, vd.IsTuple())

	var names []string
	for _, f := range vd.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"0", "1", "2"}, names)

	// Positional lookup is uniform with named lookup.
	typ, ok := vd.FieldType("1")
	require.True(t, ok)
	assert.Equal(t, ty.Type{Kind: ty.Bool, Name: "bool"}, typ)
}

func TestNewVariantData_SentinelName(t *testing.T) {
	fields := []syntax.FieldDef{
		{TypeRef: typeRef("i32")}, // identifier failed to parse
		namedField("ok", "bool"),
	}

	vd, err := NewVariantData(context.Background(), testEnv(), syntax.FlavorRecord, fields)
	require.NoError(t, err)
	require.Len(t, vd.Fields(), 2)
	assert.Equal(t, ErrorName, vd.Fields()[0].Name)

	typ, ok := vd.FieldType(ErrorName)
	require.True(t, ok)
	assert.Equal(t, ty.Type{Kind: ty.Int, Name: "i32"}, typ)
}

func TestNewVariantData_SentinelCollisionFirstMatchWins(t *testing.T) {
	fields := []syntax.FieldDef{
		{TypeRef: typeRef("i32")},
		{TypeRef: typeRef("bool")},
	}

	vd, err := NewVariantData(context.Background(), testEnv(), syntax.FlavorRecord, fields)
	require.NoError(t, err)

	// Both fields carry the sentinel; lookup resolves to the first in
	// declaration order, consistently.
	for i := 0; i < 3; i++ {
		typ, ok := vd.FieldType(ErrorName)
		require.True(t, ok)
		assert.Equal(t, ty.Type{Kind: ty.Int, Name: "i32"}, typ)
	}
}

func TestNewVariantData_MissingTypeIsUnknown(t *testing.T) {
	fields := []syntax.FieldDef{
		{Name: "x", HasName: true}, // no type annotation
	}

	vd, err := NewVariantData(context.Background(), testEnv(), syntax.FlavorRecord, fields)
	require.NoError(t, err)

	typ, ok := vd.FieldType("x")
	require.True(t, ok)
	assert.True(t, typ.IsUnknown())
}

func TestNewVariantData_Unit(t *testing.T) {
	vd, err := NewVariantData(context.Background(), testEnv(), syntax.FlavorUnit, nil)
	require.NoError(t, err)

	assert.True(t, vd.IsUnit())
	assert.False(t, vd.IsRecord())
	assert.False(t, vd.IsTuple())
	assert.Empty(t, vd.Fields())

	_, ok := vd.FieldType("anything")
	assert.False(t, ok)
	_, ok = vd.FieldType("")
	assert.False(t, ok)
}

func TestNewEnumData_OrderPreserved(t *testing.T) {
	def := &syntax.EnumDef{
		Name:           "Shape",
		HasName:        true,
		HasVariantList: true,
		Variants: []syntax.VariantDef{
			{Name: "A", HasName: true, Flavor: syntax.FlavorRecord, Fields: []syntax.FieldDef{namedField("w", "u32"), namedField("h", "u32")}},
			{Name: "B", HasName: true},
			{Name: "C", HasName: true, Flavor: syntax.FlavorTuple, Fields: []syntax.FieldDef{{TypeRef: typeRef("f64")}}},
		},
	}

	data, err := NewEnumData(context.Background(), testEnv(), def)
	require.NoError(t, err)

	var names []string
	for _, v := range data.Variants() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
}

func TestNewEnumData_MissingVariantListIsEmpty(t *testing.T) {
	data, err := NewEnumData(context.Background(), testEnv(), &syntax.EnumDef{
		Name:    "Forward",
		HasName: true,
	})
	require.NoError(t, err)
	assert.Empty(t, data.Variants())
}

func TestNewEnumData_SentinelVariantName(t *testing.T) {
	data, err := NewEnumData(context.Background(), testEnv(), &syntax.EnumDef{
		HasVariantList: true,
		Variants: []syntax.VariantDef{
			{}, // name failed to parse
			{Name: "Some", HasName: true, Flavor: syntax.FlavorTuple, Fields: []syntax.FieldDef{{TypeRef: typeRef("i64")}}},
		},
	})
	require.NoError(t, err)

	require.Len(t, data.Variants(), 2)
	assert.Equal(t, ErrorName, data.Variants()[0].Name)
	assert.Equal(t, "Some", data.Variants()[1].Name)
}

func TestNewEnumData_MixedShapes(t *testing.T) {
	def := &syntax.EnumDef{
		Name:           "Value",
		HasName:        true,
		HasVariantList: true,
		Variants: []syntax.VariantDef{
			{Name: "Empty", HasName: true},
			{Name: "Num", HasName: true, Flavor: syntax.FlavorTuple, Fields: []syntax.FieldDef{{TypeRef: typeRef("i32")}}},
			{Name: "Flag", HasName: true, Flavor: syntax.FlavorRecord, Fields: []syntax.FieldDef{namedField("z", "bool")}},
		},
	}

	data, err := NewEnumData(context.Background(), testEnv(), def)
	require.NoError(t, err)

	variants := data.Variants()
	require.Len(t, variants, 3)

	assert.True(t, variants[0].Data.IsUnit())
	assert.Empty(t, variants[0].Data.Fields())

	require.True(t, variants[1].Data.IsTuple())
	assert.Equal(t, []StructField{{Name: "0", Type: ty.Type{Kind: ty.Int, Name: "i32"}}}, variants[1].Data.Fields())

	require.True(t, variants[2].Data.IsRecord())
	assert.Equal(t, []StructField{{Name: "z", Type: ty.Type{Kind: ty.Bool, Name: "bool"}}}, variants[2].Data.Fields())
}

func TestConstruction_Idempotent(t *testing.T) {
	def := &syntax.StructDef{
		Name:    "Pair",
		HasName: true,
		Flavor:  syntax.FlavorTuple,
		Fields:  []syntax.FieldDef{{TypeRef: typeRef("i32")}, {TypeRef: typeRef("bool")}},
	}

	a, err := NewStructData(context.Background(), testEnv(), def)
	require.NoError(t, err)
	b, err := NewStructData(context.Background(), testEnv(), def)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestConstruction_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	def := &syntax.StructDef{
		Name:    "P",
		HasName: true,
		Flavor:  syntax.FlavorRecord,
		Fields:  []syntax.FieldDef{namedField("x", "i32")},
	}

	_, err := NewStructData(ctx, testEnv(), def)
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
}

func TestConstruction_UnitNeedsNoResolver(t *testing.T) {
	// A unit shape performs no resolution, so a canceled-free env with a
	// nil resolver must still succeed.
	env := &Env{Scope: mapScope{}}
	vd, err := NewVariantData(context.Background(), env, syntax.FlavorUnit, nil)
	require.NoError(t, err)
	assert.True(t, vd.IsUnit())
}
