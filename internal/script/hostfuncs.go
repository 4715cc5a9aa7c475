package script

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"

	"github.com/jward/sema/internal/hir"
	"github.com/jward/sema/internal/store"
)

// makeDefsFn creates the "defs" host function.
//
// defs() → []map{name, kind, file_id}
func (r *Runtime) makeDefsFn() *object.Builtin {
	return object.NewBuiltin("defs", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("defs", 0, len(args))
		}
		defs, err := r.store.Defs()
		if err != nil {
			return object.Errorf("defs: %v", err)
		}
		items := make([]object.Object, 0, len(defs))
		for _, d := range defs {
			items = append(items, object.NewMap(map[string]object.Object{
				"name":    object.NewString(d.Name),
				"kind":    object.NewString(d.Kind),
				"file_id": object.NewInt(d.FileID),
			}))
		}
		return object.NewList(items)
	})
}

// makeStructDataFn creates the "struct_data" host function.
//
// struct_data(name) → map{name, shape, fields: [map{name, type}]} or nil
func (r *Runtime) makeStructDataFn() *object.Builtin {
	return object.NewBuiltin("struct_data", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("struct_data", 1, len(args))
		}
		name, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("struct_data: name must be a string, got %s", args[0].Type())
		}

		id, found, err := r.defByName(name.Value(), store.KindStruct)
		if err != nil {
			return object.Errorf("struct_data: %v", err)
		}
		if !found {
			return object.Nil
		}

		data, err := r.db.StructData(ctx, id)
		if err != nil {
			return object.Errorf("struct_data: %v", err)
		}
		declared, _ := data.Name()
		vd := data.VariantData()
		return object.NewMap(map[string]object.Object{
			"name":   object.NewString(declared),
			"shape":  object.NewString(vd.Shape().String()),
			"fields": fieldList(vd),
		})
	})
}

// makeEnumDataFn creates the "enum_data" host function.
//
// enum_data(name) → map{name, variants: [map{name, shape, fields}]} or nil
func (r *Runtime) makeEnumDataFn() *object.Builtin {
	return object.NewBuiltin("enum_data", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("enum_data", 1, len(args))
		}
		name, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("enum_data: name must be a string, got %s", args[0].Type())
		}

		id, found, err := r.defByName(name.Value(), store.KindEnum)
		if err != nil {
			return object.Errorf("enum_data: %v", err)
		}
		if !found {
			return object.Nil
		}

		data, err := r.db.EnumData(ctx, id)
		if err != nil {
			return object.Errorf("enum_data: %v", err)
		}
		declared, _ := data.Name()
		variants := make([]object.Object, 0, len(data.Variants()))
		for _, v := range data.Variants() {
			variants = append(variants, object.NewMap(map[string]object.Object{
				"name":   object.NewString(v.Name),
				"shape":  object.NewString(v.Data.Shape().String()),
				"fields": fieldList(v.Data),
			}))
		}
		return object.NewMap(map[string]object.Object{
			"name":     object.NewString(declared),
			"variants": object.NewList(variants),
		})
	})
}

// makeFieldTypeFn creates the "field_type" host function.
//
// field_type(struct_name, field_name) → string or nil
//
// Lookup follows descriptor semantics: first match in declaration order.
func (r *Runtime) makeFieldTypeFn() *object.Builtin {
	return object.NewBuiltin("field_type", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("field_type", 2, len(args))
		}
		typeName, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("field_type: type name must be a string, got %s", args[0].Type())
		}
		fieldName, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("field_type: field name must be a string, got %s", args[1].Type())
		}

		id, found, err := r.defByName(typeName.Value(), store.KindStruct)
		if err != nil {
			return object.Errorf("field_type: %v", err)
		}
		if !found {
			return object.Nil
		}

		data, err := r.db.StructData(ctx, id)
		if err != nil {
			return object.Errorf("field_type: %v", err)
		}
		t, ok := data.VariantData().FieldType(fieldName.Value())
		if !ok {
			return object.Nil
		}
		return object.NewString(t.String())
	})
}

// defByName finds the first indexed definition with the given name and kind.
func (r *Runtime) defByName(name, kind string) (hir.DefID, bool, error) {
	defs, err := r.store.DefsByName(name)
	if err != nil {
		return 0, false, fmt.Errorf("def by name: %w", err)
	}
	for _, d := range defs {
		if d.Kind == kind {
			return hir.DefID(d.ID), true, nil
		}
	}
	return 0, false, nil
}

func fieldList(vd *hir.VariantData) *object.List {
	fields := make([]object.Object, 0, len(vd.Fields()))
	for _, f := range vd.Fields() {
		fields = append(fields, object.NewMap(map[string]object.Object{
			"name": object.NewString(f.Name),
			"type": object.NewString(f.Type.String()),
		}))
	}
	return object.NewList(fields)
}
