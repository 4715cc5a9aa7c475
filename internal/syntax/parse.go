package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// ParseFile parses Rust source and extracts every struct and enum
// definition, in declaration order, including definitions nested inside
// modules, functions, and impl blocks. Parsing is error-tolerant:
// tree-sitter produces a best-effort tree for broken source, and the
// extraction maps missing pieces to absent values. The only error ParseFile
// returns is a canceled context.
func ParseFile(ctx context.Context, src []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(rust.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: parse: %w", err)
	}
	defer tree.Close()

	f := &File{}
	collectDefs(tree.RootNode(), src, f)
	return f, nil
}

// collectDefs walks the tree depth-first, appending definitions in source
// order. Depth-first pre-order matches declaration order for sibling defs.
func collectDefs(node *sitter.Node, src []byte, f *File) {
	switch node.Type() {
	case "struct_item":
		f.Structs = append(f.Structs, extractStruct(node, src))
	case "enum_item":
		f.Enums = append(f.Enums, extractEnum(node, src))
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectDefs(node.NamedChild(i), src, f)
	}
}

func extractStruct(node *sitter.Node, src []byte) StructDef {
	def := StructDef{}
	def.StartLine, def.StartCol, def.EndLine, def.EndCol = span(node)

	if name := node.ChildByFieldName("name"); name != nil {
		def.Name = name.Content(src)
		def.HasName = true
	}

	def.Flavor, def.Fields = extractBody(node.ChildByFieldName("body"), src)
	return def
}

func extractEnum(node *sitter.Node, src []byte) EnumDef {
	def := EnumDef{}
	def.StartLine, def.StartCol, def.EndLine, def.EndCol = span(node)

	if name := node.ChildByFieldName("name"); name != nil {
		def.Name = name.Content(src)
		def.HasName = true
	}

	body := node.ChildByFieldName("body")
	if body == nil || body.Type() != "enum_variant_list" {
		// Malformed or forward-declared enum: no variant list.
		return def
	}
	def.HasVariantList = true

	for i := 0; i < int(body.NamedChildCount()); i++ {
		v := body.NamedChild(i)
		if v.Type() != "enum_variant" {
			continue // attributes, comments
		}
		variant := VariantDef{}
		if name := v.ChildByFieldName("name"); name != nil {
			variant.Name = name.Content(src)
			variant.HasName = true
		}
		variant.Flavor, variant.Fields = extractBody(v.ChildByFieldName("body"), src)
		def.Variants = append(def.Variants, variant)
	}
	return def
}

// extractBody classifies a definition body node into a flavor and extracts
// its fields in declaration order. A nil body is the unit flavor.
func extractBody(body *sitter.Node, src []byte) (Flavor, []FieldDef) {
	if body == nil {
		return FlavorUnit, nil
	}
	switch body.Type() {
	case "field_declaration_list":
		return FlavorRecord, recordFields(body, src)
	case "ordered_field_declaration_list":
		return FlavorTuple, tupleFields(body, src)
	default:
		return FlavorUnit, nil
	}
}

// recordFields extracts named fields from a field_declaration_list.
// A field whose identifier failed to parse keeps HasName false; a field
// with no type annotation keeps TypeRef nil.
func recordFields(list *sitter.Node, src []byte) []FieldDef {
	var fields []FieldDef
	for i := 0; i < int(list.NamedChildCount()); i++ {
		decl := list.NamedChild(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		fd := FieldDef{}
		if name := decl.ChildByFieldName("name"); name != nil {
			fd.Name = name.Content(src)
			fd.HasName = true
		}
		if typ := decl.ChildByFieldName("type"); typ != nil {
			fd.TypeRef = &TypeRef{Text: typ.Content(src)}
		}
		fields = append(fields, fd)
	}
	return fields
}

// tupleFields extracts positional fields from an
// ordered_field_declaration_list. The named children of the list are the
// type nodes themselves, interleaved with visibility modifiers and
// attributes, which are skipped.
func tupleFields(list *sitter.Node, src []byte) []FieldDef {
	var fields []FieldDef
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		switch child.Type() {
		case "visibility_modifier", "attribute_item", "line_comment", "block_comment":
			continue
		}
		fields = append(fields, FieldDef{
			TypeRef: &TypeRef{Text: child.Content(src)},
		})
	}
	return fields
}

func span(node *sitter.Node) (startLine, startCol, endLine, endCol int) {
	start := node.StartPoint()
	end := node.EndPoint()
	return int(start.Row), int(start.Column), int(end.Row), int(end.Column)
}
