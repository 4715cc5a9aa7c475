package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sema/internal/syntax"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func parseRust(t *testing.T, src string) *syntax.File {
	t.Helper()
	parsed, err := syntax.ParseFile(context.Background(), []byte(src))
	require.NoError(t, err)
	return parsed
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Migrate())
}

func TestFileRoundtrip(t *testing.T) {
	s := newTestStore(t)

	f := &File{Path: "src/lib.rs", Hash: "abc123", LineCount: 42, LastIndexed: time.Now().UTC()}
	id, err := s.InsertFile(f)
	require.NoError(t, err)
	assert.Equal(t, id, f.ID)

	got, err := s.FileByPath("src/lib.rs")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.Path, got.Path)
	assert.Equal(t, f.Hash, got.Hash)
	assert.Equal(t, f.LineCount, got.LineCount)

	missing, err := s.FileByPath("src/missing.rs")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCommitFile_Roundtrip(t *testing.T) {
	s := newTestStore(t)

	parsed := parseRust(t, `
struct Point {
    x: i32,
    y: i32,
}

enum Shape {
    Empty,
    Circle(f64),
    Rect { w: u32, h: u32 },
}
`)
	f := &File{Path: "src/geo.rs", Hash: "h1", LineCount: 11, LastIndexed: time.Now().UTC()}
	fileID, err := s.CommitFile(f, parsed)
	require.NoError(t, err)

	defs, err := s.DefsByFile(fileID)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	var structDef, enumDef *Def
	for _, d := range defs {
		switch d.Kind {
		case KindStruct:
			structDef = d
		case KindEnum:
			enumDef = d
		}
	}
	require.NotNil(t, structDef)
	require.NotNil(t, enumDef)

	assert.Equal(t, "Point", structDef.Name)
	assert.Equal(t, "record", structDef.Flavor)

	fields, err := s.StructFieldsByDef(structDef.ID)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "x", fields[0].Name)
	assert.Equal(t, "i32", fields[0].TypeRef)
	assert.True(t, fields[0].HasType)
	assert.Nil(t, fields[0].VariantID)

	assert.Equal(t, "Shape", enumDef.Name)
	assert.True(t, enumDef.HasVariantList)

	variants, err := s.VariantsByDef(enumDef.ID)
	require.NoError(t, err)
	require.Len(t, variants, 3)
	assert.Equal(t, "Empty", variants[0].Name)
	assert.Equal(t, "unit", variants[0].Flavor)
	assert.Equal(t, "Circle", variants[1].Name)
	assert.Equal(t, "tuple", variants[1].Flavor)

	rectFields, err := s.FieldsByVariant(variants[2].ID)
	require.NoError(t, err)
	require.Len(t, rectFields, 2)
	assert.Equal(t, "w", rectFields[0].Name)
	assert.Equal(t, "u32", rectFields[0].TypeRef)
	require.NotNil(t, rectFields[0].VariantID)
	assert.Equal(t, variants[2].ID, *rectFields[0].VariantID)
}

func TestCommitFile_VariantOrdinalsPreserveOrder(t *testing.T) {
	s := newTestStore(t)

	parsed := parseRust(t, `enum E { A, B, C }`)
	fileID, err := s.CommitFile(&File{Path: "e.rs"}, parsed)
	require.NoError(t, err)

	defs, err := s.DefsByFile(fileID)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	variants, err := s.VariantsByDef(defs[0].ID)
	require.NoError(t, err)

	var names []string
	for i, v := range variants {
		assert.Equal(t, i, v.Ordinal)
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
}

func TestCommitFile_ReplacesExistingPath(t *testing.T) {
	s := newTestStore(t)

	first, err := s.CommitFile(&File{Path: "r.rs", Hash: "h1"}, parseRust(t, `
struct Old { a: i32 }
enum OldE { X(i32) }
`))
	require.NoError(t, err)

	// Same path again: one transaction swaps the old rows for the new.
	second, err := s.CommitFile(&File{Path: "r.rs", Hash: "h2"}, parseRust(t, `
struct New { b: bool }
`))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "h2", files[0].Hash)

	oldDefs, err := s.DefsByFile(first)
	require.NoError(t, err)
	assert.Empty(t, oldDefs)

	defs, err := s.DefsByFile(second)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "New", defs[0].Name)

	_, ok, err := s.LookupTypeDef("Old", second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteFileData(t *testing.T) {
	s := newTestStore(t)

	parsed := parseRust(t, `
struct Keep { v: i32 }
`)
	keepID, err := s.CommitFile(&File{Path: "keep.rs"}, parsed)
	require.NoError(t, err)

	parsed = parseRust(t, `
struct Gone { v: i32 }
enum GoneE { A(i32) }
`)
	goneID, err := s.CommitFile(&File{Path: "gone.rs"}, parsed)
	require.NoError(t, err)

	require.NoError(t, s.DeleteFileData(goneID))

	f, err := s.FileByPath("gone.rs")
	require.NoError(t, err)
	assert.Nil(t, f)

	defs, err := s.DefsByFile(goneID)
	require.NoError(t, err)
	assert.Empty(t, defs)

	// The other file's data is untouched.
	defs, err = s.DefsByFile(keepID)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Keep", defs[0].Name)
}

func TestDefIDsStableAcrossOtherFileReindex(t *testing.T) {
	s := newTestStore(t)

	fileA, err := s.CommitFile(&File{Path: "a.rs"}, parseRust(t, `struct A { v: i32 }`))
	require.NoError(t, err)
	fileB, err := s.CommitFile(&File{Path: "b.rs"}, parseRust(t, `struct B { v: i32 }`))
	require.NoError(t, err)

	defsA, err := s.DefsByFile(fileA)
	require.NoError(t, err)
	require.Len(t, defsA, 1)
	idA := defsA[0].ID

	// Re-index b.rs: delete and commit again.
	require.NoError(t, s.DeleteFileData(fileB))
	_, err = s.CommitFile(&File{Path: "b.rs"}, parseRust(t, `struct B { v: i64, w: bool }`))
	require.NoError(t, err)

	// A's definition id is unchanged.
	got, err := s.DefByID(idA)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Name)
}

func TestLookupTypeDef_PrefersSameFile(t *testing.T) {
	s := newTestStore(t)

	fileA, err := s.CommitFile(&File{Path: "a.rs"}, parseRust(t, `struct Shared;`))
	require.NoError(t, err)
	fileB, err := s.CommitFile(&File{Path: "b.rs"}, parseRust(t, `struct Shared;`))
	require.NoError(t, err)

	defsB, err := s.DefsByFile(fileB)
	require.NoError(t, err)
	require.Len(t, defsB, 1)

	id, ok, err := s.LookupTypeDef("Shared", fileB)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, defsB[0].ID, id)

	// From an unrelated file, the lowest id wins.
	defsA, err := s.DefsByFile(fileA)
	require.NoError(t, err)
	id, ok, err = s.LookupTypeDef("Shared", 9999)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, defsA[0].ID, id)

	_, ok, err = s.LookupTypeDef("Nowhere", fileA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefsByNameAndKind(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CommitFile(&File{Path: "x.rs"}, parseRust(t, `
struct Foo;
enum Bar { A }
struct Baz;
`))
	require.NoError(t, err)

	byName, err := s.DefsByName("Foo")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, KindStruct, byName[0].Kind)

	structs, err := s.DefsByKind(KindStruct)
	require.NoError(t, err)
	assert.Len(t, structs, 2)

	enums, err := s.DefsByKind(KindEnum)
	require.NoError(t, err)
	require.Len(t, enums, 1)
	assert.Equal(t, "Bar", enums[0].Name)

	all, err := s.Defs()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCommitFile_FieldWithoutType(t *testing.T) {
	s := newTestStore(t)

	// A tuple struct field always has a type; synthesize the missing-type
	// case directly through the insert path.
	fileID, err := s.InsertFile(&File{Path: "m.rs"})
	require.NoError(t, err)
	defID, err := s.InsertDef(&Def{FileID: fileID, Kind: KindStruct, Name: "M", HasName: true, Flavor: "record"})
	require.NoError(t, err)
	_, err = s.InsertField(&Field{DefID: defID, Ordinal: 0, Name: "x", HasName: true})
	require.NoError(t, err)

	fields, err := s.StructFieldsByDef(defID)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.False(t, fields[0].HasType)
	assert.Empty(t, fields[0].TypeRef)
}
