package ty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sema/internal/syntax"
)

type tableScope map[string]DefID

func (s tableScope) LookupType(name string) (DefID, bool) {
	id, ok := s[name]
	return id, ok
}

func resolve(t *testing.T, scope Scope, text string) Type {
	t.Helper()
	typ, err := ScopeResolver{}.ResolveType(context.Background(), scope, &syntax.TypeRef{Text: text})
	require.NoError(t, err)
	return typ
}

func TestResolveType_Builtins(t *testing.T) {
	cases := map[string]Kind{
		"bool": Bool, "char": Char, "str": Str,
		"i8": Int, "i16": Int, "i32": Int, "i64": Int, "i128": Int, "isize": Int,
		"u8": Uint, "u16": Uint, "u32": Uint, "u64": Uint, "u128": Uint, "usize": Uint,
		"f32": Float, "f64": Float,
	}
	for text, kind := range cases {
		typ := resolve(t, EmptyScope{}, text)
		assert.Equal(t, Type{Kind: kind, Name: text}, typ, text)
	}
}

func TestResolveType_Unit(t *testing.T) {
	typ := resolve(t, EmptyScope{}, "()")
	assert.Equal(t, Type{Kind: Unit}, typ)
	assert.Equal(t, "()", typ.String())
}

func TestResolveType_NamedThroughScope(t *testing.T) {
	scope := tableScope{"Point": 7}

	typ := resolve(t, scope, "Point")
	assert.Equal(t, Type{Kind: Named, Name: "Point", Def: 7}, typ)

	// Not in scope degrades to Unknown rather than failing.
	assert.True(t, resolve(t, scope, "Missing").IsUnknown())
}

func TestResolveType_References(t *testing.T) {
	scope := tableScope{"Foo": 3}

	assert.Equal(t, Type{Kind: Named, Name: "Foo", Def: 3}, resolve(t, scope, "&Foo"))
	assert.Equal(t, Type{Kind: Named, Name: "Foo", Def: 3}, resolve(t, scope, "&mut Foo"))
	assert.Equal(t, Type{Kind: Named, Name: "Foo", Def: 3}, resolve(t, scope, "&'a Foo"))
	assert.Equal(t, Type{Kind: Named, Name: "Foo", Def: 3}, resolve(t, scope, "&&Foo"))
	assert.Equal(t, Type{Kind: Str, Name: "str"}, resolve(t, scope, "&str"))
}

func TestResolveType_PathsAndGenerics(t *testing.T) {
	scope := tableScope{"Inner": 5, "Vec": 9}

	// Path types resolve by their final segment.
	assert.Equal(t, Type{Kind: Named, Name: "Inner", Def: 5}, resolve(t, scope, "crate::module::Inner"))
	// Generic arguments are stripped.
	assert.Equal(t, Type{Kind: Named, Name: "Vec", Def: 9}, resolve(t, scope, "Vec<Inner>"))
	assert.Equal(t, Type{Kind: Named, Name: "Vec", Def: 9}, resolve(t, scope, "std::vec::Vec<String>"))
}

func TestResolveType_MalformedDegradesToUnknown(t *testing.T) {
	scope := tableScope{"Foo": 3}

	for _, text := range []string{"", "   ", "&", "&'a", "(i32, bool)", "[u8; 4]", "*const Foo", "123"} {
		typ := resolve(t, scope, text)
		assert.True(t, typ.IsUnknown(), "%q", text)
	}
}

func TestResolveType_NilRefIsUnknown(t *testing.T) {
	typ, err := ScopeResolver{}.ResolveType(context.Background(), EmptyScope{}, nil)
	require.NoError(t, err)
	assert.True(t, typ.IsUnknown())
	assert.Equal(t, "{unknown}", typ.String())
}

func TestResolveType_NilScope(t *testing.T) {
	// Builtins need no scope; named types degrade to Unknown.
	assert.Equal(t, Type{Kind: Int, Name: "i32"}, resolve(t, nil, "i32"))
	assert.True(t, resolve(t, nil, "Foo").IsUnknown())
}

func TestResolveType_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScopeResolver{}.ResolveType(ctx, EmptyScope{}, &syntax.TypeRef{Text: "i32"})
	assert.ErrorIs(t, err, context.Canceled)
}
