package ty

import (
	"context"
	"strings"

	"github.com/jward/sema/internal/syntax"
)

// Resolver converts a type reference (or its absence — ref may be nil) in a
// lexical scope into a semantic type. Implementations must be total on
// malformed input, returning UnknownType rather than failing; the only
// permitted error is cancellation of ctx.
type Resolver interface {
	ResolveType(ctx context.Context, scope Scope, ref *syntax.TypeRef) (Type, error)
}

// builtins maps Rust primitive spellings to their semantic kinds.
var builtins = map[string]Kind{
	"bool": Bool,
	"char": Char,
	"str":  Str,
	"i8":   Int, "i16": Int, "i32": Int, "i64": Int, "i128": Int, "isize": Int,
	"u8": Uint, "u16": Uint, "u32": Uint, "u64": Uint, "u128": Uint, "usize": Uint,
	"f32": Float, "f64": Float,
}

// ScopeResolver is the default Resolver: builtin primitives resolve
// directly, bare identifiers resolve through the scope to Named types, and
// everything else degrades to Unknown.
type ScopeResolver struct{}

func (ScopeResolver) ResolveType(ctx context.Context, scope Scope, ref *syntax.TypeRef) (Type, error) {
	if err := ctx.Err(); err != nil {
		return Type{}, err
	}
	if ref == nil {
		return UnknownType(), nil
	}

	text := normalizeRef(ref.Text)
	if text == "" {
		return UnknownType(), nil
	}
	if text == "()" {
		return Type{Kind: Unit}, nil
	}
	if kind, ok := builtins[text]; ok {
		return Type{Kind: kind, Name: text}, nil
	}

	// Path types resolve by their final segment; generic arguments are
	// stripped so `Vec<T>` looks up `Vec`.
	name := text
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if !isIdent(name) {
		return UnknownType(), nil
	}
	if scope != nil {
		if def, ok := scope.LookupType(name); ok {
			return Type{Kind: Named, Name: name, Def: def}, nil
		}
	}
	return UnknownType(), nil
}

// normalizeRef strips reference sigils and surrounding whitespace so
// `&mut Foo` resolves like `Foo`.
func normalizeRef(text string) string {
	text = strings.TrimSpace(text)
	for strings.HasPrefix(text, "&") {
		text = strings.TrimPrefix(text, "&")
		text = strings.TrimSpace(text)
		if rest, ok := strings.CutPrefix(text, "mut "); ok {
			text = strings.TrimSpace(rest)
		}
		// Lifetime annotations: &'a Foo.
		if strings.HasPrefix(text, "'") {
			if i := strings.IndexAny(text, " \t"); i >= 0 {
				text = strings.TrimSpace(text[i+1:])
			} else {
				return ""
			}
		}
	}
	return text
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
