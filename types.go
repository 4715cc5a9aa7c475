package sema

import (
	"github.com/jward/sema/internal/hir"
	"github.com/jward/sema/internal/store"
	"github.com/jward/sema/internal/ty"
)

// Public type aliases for internal types used in the Engine and
// QueryBuilder APIs. These are Go type aliases (=) — identical to the
// internal types at compile time. External consumers use these names; no
// conversion is needed.

type Store = store.Store
type Def = store.Def
type File = store.File

type DefID = hir.DefID
type Struct = hir.Struct
type Enum = hir.Enum
type StructData = hir.StructData
type EnumData = hir.EnumData
type EnumVariant = hir.EnumVariant
type VariantData = hir.VariantData
type StructField = hir.StructField
type Database = hir.Database

type Type = ty.Type

// ErrCanceled re-exports the cancellation sentinel: a query observed a
// source change mid-computation and returned no result. Retry from scratch.
var ErrCanceled = hir.ErrCanceled

// IsCanceled reports whether err is a cancellation outcome.
func IsCanceled(err error) bool { return hir.IsCanceled(err) }
