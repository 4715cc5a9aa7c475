// Package hir builds semantic descriptors for struct and enum definitions.
// Descriptors are constructed lazily through a memoizing query database,
// shared immutably once built, and degrade gracefully on malformed source:
// missing identifiers become the reserved sentinel name and unresolvable
// types become the unknown type. The only failure a query can report is
// cooperative cancellation, raised when the underlying source changes while
// the query runs.
package hir

import (
	"context"
	"errors"

	"github.com/jward/sema/internal/ty"
)

// DefID identifies a definition site and keys the descriptor cache.
type DefID = ty.DefID

// ErrorName is the reserved sentinel substituted when source lacks a
// parsable identifier. Several fields or variants may carry it; lookup by
// it returns the first match in declaration order.
const ErrorName = "[error]"

// ErrCanceled reports that an in-flight query was invalidated by a source
// change. The caller holds no partial result and should retry from scratch.
var ErrCanceled = errors.New("hir: query canceled")

// IsCanceled reports whether err is a cancellation outcome, either from
// source invalidation or from the caller's own context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Database answers descriptor queries per DefID. Implementations memoize
// construction, share results read-only, and propagate cancellation.
// QueryDB is the standard implementation; tests substitute fakes.
type Database interface {
	StructData(ctx context.Context, id DefID) (*StructData, error)
	EnumData(ctx context.Context, id DefID) (*EnumData, error)
}

// Struct is a thin, copyable handle over a struct definition. It owns no
// data; every accessor delegates to the Database.
type Struct struct {
	id DefID
}

func NewStruct(id DefID) Struct {
	return Struct{id: id}
}

func (s Struct) ID() DefID {
	return s.id
}

// Name returns the declared name, or ok=false for an anonymous or
// malformed definition.
func (s Struct) Name(ctx context.Context, db Database) (string, bool, error) {
	data, err := db.StructData(ctx, s.id)
	if err != nil {
		return "", false, err
	}
	name, ok := data.Name()
	return name, ok, nil
}

// VariantData returns the struct's single field-shape descriptor.
func (s Struct) VariantData(ctx context.Context, db Database) (*VariantData, error) {
	data, err := db.StructData(ctx, s.id)
	if err != nil {
		return nil, err
	}
	return data.VariantData(), nil
}

// StructData returns the full shared descriptor.
func (s Struct) StructData(ctx context.Context, db Database) (*StructData, error) {
	return db.StructData(ctx, s.id)
}

// Enum is a thin, copyable handle over an enum definition.
type Enum struct {
	id DefID
}

func NewEnum(id DefID) Enum {
	return Enum{id: id}
}

func (e Enum) ID() DefID {
	return e.id
}

func (e Enum) Name(ctx context.Context, db Database) (string, bool, error) {
	data, err := db.EnumData(ctx, e.id)
	if err != nil {
		return "", false, err
	}
	name, ok := data.Name()
	return name, ok, nil
}

// Variants returns the (name, shape) pairs in declaration order.
func (e Enum) Variants(ctx context.Context, db Database) ([]EnumVariant, error) {
	data, err := db.EnumData(ctx, e.id)
	if err != nil {
		return nil, err
	}
	return data.Variants(), nil
}

// EnumData returns the full shared descriptor.
func (e Enum) EnumData(ctx context.Context, db Database) (*EnumData, error) {
	return db.EnumData(ctx, e.id)
}
