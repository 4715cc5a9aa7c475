package hir

import (
	"context"
	"fmt"
	"sync"

	"github.com/jward/sema/internal/syntax"
	"github.com/jward/sema/internal/ty"
)

// Source serves a definition's syntax and lexical scope per DefID. The
// engine backs it with the store; tests substitute fixed fakes. A nil
// syntax result (unknown or vanished id) is not an error — it degrades to
// an empty descriptor.
type Source interface {
	StructSyntax(id DefID) (*syntax.StructDef, error)
	EnumSyntax(id DefID) (*syntax.EnumDef, error)
	ScopeFor(id DefID) (ty.Scope, error)
}

// QueryDB is the memoizing Database implementation. Each descriptor is
// constructed at most once per key per revision: concurrent callers for the
// same id share a single in-flight computation, successful results are
// cached and shared read-only, and cancellation is never cached — the next
// call retries from scratch.
type QueryDB struct {
	source   Source
	resolver ty.Resolver

	mu      sync.Mutex
	structs map[DefID]*memoEntry[StructData]
	enums   map[DefID]*memoEntry[EnumData]
	stale   chan struct{}
}

// memoEntry is a single-construction cell: done closes when the computation
// finishes, after val/err are set.
type memoEntry[T any] struct {
	done chan struct{}
	val  *T
	err  error
}

func NewQueryDB(source Source, resolver ty.Resolver) *QueryDB {
	return &QueryDB{
		source:   source,
		resolver: resolver,
		structs:  make(map[DefID]*memoEntry[StructData]),
		enums:    make(map[DefID]*memoEntry[EnumData]),
		stale:    make(chan struct{}),
	}
}

// Invalidate drops every memoized descriptor and signals in-flight
// constructions to abort with ErrCanceled. Called by the engine whenever
// indexed source actually changed. Results are replaced, never patched:
// the next query for any id recomputes from current syntax.
func (db *QueryDB) Invalidate() {
	db.mu.Lock()
	defer db.mu.Unlock()
	close(db.stale)
	db.stale = make(chan struct{})
	db.structs = make(map[DefID]*memoEntry[StructData])
	db.enums = make(map[DefID]*memoEntry[EnumData])
}

// StructData returns the shared struct descriptor for id, constructing and
// caching it on first use.
func (db *QueryDB) StructData(ctx context.Context, id DefID) (*StructData, error) {
	return memoize(ctx, db, func(db *QueryDB) map[DefID]*memoEntry[StructData] {
		return db.structs
	}, id, db.buildStruct)
}

// EnumData returns the shared enum descriptor for id, constructing and
// caching it on first use.
func (db *QueryDB) EnumData(ctx context.Context, id DefID) (*EnumData, error) {
	return memoize(ctx, db, func(db *QueryDB) map[DefID]*memoEntry[EnumData] {
		return db.enums
	}, id, db.buildEnum)
}

// memoize implements the construct-once-per-key convention. The winning
// caller runs build; everyone else waits on the entry. A failed build
// (cancellation or store error) removes the entry so a later call retries.
// The table is resolved under the lock — Invalidate swaps the map fields, so
// reading them outside db.mu would race with it. The reference captured here
// keeps publishing results only to callers that started before an
// invalidation, never to the fresh cache.
func memoize[T any](
	ctx context.Context,
	db *QueryDB,
	tableOf func(*QueryDB) map[DefID]*memoEntry[T],
	id DefID,
	build func(ctx context.Context, env *Env, id DefID) (*T, error),
) (*T, error) {
	db.mu.Lock()
	table := tableOf(db)
	if e, ok := table[id]; ok {
		db.mu.Unlock()
		select {
		case <-e.done:
			return e.val, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &memoEntry[T]{done: make(chan struct{})}
	table[id] = e
	env := &Env{Resolver: db.resolver, Stale: db.stale}
	db.mu.Unlock()

	val, err := build(ctx, env, id)

	db.mu.Lock()
	if err != nil && table[id] == e {
		delete(table, id)
	}
	db.mu.Unlock()

	e.val, e.err = val, err
	close(e.done)
	return val, err
}

func (db *QueryDB) buildStruct(ctx context.Context, env *Env, id DefID) (*StructData, error) {
	def, err := db.source.StructSyntax(id)
	if err != nil {
		return nil, fmt.Errorf("hir: struct syntax for def %d: %w", id, err)
	}
	if def == nil {
		def = &syntax.StructDef{}
	}
	if err := db.scopeFor(env, id); err != nil {
		return nil, err
	}
	return NewStructData(ctx, env, def)
}

func (db *QueryDB) buildEnum(ctx context.Context, env *Env, id DefID) (*EnumData, error) {
	def, err := db.source.EnumSyntax(id)
	if err != nil {
		return nil, fmt.Errorf("hir: enum syntax for def %d: %w", id, err)
	}
	if def == nil {
		def = &syntax.EnumDef{}
	}
	if err := db.scopeFor(env, id); err != nil {
		return nil, err
	}
	return NewEnumData(ctx, env, def)
}

func (db *QueryDB) scopeFor(env *Env, id DefID) error {
	scope, err := db.source.ScopeFor(id)
	if err != nil {
		return fmt.Errorf("hir: scope for def %d: %w", id, err)
	}
	if scope == nil {
		scope = ty.EmptyScope{}
	}
	env.Scope = scope
	return nil
}
