package sema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jward/sema/internal/hir"
	"github.com/jward/sema/internal/script"
	"github.com/jward/sema/internal/store"
	"github.com/jward/sema/internal/syntax"
	"github.com/jward/sema/internal/ty"
)

// Engine orchestrates the sema pipeline: file discovery, change detection,
// definition extraction via tree-sitter, and descriptor queries over the
// extracted definitions.
type Engine struct {
	store *store.Store
	db    *hir.QueryDB

	// useParallel enables the parallel extraction pipeline.
	useParallel bool

	excludeDirs map[string]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallel controls parallel extraction. When true (default), IndexFiles
// parses files on a worker pool and commits batches serially to SQLite.
// Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithExcludeDirs adds directory names skipped during IndexDirectory walks,
// on top of the built-in defaults (hidden dirs, target, vendor,
// node_modules).
func WithExcludeDirs(dirs ...string) Option {
	return func(e *Engine) {
		for _, d := range dirs {
			e.excludeDirs[d] = true
		}
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("sema: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("sema: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		useParallel: true, // default to parallel extraction
		excludeDirs: map[string]bool{
			"target":       true,
			"vendor":       true,
			"node_modules": true,
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.db = hir.NewQueryDB(&storeSource{store: s}, ty.ScopeResolver{})
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// DB returns the descriptor query database. Descriptors fetched through it
// are memoized per definition and shared read-only.
func (e *Engine) DB() hir.Database {
	return e.db
}

// Query returns a new QueryBuilder wrapping the Store and descriptor DB.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store, db: e.db}
}

// RunScript executes a Risor analysis script with descriptor query globals.
func (e *Engine) RunScript(ctx context.Context, path string) error {
	return script.NewRuntime(e.store, e.db).RunScript(ctx, path)
}

// RunSource executes Risor source directly. Useful for testing and one-off
// analyses without a script file.
func (e *Engine) RunSource(ctx context.Context, source string) error {
	return script.NewRuntime(e.store, e.db).RunSource(ctx, source)
}

// IndexFiles indexes the given Rust file paths. Unchanged files (same
// content hash) are skipped. When any file actually changed, every
// memoized descriptor is dropped and in-flight descriptor queries are
// canceled; they observe the cancellation at their next resolution
// boundary and report it to their callers, who retry against the new
// state. Replacement, not patching.
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	if e.useParallel {
		return e.indexFilesParallel(ctx, paths)
	}
	return e.indexFilesSerial(ctx, paths)
}

func (e *Engine) indexFilesSerial(ctx context.Context, paths []string) error {
	changed := false
	var errs []error
	for _, path := range paths {
		didChange, err := e.indexFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
			continue
		}
		changed = changed || didChange
	}
	if changed {
		e.db.Invalidate()
	}
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

// indexFile extracts one file. Reports whether stored data changed.
func (e *Engine) indexFile(ctx context.Context, path string) (bool, error) {
	if !isRustFile(path) {
		return false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read file: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		return false, nil // unchanged
	}

	parsed, err := syntax.ParseFile(ctx, content)
	if err != nil {
		return false, fmt.Errorf("parse: %w", err)
	}

	// CommitFile replaces any previous rows for the path in the same
	// transaction as the insert.
	f := &store.File{
		Path:        path,
		Hash:        hash,
		LineCount:   bytes.Count(content, []byte{'\n'}) + 1,
		LastIndexed: time.Now(),
	}
	if _, err := e.store.CommitFile(f, parsed); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// IndexDirectory walks root and indexes all Rust files. If root is inside a
// git repository, uses git ls-files to respect .gitignore. Falls back to a
// filesystem walk (skipping hidden and excluded dirs) if git is unavailable.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := e.gitListFiles(root)
	if err != nil {
		// Not a git repo or git not available — fall back to walk.
		paths, err = e.walkListFiles(root)
		if err != nil {
			return err
		}
	}
	return e.IndexFiles(ctx, paths)
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) Rust files under root.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if isRustFile(absPath) {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers Rust files by walking the filesystem, used as a
// fallback when git is not available.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || e.excludeDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if isRustFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

func isRustFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".rs")
}

// storeSource serves definition syntax and scope from the Store, adapting
// persisted rows back into syntax models for descriptor construction.
type storeSource struct {
	store *store.Store
}

var _ hir.Source = (*storeSource)(nil)

func (s *storeSource) StructSyntax(id hir.DefID) (*syntax.StructDef, error) {
	def, err := s.store.DefByID(int64(id))
	if err != nil {
		return nil, err
	}
	if def == nil || def.Kind != store.KindStruct {
		return nil, nil
	}
	fields, err := s.store.StructFieldsByDef(def.ID)
	if err != nil {
		return nil, err
	}
	return &syntax.StructDef{
		Name:    def.Name,
		HasName: def.HasName,
		Flavor:  flavorFromString(def.Flavor),
		Fields:  fieldDefs(fields),
	}, nil
}

func (s *storeSource) EnumSyntax(id hir.DefID) (*syntax.EnumDef, error) {
	def, err := s.store.DefByID(int64(id))
	if err != nil {
		return nil, err
	}
	if def == nil || def.Kind != store.KindEnum {
		return nil, nil
	}
	out := &syntax.EnumDef{
		Name:           def.Name,
		HasName:        def.HasName,
		HasVariantList: def.HasVariantList,
	}
	variants, err := s.store.VariantsByDef(def.ID)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		fields, err := s.store.FieldsByVariant(v.ID)
		if err != nil {
			return nil, err
		}
		out.Variants = append(out.Variants, syntax.VariantDef{
			Name:    v.Name,
			HasName: v.HasName,
			Flavor:  flavorFromString(v.Flavor),
			Fields:  fieldDefs(fields),
		})
	}
	return out, nil
}

func (s *storeSource) ScopeFor(id hir.DefID) (ty.Scope, error) {
	def, err := s.store.DefByID(int64(id))
	if err != nil {
		return nil, err
	}
	if def == nil {
		return ty.EmptyScope{}, nil
	}
	return &storeScope{store: s.store, fileID: def.FileID}, nil
}

// storeScope resolves bare type names against the index, preferring
// same-file definitions. Store read failures degrade to "not found" —
// Scope's contract has no error channel, and an unresolved name already
// has a defined meaning (the unknown type).
type storeScope struct {
	store  *store.Store
	fileID int64
}

func (s *storeScope) LookupType(name string) (ty.DefID, bool) {
	id, ok, err := s.store.LookupTypeDef(name, s.fileID)
	if err != nil || !ok {
		return 0, false
	}
	return ty.DefID(id), true
}

func fieldDefs(fields []*store.Field) []syntax.FieldDef {
	out := make([]syntax.FieldDef, 0, len(fields))
	for _, f := range fields {
		fd := syntax.FieldDef{Name: f.Name, HasName: f.HasName}
		if f.HasType {
			fd.TypeRef = &syntax.TypeRef{Text: f.TypeRef}
		}
		out = append(out, fd)
	}
	return out
}

func flavorFromString(s string) syntax.Flavor {
	switch s {
	case "tuple":
		return syntax.FlavorTuple
	case "record":
		return syntax.FlavorRecord
	default:
		return syntax.FlavorUnit
	}
}
