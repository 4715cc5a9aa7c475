// Package script embeds a Risor VM and exposes descriptor queries to
// analysis scripts. Scripts are the extension surface for downstream
// tooling: they can enumerate indexed definitions and fetch struct/enum
// descriptors without linking against the engine.
package script

import (
	"context"
	"fmt"
	"os"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/jward/sema/internal/hir"
	"github.com/jward/sema/internal/store"
)

// Runtime wires a Store and descriptor DB into Risor host functions.
type Runtime struct {
	store *store.Store
	db    *hir.QueryDB
}

// NewRuntime creates a Runtime backed by the given Store and descriptor DB.
func NewRuntime(s *store.Store, db *hir.QueryDB) *Runtime {
	return &Runtime{store: s, db: db}
}

// RunScript loads and executes a Risor script file.
func (r *Runtime) RunScript(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("script: loading %s: %w", path, err)
	}
	return r.eval(ctx, string(data), path)
}

// RunSource executes Risor source code directly. Useful for testing
// without script files.
func (r *Runtime) RunSource(ctx context.Context, source string) error {
	return r.eval(ctx, source, "<inline>")
}

func (r *Runtime) eval(ctx context.Context, source, label string) error {
	var opts []risor.Option
	for name, val := range r.globals() {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("script: %s: %w", label, err)
	}
	return nil
}

// globals constructs the host functions exposed to scripts.
func (r *Runtime) globals() map[string]any {
	return map[string]any{
		"defs":        r.makeDefsFn(),
		"struct_data": r.makeStructDataFn(),
		"enum_data":   r.makeEnumDataFn(),
		"field_type":  r.makeFieldTypeFn(),
		"log":         mustProxy(&logObject{prefix: "sema"}),
	}
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("script: proxy error: %v", err))
	}
	return p
}

// logObject provides log.info/warn/error methods for scripts.
type logObject struct {
	prefix string
}

func (l *logObject) Info(msg string) {
	fmt.Fprintf(os.Stderr, "[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Fprintf(os.Stderr, "[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Fprintf(os.Stderr, "[%s] ERROR: %s\n", l.prefix, msg)
}
