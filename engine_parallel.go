package sema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/jward/sema/internal/store"
	"github.com/jward/sema/internal/syntax"
)

// workItem holds everything a parallel extraction worker needs.
type workItem struct {
	path    string
	hash    string
	content []byte

	// Filled by a worker in phase B.
	parsed *syntax.File
}

// indexFilesParallel indexes files using a three-phase pipeline:
//
//	Phase A (serial):   hash check, skip unchanged files.
//	Phase B (parallel): tree-sitter parse and extraction via worker pool.
//	Phase C (serial):   delete stale rows and commit batches to SQLite.
//
// Each ParseFile call builds its own parser, so phase B needs no shared
// tree-sitter state.
func (e *Engine) indexFilesParallel(ctx context.Context, paths []string) error {
	// ---- Phase A: serial file preparation ----
	var items []*workItem
	var errs []error
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		// A path listed twice would otherwise reach phase C twice and
		// collide on the files.path uniqueness constraint.
		if seen[path] {
			continue
		}
		seen[path] = true
		item, skip, err := e.prepareFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("prepare %s: %w", path, err))
			continue
		}
		if skip {
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		if len(errs) > 0 {
			return fmt.Errorf("parallel indexing had %d error(s): %w", len(errs), errs[0])
		}
		return nil
	}

	// ---- Phase B: parallel extraction ----
	numWorkers := min(runtime.NumCPU(), len(items))
	if numWorkers < 1 {
		numWorkers = 1
	}

	workCh := make(chan *workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item *workItem
		err  error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				parsed, err := syntax.ParseFile(ctx, item.content)
				item.parsed = parsed
				resultCh <- result{item: item, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: serial commit ----
	changed := false
	for res := range resultCh {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", res.item.path, res.err))
			continue
		}
		if err := e.commitItem(res.item); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", res.item.path, err))
			continue
		}
		changed = true
	}

	if changed {
		e.db.Invalidate()
	}
	if len(errs) > 0 {
		return fmt.Errorf("parallel indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

// prepareFile does phase A work for a single file: extension filter, hash
// check. Returns (item, skip, error). skip=true means the file is unchanged
// or unsupported.
func (e *Engine) prepareFile(path string) (*workItem, bool, error) {
	if !isRustFile(path) {
		return nil, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return nil, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		return nil, true, nil // unchanged
	}

	return &workItem{path: path, hash: hash, content: content}, false, nil
}

// commitItem does phase C work for one extracted file. CommitFile replaces
// any previous rows for the path in the same transaction as the insert.
func (e *Engine) commitItem(item *workItem) error {
	f := &store.File{
		Path:        item.path,
		Hash:        item.hash,
		LineCount:   bytes.Count(item.content, []byte{'\n'}) + 1,
		LastIndexed: time.Now(),
	}
	if _, err := e.store.CommitFile(f, item.parsed); err != nil {
		return err
	}
	return nil
}
