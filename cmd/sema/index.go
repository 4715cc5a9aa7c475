package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/sema"
)

var (
	flagForce  bool
	flagSerial bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a repository's Rust source",
	Long:  "Parses Rust files with tree-sitter, extracts struct and enum definitions, and writes them to the SQLite database. Unchanged files are skipped.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete database and reindex from scratch")
	indexCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable the parallel extraction pipeline")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	repoRoot := findRepoRoot(targetDir)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	dbPath := resolveDBPath(repoRoot, cfg)

	// Ensure the database directory exists.
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dbDir, err)
	}

	// Handle --force: delete the DB file entirely.
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing database for --force: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared database: %s\n", dbPath)
	}

	opts := cfg.engineOptions()
	if flagSerial {
		opts = append(opts, sema.WithParallel(false))
	}

	engine, err := sema.New(dbPath, opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	if err := engine.IndexDirectory(context.Background(), targetDir); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %s in %s\n", targetDir, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	return nil
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
