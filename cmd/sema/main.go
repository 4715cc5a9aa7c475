package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/sema"
)

var (
	flagDB     string
	flagFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sema",
	Short:         "Semantic struct/enum descriptors for Rust source",
	Long:          "Sema indexes Rust source using tree-sitter and serves cached, type-resolved struct and enum descriptors from a SQLite database.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .sema/index.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(runCmd)
}

func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("invalid format %q (want json or text)", format)
	}
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag, the config
// file, or the default.
func resolveDBPath(repoRoot string, cfg *config) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	if cfg.DB != "" {
		if filepath.IsAbs(cfg.DB) {
			return cfg.DB
		}
		return filepath.Join(repoRoot, cfg.DB)
	}
	return filepath.Join(repoRoot, ".sema", "index.db")
}

// openEngine opens the engine for an already-indexed repo rooted at or
// above dir, applying config file options.
func openEngine(dir string) (*sema.Engine, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	repoRoot := findRepoRoot(abs)
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		return nil, err
	}
	dbPath := resolveDBPath(repoRoot, cfg)
	return sema.New(dbPath, cfg.engineOptions()...)
}
