package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for extracted definitions.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  hash            TEXT,
  line_count      INTEGER,
  last_indexed    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS defs (
  id               INTEGER PRIMARY KEY,
  file_id          INTEGER NOT NULL REFERENCES files(id),
  kind             TEXT NOT NULL,
  name             TEXT NOT NULL DEFAULT '',
  has_name         BOOLEAN NOT NULL DEFAULT FALSE,
  flavor           TEXT NOT NULL DEFAULT 'unit',
  has_variant_list BOOLEAN NOT NULL DEFAULT FALSE,
  start_line       INTEGER,
  start_col        INTEGER,
  end_line         INTEGER,
  end_col          INTEGER
);

CREATE TABLE IF NOT EXISTS variants (
  id              INTEGER PRIMARY KEY,
  def_id          INTEGER NOT NULL REFERENCES defs(id),
  ordinal         INTEGER NOT NULL,
  name            TEXT NOT NULL DEFAULT '',
  has_name        BOOLEAN NOT NULL DEFAULT FALSE,
  flavor          TEXT NOT NULL DEFAULT 'unit'
);

CREATE TABLE IF NOT EXISTS fields (
  id              INTEGER PRIMARY KEY,
  def_id          INTEGER NOT NULL REFERENCES defs(id),
  variant_id      INTEGER REFERENCES variants(id),
  ordinal         INTEGER NOT NULL,
  name            TEXT NOT NULL DEFAULT '',
  has_name        BOOLEAN NOT NULL DEFAULT FALSE,
  type_ref        TEXT NOT NULL DEFAULT '',
  has_type        BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_defs_file ON defs(file_id);
CREATE INDEX IF NOT EXISTS idx_defs_name ON defs(name);
CREATE INDEX IF NOT EXISTS idx_defs_kind ON defs(kind);
CREATE INDEX IF NOT EXISTS idx_variants_def ON variants(def_id, ordinal);
CREATE INDEX IF NOT EXISTS idx_fields_def ON fields(def_id, ordinal);
CREATE INDEX IF NOT EXISTS idx_fields_variant ON fields(variant_id, ordinal);
`

// DeleteFileData transactionally removes all data for a file: fields,
// variants, defs, and the file row itself. Deletes in reverse-dependency
// order to respect FK constraints.
func (s *Store) DeleteFileData(fileID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM fields WHERE def_id IN (SELECT id FROM defs WHERE file_id = ?)",
		"DELETE FROM variants WHERE def_id IN (SELECT id FROM defs WHERE file_id = ?)",
		"DELETE FROM defs WHERE file_id = ?",
		"DELETE FROM files WHERE id = ?",
	} {
		if _, err := tx.Exec(q, fileID); err != nil {
			return fmt.Errorf("delete file data: %w", err)
		}
	}

	return tx.Commit()
}
