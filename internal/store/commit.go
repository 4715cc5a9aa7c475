package store

import (
	"database/sql"
	"fmt"

	"github.com/jward/sema/internal/syntax"
)

// CommitFile writes a parsed file and every definition extracted from it in
// a single transaction, replacing any data previously stored for the same
// path: old fields, variants, defs, and the stale file row are deleted and
// the new rows inserted before anything becomes visible to readers. A reader
// never observes the gap between removal and replacement, and a canceled or
// failed extraction never leaves a half-indexed file behind. Returns the new
// file id.
func (s *Store) CommitFile(f *File, parsed *syntax.File) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldID int64
	err = tx.QueryRow("SELECT id FROM files WHERE path = ?", f.Path).Scan(&oldID)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return 0, fmt.Errorf("lookup old file: %w", err)
	default:
		for _, q := range []string{
			"DELETE FROM fields WHERE def_id IN (SELECT id FROM defs WHERE file_id = ?)",
			"DELETE FROM variants WHERE def_id IN (SELECT id FROM defs WHERE file_id = ?)",
			"DELETE FROM defs WHERE file_id = ?",
			"DELETE FROM files WHERE id = ?",
		} {
			if _, err := tx.Exec(q, oldID); err != nil {
				return 0, fmt.Errorf("replace old file data: %w", err)
			}
		}
	}

	res, err := tx.Exec(
		"INSERT INTO files (path, hash, line_count, last_indexed) VALUES (?, ?, ?, ?)",
		f.Path, f.Hash, f.LineCount, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = fileID

	for i := range parsed.Structs {
		def := &parsed.Structs[i]
		res, err := tx.Exec(
			`INSERT INTO defs (file_id, kind, name, has_name, flavor, has_variant_list,
				start_line, start_col, end_line, end_col)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID, KindStruct, def.Name, def.HasName, def.Flavor.String(), false,
			def.StartLine, def.StartCol, def.EndLine, def.EndCol,
		)
		if err != nil {
			return 0, fmt.Errorf("insert struct def: %w", err)
		}
		defID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		if err := commitFields(tx, defID, nil, def.Fields); err != nil {
			return 0, err
		}
	}

	for i := range parsed.Enums {
		def := &parsed.Enums[i]
		res, err := tx.Exec(
			`INSERT INTO defs (file_id, kind, name, has_name, flavor, has_variant_list,
				start_line, start_col, end_line, end_col)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID, KindEnum, def.Name, def.HasName, "unit", def.HasVariantList,
			def.StartLine, def.StartCol, def.EndLine, def.EndCol,
		)
		if err != nil {
			return 0, fmt.Errorf("insert enum def: %w", err)
		}
		defID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		for ord, v := range def.Variants {
			res, err := tx.Exec(
				"INSERT INTO variants (def_id, ordinal, name, has_name, flavor) VALUES (?, ?, ?, ?, ?)",
				defID, ord, v.Name, v.HasName, v.Flavor.String(),
			)
			if err != nil {
				return 0, fmt.Errorf("insert variant: %w", err)
			}
			variantID, err := res.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("last insert id: %w", err)
			}
			if err := commitFields(tx, defID, &variantID, v.Fields); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit file: %w", err)
	}
	return fileID, nil
}

func commitFields(tx *sql.Tx, defID int64, variantID *int64, fields []syntax.FieldDef) error {
	for ord, fd := range fields {
		typeRef := ""
		hasType := false
		if fd.TypeRef != nil {
			typeRef = fd.TypeRef.Text
			hasType = true
		}
		_, err := tx.Exec(
			`INSERT INTO fields (def_id, variant_id, ordinal, name, has_name, type_ref, has_type)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			defID, variantID, ord, fd.Name, fd.HasName, typeRef, hasType,
		)
		if err != nil {
			return fmt.Errorf("insert field: %w", err)
		}
	}
	return nil
}
