package store

import (
	"database/sql"
	"fmt"
)

// --- File operations ---

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, hash, line_count, last_indexed) VALUES (?, ?, ?, ?)",
		f.Path, f.Hash, f.LineCount, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		"SELECT id, path, hash, line_count, last_indexed FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Hash, &f.LineCount, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query("SELECT id, path, hash, line_count, last_indexed FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.Path, &f.Hash, &f.LineCount, &f.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// --- Def operations ---

const defCols = `id, file_id, kind, name, has_name, flavor, has_variant_list,
	start_line, start_col, end_line, end_col`

func (s *Store) scanDef(scanner interface{ Scan(...any) error }) (*Def, error) {
	d := &Def{}
	err := scanner.Scan(
		&d.ID, &d.FileID, &d.Kind, &d.Name, &d.HasName, &d.Flavor, &d.HasVariantList,
		&d.StartLine, &d.StartCol, &d.EndLine, &d.EndCol,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) queryDefs(query string, args ...any) ([]*Def, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var defs []*Def
	for rows.Next() {
		d, err := s.scanDef(rows)
		if err != nil {
			return nil, fmt.Errorf("scan def: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

func (s *Store) InsertDef(d *Def) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO defs (file_id, kind, name, has_name, flavor, has_variant_list,
			start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.FileID, d.Kind, d.Name, d.HasName, d.Flavor, d.HasVariantList,
		d.StartLine, d.StartCol, d.EndLine, d.EndCol,
	)
	if err != nil {
		return 0, fmt.Errorf("insert def: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	d.ID = id
	return id, nil
}

func (s *Store) DefByID(id int64) (*Def, error) {
	d, err := s.scanDef(s.db.QueryRow("SELECT "+defCols+" FROM defs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("def by id: %w", err)
	}
	return d, nil
}

func (s *Store) DefsByFile(fileID int64) ([]*Def, error) {
	return s.queryDefs("SELECT "+defCols+" FROM defs WHERE file_id = ? ORDER BY id", fileID)
}

func (s *Store) DefsByName(name string) ([]*Def, error) {
	return s.queryDefs("SELECT "+defCols+" FROM defs WHERE name = ? AND has_name ORDER BY id", name)
}

func (s *Store) DefsByKind(kind string) ([]*Def, error) {
	return s.queryDefs("SELECT "+defCols+" FROM defs WHERE kind = ? ORDER BY name, id", kind)
}

func (s *Store) Defs() ([]*Def, error) {
	return s.queryDefs("SELECT " + defCols + " FROM defs ORDER BY name, id")
}

// LookupTypeDef resolves a bare type name to a definition, preferring
// definitions in the same file over index-wide ones. Ties break by lowest
// id (first indexed declaration).
func (s *Store) LookupTypeDef(name string, fileID int64) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM defs WHERE name = ? AND has_name
		 ORDER BY (file_id = ?) DESC, id ASC LIMIT 1`,
		name, fileID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup type def: %w", err)
	}
	return id, true, nil
}

// --- Variant operations ---

func (s *Store) InsertVariant(v *Variant) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO variants (def_id, ordinal, name, has_name, flavor) VALUES (?, ?, ?, ?, ?)",
		v.DefID, v.Ordinal, v.Name, v.HasName, v.Flavor,
	)
	if err != nil {
		return 0, fmt.Errorf("insert variant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	v.ID = id
	return id, nil
}

func (s *Store) VariantsByDef(defID int64) ([]*Variant, error) {
	rows, err := s.db.Query(
		"SELECT id, def_id, ordinal, name, has_name, flavor FROM variants WHERE def_id = ? ORDER BY ordinal",
		defID,
	)
	if err != nil {
		return nil, fmt.Errorf("variants by def: %w", err)
	}
	defer rows.Close()
	var variants []*Variant
	for rows.Next() {
		v := &Variant{}
		if err := rows.Scan(&v.ID, &v.DefID, &v.Ordinal, &v.Name, &v.HasName, &v.Flavor); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// --- Field operations ---

const fieldCols = "id, def_id, variant_id, ordinal, name, has_name, type_ref, has_type"

func (s *Store) InsertField(f *Field) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO fields (def_id, variant_id, ordinal, name, has_name, type_ref, has_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.DefID, f.VariantID, f.Ordinal, f.Name, f.HasName, f.TypeRef, f.HasType,
	)
	if err != nil {
		return 0, fmt.Errorf("insert field: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

func (s *Store) queryFields(query string, args ...any) ([]*Field, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var fields []*Field
	for rows.Next() {
		f := &Field{}
		if err := rows.Scan(&f.ID, &f.DefID, &f.VariantID, &f.Ordinal,
			&f.Name, &f.HasName, &f.TypeRef, &f.HasType); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// StructFieldsByDef returns a struct def's own fields (those not attached
// to an enum variant), in declaration order.
func (s *Store) StructFieldsByDef(defID int64) ([]*Field, error) {
	return s.queryFields(
		"SELECT "+fieldCols+" FROM fields WHERE def_id = ? AND variant_id IS NULL ORDER BY ordinal",
		defID,
	)
}

func (s *Store) FieldsByVariant(variantID int64) ([]*Field, error) {
	return s.queryFields(
		"SELECT "+fieldCols+" FROM fields WHERE variant_id = ? ORDER BY ordinal",
		variantID,
	)
}
