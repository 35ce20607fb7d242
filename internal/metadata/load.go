package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v2"
)

// catalogFile is the YAML document shape accepted by LoadYAMLFile.
type catalogFile struct {
	DataExtensions []DataExtension `yaml:"dataExtensions"`
	Folders        []Folder        `yaml:"folders"`
}

// LoadYAMLFile replaces the store content from a YAML catalog document.
func (s *Store) LoadYAMLFile(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	return s.LoadYAML(buf)
}

// LoadYAML replaces the store content from YAML bytes.
func (s *Store) LoadYAML(buf []byte) error {
	var doc catalogFile
	if err := yaml.UnmarshalStrict(buf, &doc); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	s.Replace(doc.DataExtensions, doc.Folders)
	return nil
}

// LoadSnapshot replaces the store content from an offline sqlite
// snapshot, the format the host tooling exports for editing without a
// live metadata connection.
func (s *Store) LoadSnapshot(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	folders, err := loadFolders(ctx, db)
	if err != nil {
		return err
	}
	tables, err := loadDataExtensions(ctx, db)
	if err != nil {
		return err
	}
	s.Replace(tables, folders)
	return nil
}

func loadFolders(ctx context.Context, db *sql.DB) ([]Folder, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, COALESCE(parent_id, ''), COALESCE(type, '')
		FROM folders`)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.Type); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func loadDataExtensions(ctx context.Context, db *sql.DB) ([]DataExtension, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, COALESCE(customer_key, ''), COALESCE(folder_id, ''), is_shared
		FROM data_extensions`)
	if err != nil {
		return nil, fmt.Errorf("query data extensions: %w", err)
	}
	defer rows.Close()

	var tables []DataExtension
	index := map[string]int{}
	for rows.Next() {
		var de DataExtension
		if err := rows.Scan(&de.ID, &de.Name, &de.CustomerKey, &de.FolderID, &de.IsShared); err != nil {
			return nil, fmt.Errorf("scan data extension: %w", err)
		}
		index[de.ID] = len(tables)
		tables = append(tables, de)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fieldRows, err := db.QueryContext(ctx, `
		SELECT data_extension_id, name, COALESCE(type, ''), COALESCE(is_primary_key, 0), COALESCE(is_nullable, 1)
		FROM fields
		ORDER BY data_extension_id, ordinal`)
	if err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}
	defer fieldRows.Close()

	for fieldRows.Next() {
		var deID string
		var f Field
		if err := fieldRows.Scan(&deID, &f.Name, &f.FieldType, &f.IsPrimaryKey, &f.IsNullable); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		if n, ok := index[deID]; ok {
			tables[n].Fields = append(tables[n].Fields, f)
		}
	}
	return tables, fieldRows.Err()
}
