// Package metadata holds the table and folder catalog supplied by the
// host. The engine never talks to the remote backend itself; the catalog
// arrives as a YAML document or an offline sqlite snapshot and is served
// from memory after that.
package metadata

import (
	"sort"
	"strings"
	"sync"

	"github.com/dexls/dexls/suggest"
)

// DataExtension is one queryable table in the catalog.
type DataExtension struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	CustomerKey string  `yaml:"customerKey" json:"customerKey"`
	FolderID    string  `yaml:"folderId" json:"folderId"`
	Fields      []Field `yaml:"fields" json:"fields"`
	IsShared    bool    `yaml:"isShared" json:"isShared"`
}

// Field is one column of a data extension. Everything beyond the name
// is optional catalog detail.
type Field struct {
	Name         string `yaml:"name" json:"name"`
	FieldType    string `yaml:"fieldType" json:"fieldType"`
	IsPrimaryKey bool   `yaml:"isPrimaryKey" json:"isPrimaryKey"`
	IsNullable   bool   `yaml:"isNullable" json:"isNullable"`
}

// UnmarshalYAML accepts either a bare field name or the full object
// form, so hand-written catalogs stay compact.
func (f *Field) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		*f = Field{Name: name}
		return nil
	}
	type plain Field
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*f = Field(p)
	return nil
}

// FieldNames returns just the column names, the shape completion and
// lint consume.
func (de DataExtension) FieldNames() []string {
	names := make([]string, len(de.Fields))
	for i, f := range de.Fields {
		names[i] = f.Name
	}
	return names
}

// Folder is one node of the catalog folder tree. Folders of type
// "shared" mark everything below them as shared scope.
type Folder struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	ParentID string `yaml:"parentId" json:"parentId"`
	Type     string `yaml:"type" json:"type"`
}

// SharedFolderType is the folder type that switches its subtree to the
// ENT. shared scope.
const SharedFolderType = "shared"

// Store is the in-memory catalog. Replace swaps the whole content at
// once; readers always see a consistent snapshot.
type Store struct {
	mu      sync.RWMutex
	tables  []DataExtension
	folders map[string]Folder
	shared  map[string]bool
}

func NewStore() *Store {
	return &Store{folders: map[string]Folder{}, shared: map[string]bool{}}
}

// Replace installs a new catalog and recomputes the shared folder set.
func (s *Store) Replace(tables []DataExtension, folders []Folder) {
	byID := make(map[string]Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = tables
	s.folders = byID
	s.shared = sharedFolderSet(byID)
}

// sharedFolderSet collects every folder that is shared itself or sits
// below a shared ancestor.
func sharedFolderSet(folders map[string]Folder) map[string]bool {
	shared := map[string]bool{}
	for id := range folders {
		cur := id
		// walk up; catalogs are shallow so no cycle guard beyond a cap
		for hops := 0; hops < 64; hops++ {
			f, ok := folders[cur]
			if !ok {
				break
			}
			if f.Type == SharedFolderType {
				shared[id] = true
				break
			}
			if f.ParentID == "" {
				break
			}
			cur = f.ParentID
		}
	}
	return shared
}

// isSharedLocked reports whether a table lives in shared scope, either
// by its own flag or through its folder. Callers hold s.mu.
func (s *Store) isSharedLocked(de DataExtension) bool {
	return de.IsShared || s.shared[de.FolderID]
}

// Candidates returns the completion candidates for the whole catalog,
// sorted by name.
func (s *Store) Candidates() []suggest.TableCandidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]suggest.TableCandidate, 0, len(s.tables))
	for _, de := range s.tables {
		out = append(out, suggest.TableCandidate{
			Name:   de.Name,
			Shared: s.isSharedLocked(de),
			Fields: de.FieldNames(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// TableFields maps lower-cased table names to their field names, the
// shape the lint rules consume.
func (s *Store) TableFields() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(s.tables))
	for _, de := range s.tables {
		out[strings.ToLower(de.Name)] = de.FieldNames()
	}
	return out
}

// Lookup finds a table by name or customer key, case-insensitively.
func (s *Store) Lookup(name string) (DataExtension, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, de := range s.tables {
		if strings.EqualFold(de.Name, name) || strings.EqualFold(de.CustomerKey, name) {
			return de, true
		}
	}
	return DataExtension{}, false
}

// Len reports the number of tables in the catalog.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}
