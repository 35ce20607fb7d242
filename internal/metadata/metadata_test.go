package metadata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testCatalog = `
dataExtensions:
  - id: de1
    name: Subscribers
    customerKey: subs_key
    folderId: f-local
    fields:
      - name: Id
        fieldType: Number
        isPrimaryKey: true
      - name: Email
        fieldType: EmailAddress
        isNullable: true
      - Status
  - id: de2
    name: Master List
    folderId: f-shared-sub
    fields: [SubscriberKey]
  - id: de3
    name: FlaggedShared
    folderId: f-local
    isShared: true
folders:
  - id: f-root
    name: Root
  - id: f-local
    name: My Data
    parentId: f-root
  - id: f-shared
    name: Shared Items
    parentId: f-root
    type: shared
  - id: f-shared-sub
    name: Shared Lists
    parentId: f-shared
`

func loadTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	if err := s.LoadYAML([]byte(testCatalog)); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	return s
}

func TestSharedFolderSetCoversDescendants(t *testing.T) {
	folders := map[string]Folder{
		"f-root":       {ID: "f-root"},
		"f-local":      {ID: "f-local", ParentID: "f-root"},
		"f-shared":     {ID: "f-shared", ParentID: "f-root", Type: SharedFolderType},
		"f-shared-sub": {ID: "f-shared-sub", ParentID: "f-shared"},
	}
	want := map[string]bool{"f-shared": true, "f-shared-sub": true}
	if diff := cmp.Diff(want, sharedFolderSet(folders)); diff != "" {
		t.Errorf("unexpected shared set (-want +got):\n%s", diff)
	}
}

func TestSharedFolderSetSurvivesCycle(t *testing.T) {
	folders := map[string]Folder{
		"a": {ID: "a", ParentID: "b"},
		"b": {ID: "b", ParentID: "a"},
	}
	if got := sharedFolderSet(folders); len(got) != 0 {
		t.Errorf("cyclic folders marked shared: %v", got)
	}
}

func TestCandidatesSharedAndSorted(t *testing.T) {
	s := loadTestStore(t)
	cands := s.Candidates()
	if len(cands) != 3 {
		t.Fatalf("got %d candidates, want 3", len(cands))
	}
	names := []string{cands[0].Name, cands[1].Name, cands[2].Name}
	if diff := cmp.Diff([]string{"FlaggedShared", "Master List", "Subscribers"}, names); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
	for _, c := range cands {
		wantShared := c.Name != "Subscribers"
		if c.Shared != wantShared {
			t.Errorf("%s: Shared = %v, want %v", c.Name, c.Shared, wantShared)
		}
	}
}

func TestTableFields(t *testing.T) {
	s := loadTestStore(t)
	fields := s.TableFields()
	if diff := cmp.Diff([]string{"Id", "Email", "Status"}, fields["subscribers"]); diff != "" {
		t.Errorf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestFieldAcceptsBothForms(t *testing.T) {
	s := loadTestStore(t)
	de, ok := s.Lookup("Subscribers")
	if !ok {
		t.Fatal("Subscribers not found")
	}
	want := []Field{
		{Name: "Id", FieldType: "Number", IsPrimaryKey: true},
		{Name: "Email", FieldType: "EmailAddress", IsNullable: true},
		{Name: "Status"},
	}
	if diff := cmp.Diff(want, de.Fields); diff != "" {
		t.Errorf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestLookupByNameOrCustomerKey(t *testing.T) {
	s := loadTestStore(t)
	if de, ok := s.Lookup("subscribers"); !ok || de.ID != "de1" {
		t.Errorf("Lookup by name = %+v, %v", de, ok)
	}
	if de, ok := s.Lookup("SUBS_KEY"); !ok || de.ID != "de1" {
		t.Errorf("Lookup by customer key = %+v, %v", de, ok)
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("Lookup found a table that does not exist")
	}
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	s := NewStore()
	if err := s.LoadYAML([]byte("dataExtentions: []")); err == nil {
		t.Error("misspelled key accepted")
	}
}
