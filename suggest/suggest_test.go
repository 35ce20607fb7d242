package suggest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFuzzyMatch(t *testing.T) {
	cases := []struct {
		term, candidate string
		want            bool
	}{
		{"", "AnyTable", true},
		{"sbd", "SubscriberData", true},
		{"sub", "Subscribers", true},
		{"SUB", "subscribers", true},
		{"subx", "Subscribers", false},
		{"dbs", "SubscriberData", false},
		{"sub", "ENT.[Subscribers]", true},
	}
	for _, tt := range cases {
		if got := FuzzyMatch(tt.term, tt.candidate); got != tt.want {
			t.Errorf("FuzzyMatch(%q, %q) = %v, want %v", tt.term, tt.candidate, got, tt.want)
		}
	}
}

func TestTablesRanking(t *testing.T) {
	cands := []TableCandidate{
		{Name: "SubscriberEngagement"},
		{Name: "Sub"},
		{Name: "Subscriber"},
	}
	got := Tables(cands, "sub")
	names := make([]string, len(got))
	for i := range got {
		names[i] = got[i].Name
	}
	want := []string{"Sub", "Subscriber", "SubscriberEngagement"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestTablesRankPrefixOverBoundaryOverFuzzy(t *testing.T) {
	cands := []TableCandidate{
		{Name: "MyLogTable"},   // boundary: Log starts a camelCase word
		{Name: "LogEntries"},   // prefix
		{Name: "LongCatalog"},  // fuzzy only
	}
	got := Tables(cands, "log")
	names := make([]string, len(got))
	for i := range got {
		names[i] = got[i].Name
	}
	want := []string{"LogEntries", "MyLogTable", "LongCatalog"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestTablesSharedQualifier(t *testing.T) {
	got := Tables([]TableCandidate{{Name: "Master List", Shared: true}}, "")
	want := []Suggestion{{Label: "ENT.[Master List]", InsertText: "ENT.[Master List]", Name: "Master List"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected suggestion (-want +got):\n%s", diff)
	}
}

func TestTablesBracketsOnlyWhenNeeded(t *testing.T) {
	got := Tables([]TableCandidate{{Name: "Plain"}, {Name: "Has Space"}}, "")
	want := []Suggestion{
		{Label: "Has Space", InsertText: "[Has Space]", Name: "Has Space"},
		{Label: "Plain", InsertText: "Plain", Name: "Plain"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected suggestions (-want +got):\n%s", diff)
	}
}

func TestTablesEmptyTermAlphabetical(t *testing.T) {
	cands := []TableCandidate{{Name: "Zeta"}, {Name: "alpha"}, {Name: "Mid"}}
	got := Tables(cands, "")
	names := make([]string, len(got))
	for i := range got {
		names[i] = got[i].Name
	}
	want := []string{"alpha", "Mid", "Zeta"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestTablesTruncated(t *testing.T) {
	cands := make([]TableCandidate, MaxResults+20)
	for i := range cands {
		cands[i] = TableCandidate{Name: "Table" + string(rune('A'+i%26)) + string(rune('A'+i/26))}
	}
	if got := Tables(cands, ""); len(got) != MaxResults {
		t.Errorf("len = %d, want %d", len(got), MaxResults)
	}
}

func TestFields(t *testing.T) {
	got := Fields([]string{"EmailAddress", "Email", "Status", "Open Count"}, "em")
	want := []Suggestion{
		{Label: "Email", InsertText: "Email", Name: "Email"},
		{Label: "EmailAddress", InsertText: "EmailAddress", Name: "EmailAddress"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected suggestions (-want +got):\n%s", diff)
	}
}

func TestJoinsOverride(t *testing.T) {
	left := TableCandidate{Name: "SendLog", Fields: []string{"JobID", "SubscriberKey"}}
	right := TableCandidate{Name: "Subscribers", Fields: []string{"SubscriberKey", "Email"}}
	got := Joins(left, right, "s", "sub")
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(got), got)
	}
	if got[0].InsertText != "s.SubscriberKey = sub.SubscriberKey" {
		t.Errorf("InsertText = %q", got[0].InsertText)
	}
}

func TestJoinsFallbackEqualFields(t *testing.T) {
	left := TableCandidate{Name: "A", Fields: []string{"Id", "Email", "Extra"}}
	right := TableCandidate{Name: "B", Fields: []string{"email", "Id", "Other"}}
	got := Joins(left, right, "", "")
	want := []Suggestion{
		{Label: "A.Id = B.Id", InsertText: "A.Id = B.Id", Name: "Id"},
		{Label: "A.Email = B.Email", InsertText: "A.Email = B.Email", Name: "Email"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected suggestions (-want +got):\n%s", diff)
	}
}
