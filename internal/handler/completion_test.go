package handler

import (
	"strings"
	"testing"
)

func TestCompleteTablesAfterFrom(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT * FROM "
	items := s.complete(text, len(text))
	if len(items) != 3 {
		t.Fatalf("got %d items, want every catalog table: %+v", len(items), items)
	}
	// shared table carries the qualifier on label and inserted text
	found := false
	for _, it := range items {
		if it.Label == "ENT.[Master List]" {
			found = true
			if it.InsertText != "ENT.[Master List]" {
				t.Errorf("InsertText = %q", it.InsertText)
			}
		}
	}
	if !found {
		t.Errorf("shared table not qualified: %+v", items)
	}
}

func TestCompleteTablesFiltersByPartialWord(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT * FROM Sub"
	items := s.complete(text, len(text))
	if len(items) != 1 {
		t.Fatalf("got %d items: %+v", len(items), items)
	}
	if items[0].Label != "Subscribers" {
		t.Errorf("item = %q, want Subscribers", items[0].Label)
	}
}

func TestCompleteFieldsAfterAliasDot(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT s. FROM Subscribers s"
	items := s.complete(text, 9)
	want := []string{"Email", "Status", "SubscriberKey"}
	if len(items) != len(want) {
		t.Fatalf("got %d items: %+v", len(items), items)
	}
	for i, label := range want {
		if items[i].Label != label {
			t.Errorf("item %d = %q, want %q", i, items[i].Label, label)
		}
	}
	if items[0].Detail != "EmailAddress" {
		t.Errorf("Email detail = %q, want the declared type", items[0].Detail)
	}
}

func TestCompleteFieldsAfterAliasDotPartial(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT s.Em FROM Subscribers s"
	items := s.complete(text, 11)
	if len(items) != 1 || items[0].Label != "Email" {
		t.Fatalf("got %+v, want just Email", items)
	}
}

func TestCompleteEntDotListsSharedTables(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT * FROM ENT."
	items := s.complete(text, len(text))
	if len(items) != 1 {
		t.Fatalf("got %d items: %+v", len(items), items)
	}
	// qualifier is already typed, so only the name is inserted
	if items[0].Label != "Master List" || items[0].InsertText != "[Master List]" {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestCompleteSubqueryOutputFields(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT sub. FROM (SELECT SubscriberKey, SentAt FROM SendLog) sub"
	items := s.complete(text, 11)
	if len(items) != 2 {
		t.Fatalf("got %d items: %+v", len(items), items)
	}
	got := []string{items[0].Label, items[1].Label}
	if got[0] != "SentAt" || got[1] != "SubscriberKey" {
		t.Errorf("labels = %v", got)
	}
}

func TestCompleteJoinPredicatesAfterOn(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT * FROM SendLog l JOIN Subscribers s ON "
	items := s.complete(text, len(text))
	if len(items) == 0 {
		t.Fatal("no join predicates suggested")
	}
	if items[0].InsertText != "l.SubscriberKey = s.SubscriberKey" {
		t.Errorf("InsertText = %q", items[0].InsertText)
	}
}

func TestCompleteKeywordFallback(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT Email FROM Subscribers WHERE Email = 'x' ORD"
	items := s.complete(text, len(text))
	var kw []string
	for _, it := range items {
		kw = append(kw, it.Label)
	}
	joined := strings.Join(kw, ",")
	if !strings.Contains(joined, "ORDER BY") {
		t.Errorf("ORDER BY not offered: %v", kw)
	}
}

func TestCompleteScopedFieldsInWhere(t *testing.T) {
	s := newTestServer(t)
	text := "SELECT * FROM Subscribers WHERE Sta"
	items := s.complete(text, len(text))
	found := false
	for _, it := range items {
		if it.Label == "Status" {
			found = true
		}
	}
	if !found {
		t.Errorf("Status not offered: %+v", items)
	}
}
