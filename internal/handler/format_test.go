package handler

import "testing"

func TestFormatEditsWholeDocument(t *testing.T) {
	text := "select a ,b from T"
	edits := formatEdits(text)
	if len(edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(edits))
	}
	if edits[0].NewText != "SELECT a, b FROM T" {
		t.Errorf("NewText = %q", edits[0].NewText)
	}
	if edits[0].Range.Start.Line != 0 || edits[0].Range.Start.Character != 0 {
		t.Errorf("range start = %+v", edits[0].Range.Start)
	}
	if edits[0].Range.End.Character != len(text) {
		t.Errorf("range end = %+v", edits[0].Range.End)
	}
}

func TestFormatEditsAlreadyFormatted(t *testing.T) {
	if edits := formatEdits("SELECT a, b FROM T"); len(edits) != 0 {
		t.Errorf("got %d edits, want none", len(edits))
	}
}

func TestFormatEditsEmpty(t *testing.T) {
	if edits := formatEdits(""); len(edits) != 0 {
		t.Errorf("got %d edits, want none", len(edits))
	}
}
