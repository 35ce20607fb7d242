package handler

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dexls/dexls/internal/lsp"
	"github.com/dexls/dexls/lint"
)

func testDiags() []lint.Diagnostic {
	return []lint.Diagnostic{
		{Message: "broken", Severity: lint.Error, Start: 9, End: 13},
		{Message: "start with SELECT", Severity: lint.Prereq, Start: 0, End: 4},
		{Message: "advisory", Severity: lint.Warning, Start: 0, End: 4},
	}
}

const testCatalog = `
dataExtensions:
  - id: de1
    name: Subscribers
    folderId: f-local
    fields:
      - name: SubscriberKey
        fieldType: Text
        isPrimaryKey: true
      - name: Email
        fieldType: EmailAddress
      - Status
  - id: de2
    name: SendLog
    folderId: f-local
    fields: [JobID, SubscriberKey, SentAt]
  - id: de3
    name: Master List
    folderId: f-shared
    fields: [SubscriberKey]
folders:
  - id: f-local
    name: My Data
  - id: f-shared
    name: Shared Items
    type: shared
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer()
	if err := s.store.LoadYAML([]byte(testCatalog)); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Shutdown)
	return s
}

func openTestFile(t *testing.T, s *Server, uri, text string) {
	t.Helper()
	s.openFile(uri, "sql")
	if err := s.updateFile(context.Background(), uri, text); err != nil {
		t.Fatal(err)
	}
}

// notifyRecorder captures server-to-client notifications.
type notifyRecorder struct {
	mu    sync.Mutex
	diags []lsp.PublishDiagnosticsParams
}

func (r *notifyRecorder) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
		var params lsp.PublishDiagnosticsParams
		if err := json.Unmarshal(*req.Params, &params); err == nil {
			r.mu.Lock()
			r.diags = append(r.diags, params)
			r.mu.Unlock()
		}
	}
	return nil, nil
}

func (r *notifyRecorder) latest() (lsp.PublishDiagnosticsParams, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.diags) == 0 {
		return lsp.PublishDiagnosticsParams{}, false
	}
	return r.diags[len(r.diags)-1], true
}

func newTestConn(t *testing.T, s *Server) (*jsonrpc2.Conn, *notifyRecorder) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	serverConn := jsonrpc2.NewConn(
		context.Background(),
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(s.Handle),
	)
	rec := &notifyRecorder{}
	clientConn := jsonrpc2.NewConn(
		context.Background(),
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(rec.handle),
	)
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})
	return clientConn, rec
}

func TestInitializeCapabilities(t *testing.T) {
	s := newTestServer(t)
	client, _ := newTestConn(t, s)

	var result lsp.InitializeResult
	if err := client.Call(context.Background(), "initialize", lsp.InitializeParams{}, &result); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if result.Capabilities.TextDocumentSync != lsp.TDSKFull {
		t.Errorf("TextDocumentSync = %v, want full", result.Capabilities.TextDocumentSync)
	}
	if result.Capabilities.CompletionProvider == nil {
		t.Fatal("no completion provider advertised")
	}
	if !result.Capabilities.DocumentFormattingProvider {
		t.Error("no formatting provider advertised")
	}
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	s := newTestServer(t)
	client, rec := newTestConn(t, s)

	var initResult lsp.InitializeResult
	if err := client.Call(context.Background(), "initialize", lsp.InitializeParams{}, &initResult); err != nil {
		t.Fatal(err)
	}
	err := client.Notify(context.Background(), "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{
			URI:  "file:///query.sql",
			Text: "SELECT * FROM A; SELECT * FROM B",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if params, ok := rec.latest(); ok {
			if len(params.Diagnostics) == 0 {
				t.Fatalf("no diagnostics in %+v", params)
			}
			if !strings.Contains(params.Diagnostics[0].Message, "single SQL statement") {
				t.Fatalf("unexpected diagnostic: %+v", params.Diagnostics[0])
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no publishDiagnostics notification arrived")
}

func TestUnknownMethodRejected(t *testing.T) {
	s := newTestServer(t)
	client, _ := newTestConn(t, s)

	var result interface{}
	err := client.Call(context.Background(), "textDocument/hover", struct{}{}, &result)
	if err == nil {
		t.Fatal("unsupported method accepted")
	}
}

func TestUpdateFileUnknownURI(t *testing.T) {
	s := newTestServer(t)
	if err := s.updateFile(context.Background(), "file:///nope.sql", "SELECT 1"); err == nil {
		t.Error("update of unopened document accepted")
	}
}

func TestToLSPDiagnosticsMapping(t *testing.T) {
	text := "line one\nline two"
	diags := toLSPDiagnostics(text, testDiags())
	if len(diags) != 3 {
		t.Fatalf("got %d diagnostics", len(diags))
	}
	if diags[0].Severity != lsp.DiagnosticSeverityError {
		t.Errorf("error mapped to %d", diags[0].Severity)
	}
	if diags[1].Severity != lsp.DiagnosticSeverityError || !strings.HasPrefix(diags[1].Message, "required: ") {
		t.Errorf("prereq mapping wrong: %+v", diags[1])
	}
	if diags[2].Severity != lsp.DiagnosticSeverityWarning {
		t.Errorf("warning mapped to %d", diags[2].Severity)
	}
	if diags[0].Range.Start.Line != 1 || diags[0].Range.Start.Character != 0 {
		t.Errorf("range start = %+v", diags[0].Range.Start)
	}
}
