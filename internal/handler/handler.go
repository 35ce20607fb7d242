package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dexls/dexls/internal/analyzer"
	"github.com/dexls/dexls/internal/config"
	"github.com/dexls/dexls/internal/lsp"
	"github.com/dexls/dexls/internal/metadata"
)

type Server struct {
	cfg   *config.Config
	store *metadata.Store

	mu    sync.Mutex
	conn  *jsonrpc2.Conn
	files map[string]*File
}

// File is one open document with its own analysis session.
type File struct {
	LanguageID string
	Text       string
	Analyzer   *analyzer.Analyzer
}

func NewServer() *Server {
	return &Server{
		store: metadata.NewStore(),
		files: make(map[string]*File),
	}
}

// SetConfig applies a loaded config: catalog sources now, debounce for
// sessions opened later.
func (s *Server) SetConfig(cfg *config.Config) error {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	if cfg == nil {
		return nil
	}
	if cfg.Catalog != "" {
		return s.store.LoadYAMLFile(cfg.Catalog)
	}
	if cfg.Snapshot != "" {
		return s.store.LoadSnapshot(context.Background(), cfg.Snapshot)
	}
	return nil
}

// Store exposes the metadata catalog, mainly for the CLI subcommands.
func (s *Server) Store() *metadata.Store {
	return s.store
}

func (s *Server) debounce() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg != nil && s.cfg.LintDebounceMs > 0 {
		return time.Duration(s.cfg.LintDebounceMs) * time.Millisecond
	}
	return analyzer.DefaultDebounce
}

func (s *Server) disabledRules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return nil
	}
	return s.cfg.DisabledRules
}

func (s *Server) maxSuggestions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return 0
	}
	return s.cfg.MaxSuggestions
}

func panicf(r interface{}, format string, v ...interface{}) error {
	if r != nil {
		// Same as net/http
		const size = 64 << 10
		buf := make([]byte, size)
		buf = buf[:runtime.Stack(buf, false)]
		id := fmt.Sprintf(format, v...)
		log.Printf("panic serving %s: %v\n%s", id, r, string(buf))
		return fmt.Errorf("unexpected panic: %v", r)
	}
	return nil
}

func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	// Prevent any uncaught panics from taking the entire server down.
	defer func() {
		if perr := panicf(recover(), "%v", req.Method); perr != nil {
			err = perr
		}
	}()

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(ctx, conn, req)
	case "initialized":
		return
	case "shutdown":
		return s.handleShutdown(ctx, conn, req)
	case "exit":
		return
	case "textDocument/didOpen":
		return s.handleTextDocumentDidOpen(ctx, conn, req)
	case "textDocument/didChange":
		return s.handleTextDocumentDidChange(ctx, conn, req)
	case "textDocument/didSave":
		return s.handleTextDocumentDidSave(ctx, conn, req)
	case "textDocument/didClose":
		return s.handleTextDocumentDidClose(ctx, conn, req)
	case "textDocument/completion":
		return s.handleTextDocumentCompletion(ctx, conn, req)
	case "textDocument/formatting":
		return s.handleTextDocumentFormatting(ctx, conn, req)
	case "workspace/didChangeConfiguration":
		return s.handleWorkspaceDidChangeConfiguration(ctx, conn, req)
	}

	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not supported: %s", req.Method)}
}

func (s *Server) handleInitialize(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.InitializeParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	// A config pushed through initializationOptions wins over the file.
	// A bad catalog must not fail the handshake, the editor just hears
	// about it.
	if params.InitializationOptions.Dexls != nil {
		if err := s.SetConfig(params.InitializationOptions.Dexls); err != nil {
			lsp.NewLspMessenger(conn).ShowError(ctx, fmt.Sprintf("failed to apply initialization options: %v", err))
		}
	}

	return lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: lsp.TDSKFull,
			CompletionProvider: &lsp.CompletionOptions{
				TriggerCharacters: []string{".", "["},
			},
			DocumentFormattingProvider: true,
		},
	}, nil
}

func (s *Server) handleShutdown(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	s.Shutdown()
	return nil, nil
}

// Shutdown tears down every open analysis session.
func (s *Server) Shutdown() {
	s.mu.Lock()
	files := make([]*File, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	s.files = make(map[string]*File)
	s.mu.Unlock()
	for _, f := range files {
		f.Analyzer.Close()
	}
}

func (s *Server) handleTextDocumentDidOpen(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DidOpenTextDocumentParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	s.openFile(params.TextDocument.URI, params.TextDocument.LanguageID)
	if err := s.updateFile(ctx, params.TextDocument.URI, params.TextDocument.Text); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleTextDocumentDidChange(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DidChangeTextDocumentParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}
	if len(params.ContentChanges) == 0 {
		return nil, nil
	}

	if err := s.updateFile(ctx, params.TextDocument.URI, params.ContentChanges[0].Text); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleTextDocumentDidSave(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DidSaveTextDocumentParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	if params.Text != "" {
		return nil, s.updateFile(ctx, params.TextDocument.URI, params.Text)
	}
	return nil, nil
}

func (s *Server) handleTextDocumentDidClose(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DidCloseTextDocumentParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	s.closeFile(ctx, params.TextDocument.URI)
	return nil, nil
}

func (s *Server) handleWorkspaceDidChangeConfiguration(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DidChangeConfigurationParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}
	if params.Settings.Dexls == nil {
		return nil, nil
	}
	if err := s.SetConfig(params.Settings.Dexls); err != nil {
		// a notification has no error channel back to the editor
		lsp.NewLspMessenger(conn).ShowError(ctx, fmt.Sprintf("failed to apply configuration: %v", err))
	}
	return nil, nil
}

func (s *Server) openFile(uri string, languageID string) {
	f := &File{LanguageID: languageID}
	f.Analyzer = analyzer.New(
		analyzer.WithDebounce(s.debounce()),
		analyzer.WithDisabledRules(s.disabledRules()),
		analyzer.WithTableFields(s.store.TableFields),
		analyzer.WithOnUpdate(func() { s.publishDiagnostics(context.Background(), uri) }),
	)
	s.mu.Lock()
	if old, ok := s.files[uri]; ok {
		defer old.Analyzer.Close()
	}
	s.files[uri] = f
	s.mu.Unlock()
}

func (s *Server) closeFile(ctx context.Context, uri string) {
	s.mu.Lock()
	f, ok := s.files[uri]
	delete(s.files, uri)
	conn := s.conn
	s.mu.Unlock()
	if !ok {
		return
	}
	f.Analyzer.Close()
	if conn != nil {
		// clear stale squiggles in the editor
		conn.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{URI: uri})
	}
}

func (s *Server) updateFile(ctx context.Context, uri string, text string) error {
	s.mu.Lock()
	f, ok := s.files[uri]
	if ok {
		f.Text = text
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("document not found: %v", uri)
	}
	f.Analyzer.SetText(text)
	s.publishDiagnostics(ctx, uri)
	return nil
}

func (s *Server) file(uri string) (*File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[uri]
	return f, ok
}
