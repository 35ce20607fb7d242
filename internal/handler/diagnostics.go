package handler

import (
	"context"

	"github.com/dexls/dexls/internal/debug"
	"github.com/dexls/dexls/internal/lsp"
	"github.com/dexls/dexls/lint"
)

const diagnosticSource = "dexls"

// publishDiagnostics pushes the merged diagnostic set for one document.
// Both the synchronous path and the background update callback land here.
func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	s.mu.Lock()
	conn := s.conn
	f, ok := s.files[uri]
	s.mu.Unlock()
	if !ok || conn == nil {
		return
	}

	params := lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toLSPDiagnostics(f.Text, f.Analyzer.Diagnostics()),
	}
	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		debug.DPrintf("publishDiagnostics: %v\n", err)
	}
}

// toLSPDiagnostics converts engine diagnostics to protocol shape. The
// diagnostics slice is never nil so an empty set clears editor state.
func toLSPDiagnostics(text string, diags []lint.Diagnostic) []lsp.Diagnostic {
	out := make([]lsp.Diagnostic, 0, len(diags))
	src := diagnosticSource
	for _, d := range diags {
		out = append(out, lsp.Diagnostic{
			Range:    lsp.RangeFrom(text, d.Start, d.End),
			Severity: toLSPSeverity(d.Severity),
			Source:   &src,
			Message:  toLSPMessage(d),
		})
	}
	return out
}

// toLSPSeverity maps the engine's three levels onto the protocol's four.
// A prereq blocks execution just like an error does.
func toLSPSeverity(sev lint.Severity) int {
	if sev == lint.Warning {
		return lsp.DiagnosticSeverityWarning
	}
	return lsp.DiagnosticSeverityError
}

// toLSPMessage prefixes prereq findings so they read as "finish this
// first" rather than "this is broken".
func toLSPMessage(d lint.Diagnostic) string {
	if d.Severity == lint.Prereq {
		return "required: " + d.Message
	}
	return d.Message
}
