package analyzer

import "github.com/dexls/dexls/lint"

// Message types exchanged with the background worker. The set is closed;
// both sides switch exhaustively on the discriminant.
const (
	TypeInit       = "init"
	TypeLint       = "lint"
	TypeReady      = "ready"
	TypeLintResult = "lint-result"
	TypeError      = "error"
)

// Request travels from the session to the worker.
type Request struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	SQL       string `json:"sql,omitempty"`
}

// Response travels from the worker back to the session. Duration is the
// lint pass wall time in milliseconds.
type Response struct {
	Type        string            `json:"type"`
	RequestID   string            `json:"requestId,omitempty"`
	Diagnostics []lint.Diagnostic `json:"diagnostics,omitempty"`
	Duration    int64             `json:"duration,omitempty"`
	Message     string            `json:"message,omitempty"`
}
