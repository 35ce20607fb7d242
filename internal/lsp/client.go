package lsp

import (
	"context"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dexls/dexls/internal/debug"
)

// Messenger sends user-visible notifications back to the editor.
type Messenger interface {
	ShowLog(context.Context, string) error
	ShowInfo(context.Context, string) error
	ShowWarning(context.Context, string) error
	ShowError(context.Context, string) error
}

type LspMessenger struct {
	conn *jsonrpc2.Conn
}

func NewLspMessenger(conn *jsonrpc2.Conn) Messenger {
	return &LspMessenger{
		conn: conn,
	}
}

func (m *LspMessenger) show(ctx context.Context, typ MessageType, message string) error {
	debug.DPrintln("Send Message:", message)
	params := &ShowMessageParams{
		Type:    typ,
		Message: message,
	}
	return m.conn.Notify(ctx, "window/showMessage", params)
}

func (m *LspMessenger) ShowLog(ctx context.Context, message string) error {
	return m.show(ctx, Log, message)
}

func (m *LspMessenger) ShowInfo(ctx context.Context, message string) error {
	return m.show(ctx, Info, message)
}

func (m *LspMessenger) ShowWarning(ctx context.Context, message string) error {
	return m.show(ctx, Warning, message)
}

func (m *LspMessenger) ShowError(ctx context.Context, message string) error {
	return m.show(ctx, Error, message)
}
