package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dexls/dexls/format"
	"github.com/dexls/dexls/internal/lsp"
)

func (s *Server) handleTextDocumentFormatting(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.DocumentFormattingParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	f, ok := s.file(params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("document not found: %s", params.TextDocument.URI)
	}
	return formatEdits(f.Text), nil
}

// formatEdits produces a whole-document edit, or nothing when the text
// is already formatted.
func formatEdits(text string) []lsp.TextEdit {
	formatted := format.Format(text)
	if formatted == text {
		return []lsp.TextEdit{}
	}
	return []lsp.TextEdit{
		{
			Range:   lsp.RangeFrom(text, 0, len(text)),
			NewText: formatted,
		},
	}
}
