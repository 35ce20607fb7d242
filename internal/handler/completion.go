package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/dexls/dexls/cursor"
	"github.com/dexls/dexls/internal/lsp"
	"github.com/dexls/dexls/suggest"
)

func (s *Server) handleTextDocumentCompletion(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams}
	}

	var params lsp.CompletionParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}

	f, ok := s.file(params.TextDocument.URI)
	if !ok {
		return nil, fmt.Errorf("document not found: %s", params.TextDocument.URI)
	}

	offset := lsp.OffsetAt(f.Text, params.Position)
	return lsp.CompletionList{
		IsIncomplete: false,
		Items:        s.complete(f.Text, offset),
	}, nil
}

// completionKeywords are offered when no more specific candidate set
// applies.
var completionKeywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "INNER JOIN", "LEFT JOIN", "ON",
	"GROUP BY", "HAVING", "ORDER BY", "AS", "AND", "OR", "NOT", "IN",
	"EXISTS", "LIKE", "BETWEEN", "IS NULL", "IS NOT NULL", "DISTINCT",
	"TOP", "CASE", "WHEN", "THEN", "ELSE", "END", "UNION", "ASC", "DESC",
	"OFFSET", "FETCH",
}

// complete routes the cursor context to the right candidate source.
func (s *Server) complete(text string, offset int) []lsp.CompletionItem {
	items := s.completeItems(text, offset)
	if max := s.maxSuggestions(); max > 0 && len(items) > max {
		items = items[:max]
	}
	return items
}

func (s *Server) completeItems(text string, offset int) []lsp.CompletionItem {
	ctx := cursor.Resolve(text, offset)

	if ctx.AliasBeforeDot != "" {
		return s.completeAfterDot(ctx)
	}
	if ctx.IsAfterFromJoin && (!ctx.HasFromJoinTable || ctx.InFromJoinTable) {
		return tableItems(suggest.Tables(s.store.Candidates(), ctx.CurrentWord))
	}
	if ctx.LastKeyword == "ON" {
		if items := s.completeJoinPredicates(ctx); len(items) > 0 {
			return items
		}
	}

	var items []lsp.CompletionItem
	items = append(items, s.completeScopedFields(ctx)...)
	items = append(items, keywordItems(ctx.CurrentWord)...)
	return items
}

// completeAfterDot handles "alias." and "ENT." references.
func (s *Server) completeAfterDot(ctx *cursor.Context) []lsp.CompletionItem {
	if strings.EqualFold(ctx.AliasBeforeDot, "ENT") {
		var shared []suggest.TableCandidate
		for _, c := range s.store.Candidates() {
			if c.Shared {
				// the qualifier is already typed
				shared = append(shared, suggest.TableCandidate{Name: c.Name, Fields: c.Fields})
			}
		}
		return tableItems(suggest.Tables(shared, ctx.CurrentWord))
	}

	ref := ctx.ResolveAlias(ctx.AliasBeforeDot)
	if ref == nil {
		return nil
	}
	items := fieldItems(suggest.Fields(s.fieldsOf(ref), ctx.CurrentWord))
	types := s.fieldTypes(ref)
	for i := range items {
		items[i].Detail = types[strings.ToLower(items[i].Label)]
	}
	return items
}

// fieldTypes maps lower-cased field names to their declared types, for
// completion detail. Subqueries carry no type information.
func (s *Server) fieldTypes(ref *cursor.TableReference) map[string]string {
	if ref.IsSubquery {
		return nil
	}
	de, ok := s.store.Lookup(ref.Name)
	if !ok {
		return nil
	}
	types := make(map[string]string, len(de.Fields))
	for _, f := range de.Fields {
		types[strings.ToLower(f.Name)] = f.FieldType
	}
	return types
}

// fieldsOf resolves the field list behind a table reference: subqueries
// expose their select list, real tables their catalog fields.
func (s *Server) fieldsOf(ref *cursor.TableReference) []string {
	if ref.IsSubquery {
		return ref.OutputFields
	}
	if de, ok := s.store.Lookup(ref.Name); ok {
		return de.FieldNames()
	}
	return nil
}

// completeScopedFields offers the fields of every table in scope when
// the cursor is in an expression position.
func (s *Server) completeScopedFields(ctx *cursor.Context) []lsp.CompletionItem {
	var items []lsp.CompletionItem
	seen := map[string]bool{}
	for _, ref := range ctx.TablesInScope {
		for _, sg := range suggest.Fields(s.fieldsOf(ref), ctx.CurrentWord) {
			if seen[strings.ToLower(sg.Name)] {
				continue
			}
			seen[strings.ToLower(sg.Name)] = true
			items = append(items, lsp.CompletionItem{
				Label:      sg.Label,
				Kind:       lsp.FieldCompletion,
				Detail:     ref.DisplayName(),
				InsertText: sg.InsertText,
			})
		}
	}
	return items
}

// completeJoinPredicates suggests ON conditions for the two most recent
// tables in the cursor's scope.
func (s *Server) completeJoinPredicates(ctx *cursor.Context) []lsp.CompletionItem {
	var refs []*cursor.TableReference
	for _, ref := range ctx.TablesInScope {
		if ref.ScopeDepth == ctx.Depth && !ref.IsSubquery {
			refs = append(refs, ref)
		}
	}
	if len(refs) < 2 {
		return nil
	}
	left, right := refs[len(refs)-2], refs[len(refs)-1]
	lc, lok := s.store.Lookup(left.Name)
	rc, rok := s.store.Lookup(right.Name)
	if !lok || !rok {
		return nil
	}
	sugs := suggest.Joins(
		suggest.TableCandidate{Name: lc.Name, Fields: lc.FieldNames()},
		suggest.TableCandidate{Name: rc.Name, Fields: rc.FieldNames()},
		left.Alias, right.Alias,
	)
	items := make([]lsp.CompletionItem, 0, len(sugs))
	for _, sg := range sugs {
		items = append(items, lsp.CompletionItem{
			Label:      sg.Label,
			Kind:       lsp.SnippetCompletion,
			Detail:     "join condition",
			InsertText: sg.InsertText,
		})
	}
	return items
}

func tableItems(sugs []suggest.Suggestion) []lsp.CompletionItem {
	items := make([]lsp.CompletionItem, 0, len(sugs))
	for _, sg := range sugs {
		items = append(items, lsp.CompletionItem{
			Label:      sg.Label,
			Kind:       lsp.ClassCompletion,
			Detail:     "data extension",
			InsertText: sg.InsertText,
		})
	}
	return items
}

func fieldItems(sugs []suggest.Suggestion) []lsp.CompletionItem {
	items := make([]lsp.CompletionItem, 0, len(sugs))
	for _, sg := range sugs {
		items = append(items, lsp.CompletionItem{
			Label:      sg.Label,
			Kind:       lsp.FieldCompletion,
			InsertText: sg.InsertText,
		})
	}
	return items
}

func keywordItems(term string) []lsp.CompletionItem {
	var items []lsp.CompletionItem
	upper := strings.ToUpper(term)
	for _, kw := range completionKeywords {
		if term != "" && !strings.HasPrefix(kw, upper) {
			continue
		}
		items = append(items, lsp.CompletionItem{
			Label:      kw,
			Kind:       lsp.KeywordCompletion,
			InsertText: kw,
		})
	}
	return items
}
