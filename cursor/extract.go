package cursor

import (
	"github.com/dexls/dexls/token"
)

// pendingSubquery tracks an open "( SELECT" form until its closing
// parenthesis is reached.
type pendingSubquery struct {
	openDepth  int
	start      int
	collecting bool
	fields     []string
}

// extractTables walks the token stream once and builds every table
// reference, tracking parenthesis depth so references nested in
// subqueries carry their scope.
func extractTables(toks []token.Token) []*TableReference {
	var refs []*TableReference
	var pending []*pendingSubquery
	clauseAt := map[int]string{}
	depth := 0

	i := 0
	for i < len(toks) {
		tok := &toks[i]
		switch {
		case tok.IsComment():
			i++
			continue

		case tok.MatchPunct("("):
			// A parenthesized SELECT is a subquery scope.
			if j := nextMeaningful(toks, i+1); j < len(toks) && toks[j].MatchKeyword("SELECT") {
				pending = append(pending, &pendingSubquery{openDepth: depth, start: tok.Start})
			}
			depth++
			i++
			continue

		case tok.MatchPunct(")"):
			if depth > 0 {
				depth--
			}
			delete(clauseAt, depth+1)
			if len(pending) > 0 && pending[len(pending)-1].openDepth == depth {
				p := pending[len(pending)-1]
				pending = pending[:len(pending)-1]
				ref := &TableReference{
					IsSubquery:   true,
					ScopeDepth:   depth,
					Start:        p.start,
					End:          tok.End,
					OutputFields: p.fields,
				}
				i = parseAlias(toks, i+1, ref)
				// Only subqueries used as a table source join the scope.
				if clauseAt[depth] == "FROM" || clauseAt[depth] == "JOIN" {
					refs = append(refs, ref)
				}
				continue
			}
			i++
			continue
		}

		if tok.Kind == token.Keyword {
			switch tok.Upper() {
			case "FROM", "JOIN":
				clauseAt[depth] = tok.Upper()
				if len(pending) > 0 && pending[len(pending)-1].openDepth == depth-1 {
					pending[len(pending)-1].collecting = false
				}
				j := nextMeaningful(toks, i+1)
				if ref, next := parseTableSource(toks, j, depth); ref != nil {
					refs = append(refs, ref)
					i = next
					continue
				}
				i = i + 1
				continue
			case "SELECT":
				clauseAt[depth] = "SELECT"
				if len(pending) > 0 && pending[len(pending)-1].openDepth == depth-1 {
					pending[len(pending)-1].collecting = true
				}
			case "WHERE", "GROUP", "HAVING", "ORDER", "ON", "UNION":
				clauseAt[depth] = tok.Upper()
			}
			if tok.MatchKeyword("AS") && collectingTop(pending, depth) != nil {
				// alias replaces the collected expression name
				if j := nextMeaningful(toks, i+1); j < len(toks) && toks[j].IsName() {
					p := collectingTop(pending, depth)
					if len(p.fields) > 0 {
						p.fields[len(p.fields)-1] = toks[j].Name()
					} else {
						p.fields = append(p.fields, toks[j].Name())
					}
					i = j + 1
					continue
				}
			}
			i++
			continue
		}

		// Collect the output fields of an open subquery's select list.
		if p := collectingTop(pending, depth); p != nil {
			switch {
			case tok.IsName():
				if i > 0 && toks[i-1].MatchPunct(".") && len(p.fields) > 0 {
					p.fields[len(p.fields)-1] = tok.Name()
				} else {
					p.fields = append(p.fields, tok.Name())
				}
			case tok.Kind == token.Operator && tok.Text == "*":
				p.fields = append(p.fields, "*")
			}
		}

		// A comma continues a FROM list with another table source.
		if tok.MatchPunct(",") && (clauseAt[depth] == "FROM") {
			j := nextMeaningful(toks, i+1)
			if ref, next := parseTableSource(toks, j, depth); ref != nil {
				refs = append(refs, ref)
				i = next
				continue
			}
		}
		i++
	}
	return refs
}

func collectingTop(pending []*pendingSubquery, depth int) *pendingSubquery {
	if len(pending) == 0 {
		return nil
	}
	p := pending[len(pending)-1]
	if p.collecting && p.openDepth == depth-1 {
		return p
	}
	return nil
}

func nextMeaningful(toks []token.Token, i int) int {
	for i < len(toks) && toks[i].IsComment() {
		i++
	}
	return i
}

// parseTableSource parses a (possibly qualified, possibly aliased) table
// name starting at i. Subquery sources are handled by the caller; this
// only accepts name tokens.
func parseTableSource(toks []token.Token, i, depth int) (*TableReference, int) {
	if i >= len(toks) || !toks[i].IsName() {
		return nil, i
	}
	ref := &TableReference{
		Name:          toks[i].Name(),
		QualifiedName: toks[i].Text,
		IsBracketed:   toks[i].Kind == token.BracketIdent,
		ScopeDepth:    depth,
		Start:         toks[i].Start,
		End:           toks[i].End,
	}
	i++
	// Dotted qualification, including the ENT. shared-scope prefix.
	for i+1 < len(toks) && toks[i].MatchPunct(".") && toks[i+1].IsName() {
		ref.QualifiedName += "." + toks[i+1].Text
		ref.Name = toks[i+1].Name()
		ref.IsBracketed = toks[i+1].Kind == token.BracketIdent
		ref.End = toks[i+1].End
		i += 2
	}
	return ref, parseAlias(toks, i, ref)
}

// parseAlias consumes an optional implicit or AS alias following a table
// source and records it on ref.
func parseAlias(toks []token.Token, i int, ref *TableReference) int {
	i = nextMeaningful(toks, i)
	if i < len(toks) && toks[i].MatchKeyword("AS") {
		j := nextMeaningful(toks, i+1)
		if j < len(toks) && toks[j].IsName() {
			ref.Alias = toks[j].Name()
			ref.End = toks[j].End
			return j + 1
		}
		return i + 1
	}
	if i < len(toks) && toks[i].IsName() {
		ref.Alias = toks[i].Name()
		ref.End = toks[i].End
		return i + 1
	}
	return i
}
