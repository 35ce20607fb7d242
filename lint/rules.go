package lint

import (
	"fmt"
	"strings"

	"github.com/dexls/dexls/dialect"
	"github.com/dexls/dexls/token"
)

// meaningful returns the indices of tokens that are not comments.
func meaningful(toks []token.Token) []int {
	idx := make([]int, 0, len(toks))
	for i := range toks {
		if toks[i].IsComment() {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

// tokenDepths assigns each token its parenthesis depth. An opening paren
// carries its outer depth; its contents are one deeper.
func tokenDepths(toks []token.Token) []int {
	depths := make([]int, len(toks))
	depth := 0
	for i := range toks {
		switch {
		case toks[i].MatchPunct("("):
			depths[i] = depth
			depth++
		case toks[i].MatchPunct(")"):
			if depth > 0 {
				depth--
			}
			depths[i] = depth
		default:
			depths[i] = depth
		}
	}
	return depths
}

// clauseAtTopLevel tracks, for every token, the current statement clause
// at parenthesis depth zero.
func clauseAtTopLevel(toks []token.Token) []string {
	clauses := make([]string, len(toks))
	depths := tokenDepths(toks)
	current := ""
	for i := range toks {
		if depths[i] == 0 && toks[i].Kind == token.Keyword && dialect.ClauseKeywords[toks[i].Upper()] {
			current = toks[i].Upper()
		}
		clauses[i] = current
	}
	return clauses
}

func diag(sev Severity, tok *token.Token, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Start:    tok.Start,
		End:      tok.End,
	}
}

// missingSelect reports the structural precondition that a query is a
// SELECT statement.
type missingSelect struct{}

func (*missingSelect) ID() string   { return "missing-select" }
func (*missingSelect) Name() string { return "Query must be a SELECT statement" }

func (r *missingSelect) Check(ctx *Context) []Diagnostic {
	idx := meaningful(ctx.Tokens)
	if len(idx) == 0 {
		return nil
	}
	first := &ctx.Tokens[idx[0]]
	if first.MatchKeyword("SELECT") {
		return nil
	}
	// A prohibited statement keyword is reported by its own rule.
	if first.Kind == token.Keyword && dialect.IsProhibited(first.Upper()) {
		return nil
	}
	return []Diagnostic{diag(Prereq, first, "queries must begin with a SELECT statement")}
}

// prohibitedKeywords flags DML/DDL/transactional/procedural statements,
// which the read-only dialect rejects.
type prohibitedKeywords struct{}

func (*prohibitedKeywords) ID() string   { return "prohibited-keywords" }
func (*prohibitedKeywords) Name() string { return "Prohibited statement keywords" }

func (r *prohibitedKeywords) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	for i := range ctx.Tokens {
		tok := &ctx.Tokens[i]
		if tok.Kind != token.Keyword {
			continue
		}
		if !dialect.IsProhibited(tok.Upper()) {
			continue
		}
		diags = append(diags, diag(Error, tok, "'%s' is not allowed: %s", tok.Upper(), dialect.ProhibitedReason(tok.Upper())))
	}
	return diags
}

// multiStatement flags a second statement after a semicolon. Semicolons
// inside strings and comments never count, and an escaped quote ('')
// does not terminate its string.
type multiStatement struct{}

func (*multiStatement) ID() string   { return "multi-statement" }
func (*multiStatement) Name() string { return "Single statement per query" }

func (r *multiStatement) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	idx := meaningful(ctx.Tokens)
	for n, i := range idx {
		if !ctx.Tokens[i].MatchPunct(";") {
			continue
		}
		if n+1 >= len(idx) {
			break
		}
		next := &ctx.Tokens[idx[n+1]]
		if next.Kind == token.Keyword && dialect.StatementStartKeywords[next.Upper()] {
			diags = append(diags, diag(Error, next, "queries must contain a single SQL statement"))
		}
	}
	return diags
}

// commaValidation flags duplicate, leading and trailing commas.
type commaValidation struct{}

func (*commaValidation) ID() string   { return "comma-validation" }
func (*commaValidation) Name() string { return "Comma placement" }

var commaClosers = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP": true, "HAVING": true,
	"ORDER": true, "JOIN": true, "ON": true, "UNION": true,
}

func (r *commaValidation) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	idx := meaningful(ctx.Tokens)
	for n, i := range idx {
		tok := &ctx.Tokens[i]
		if !tok.MatchPunct(",") {
			continue
		}
		if n == 0 {
			diags = append(diags, diag(Error, tok, "unexpected comma"))
			continue
		}
		prev := &ctx.Tokens[idx[n-1]]
		if prev.MatchPunct(",") {
			diags = append(diags, diag(Error, tok, "duplicate comma"))
			continue
		}
		if prev.MatchKeyword("SELECT", "FROM", "BY") {
			diags = append(diags, diag(Error, tok, "unexpected comma after %s", prev.Upper()))
			continue
		}
		if n+1 >= len(idx) {
			diags = append(diags, diag(Error, tok, "trailing comma"))
			continue
		}
		next := &ctx.Tokens[idx[n+1]]
		if next.MatchPunct(")") || next.MatchPunct(";") ||
			(next.Kind == token.Keyword && commaClosers[next.Upper()]) {
			diags = append(diags, diag(Error, tok, "trailing comma"))
		}
	}
	return diags
}

// offsetWithoutOrderBy enforces the dialect's pagination quirk: an
// OFFSET clause is only valid after ORDER BY.
type offsetWithoutOrderBy struct{}

func (*offsetWithoutOrderBy) ID() string   { return "offset-without-order-by" }
func (*offsetWithoutOrderBy) Name() string { return "OFFSET requires ORDER BY" }

func (r *offsetWithoutOrderBy) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	depths := tokenDepths(ctx.Tokens)
	for i := range ctx.Tokens {
		tok := &ctx.Tokens[i]
		if !tok.MatchKeyword("OFFSET") {
			continue
		}
		found := false
		for j := i - 1; j >= 0; j-- {
			if depths[j] < depths[i] {
				break
			}
			if depths[j] > depths[i] {
				continue
			}
			if ctx.Tokens[j].MatchPunct(";") {
				break
			}
			if ctx.Tokens[j].MatchKeyword("ORDER") {
				found = true
				break
			}
		}
		if !found {
			diags = append(diags, diag(Error, tok, "OFFSET requires an ORDER BY clause"))
		}
	}
	return diags
}

// orderByInSubquery flags ORDER BY inside a subquery, which the backend
// rejects.
type orderByInSubquery struct{}

func (*orderByInSubquery) ID() string   { return "order-by-in-subquery" }
func (*orderByInSubquery) Name() string { return "ORDER BY inside a subquery" }

func (r *orderByInSubquery) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	idx := meaningful(ctx.Tokens)
	var stack []bool // one entry per open paren: is it a subquery
	for n, i := range idx {
		tok := &ctx.Tokens[i]
		switch {
		case tok.MatchPunct("("):
			isSub := n+1 < len(idx) && ctx.Tokens[idx[n+1]].MatchKeyword("SELECT")
			stack = append(stack, isSub)
		case tok.MatchPunct(")"):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case tok.MatchKeyword("ORDER"):
			for _, isSub := range stack {
				if isSub {
					diags = append(diags, diag(Error, tok, "ORDER BY is not allowed in a subquery"))
					break
				}
			}
		}
	}
	return diags
}

// aliasInClause flags select-list aliases referenced in WHERE, GROUP BY
// or HAVING; the dialect resolves those clauses before the select list.
type aliasInClause struct{}

func (*aliasInClause) ID() string   { return "alias-in-clause" }
func (*aliasInClause) Name() string { return "Alias used before it is defined" }

func (r *aliasInClause) Check(ctx *Context) []Diagnostic {
	depths := tokenDepths(ctx.Tokens)
	clauses := clauseAtTopLevel(ctx.Tokens)
	idx := meaningful(ctx.Tokens)

	aliases := map[string]bool{}
	for n, i := range idx {
		if depths[i] != 0 || clauses[i] != "SELECT" {
			continue
		}
		if !ctx.Tokens[i].MatchKeyword("AS") || n+1 >= len(idx) {
			continue
		}
		next := &ctx.Tokens[idx[n+1]]
		if next.IsName() {
			aliases[strings.ToLower(next.Name())] = true
		}
	}
	if len(aliases) == 0 {
		return nil
	}

	clauseNames := map[string]string{"WHERE": "WHERE", "GROUP": "GROUP BY", "HAVING": "HAVING"}
	var diags []Diagnostic
	for n, i := range idx {
		tok := &ctx.Tokens[i]
		clause, ok := clauseNames[clauses[i]]
		if !ok || depths[i] != 0 {
			continue
		}
		if !tok.IsName() || tok.FuncCall {
			continue
		}
		if !aliases[strings.ToLower(tok.Name())] {
			continue
		}
		// qualified references name a field, not an alias
		if n > 0 && ctx.Tokens[idx[n-1]].MatchPunct(".") {
			continue
		}
		if n+1 < len(idx) && ctx.Tokens[idx[n+1]].MatchPunct(".") {
			continue
		}
		diags = append(diags, diag(Error, tok, "alias '%s' cannot be referenced in the %s clause; repeat the expression instead", tok.Name(), clause))
	}
	return diags
}

// unbracketedNames warns when a FROM/JOIN table name looks like it
// contains spaces or dashes without bracket quoting.
type unbracketedNames struct{}

func (*unbracketedNames) ID() string   { return "unbracketed-names" }
func (*unbracketedNames) Name() string { return "Names with special characters need brackets" }

func (r *unbracketedNames) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	idx := meaningful(ctx.Tokens)
	for n, i := range idx {
		if !ctx.Tokens[i].MatchKeyword("FROM", "JOIN") {
			continue
		}
		// run of bare words following the clause keyword
		run := []*token.Token{}
		for m := n + 1; m < len(idx); m++ {
			t := &ctx.Tokens[idx[m]]
			if t.Kind == token.Ident {
				run = append(run, t)
				continue
			}
			// adjacent dash splits an unquoted name into several tokens
			if t.Kind == token.Operator && t.Text == "-" && len(run) > 0 && t.Start == run[len(run)-1].End {
				run = append(run, t)
				continue
			}
			break
		}
		if len(run) >= 2 && run[1].Kind == token.Operator {
			last := run[len(run)-1]
			diags = append(diags, Diagnostic{
				Message:  "table name contains special characters and must be wrapped in [brackets]",
				Severity: Warning,
				Start:    run[0].Start,
				End:      last.End,
			})
			continue
		}
		// three bare words cannot be table plus alias
		if len(run) >= 3 {
			diags = append(diags, Diagnostic{
				Message:  "table names containing spaces must be wrapped in [brackets]",
				Severity: Warning,
				Start:    run[0].Start,
				End:      run[len(run)-2].End,
			})
		}
	}
	return diags
}
