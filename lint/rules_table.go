package lint

import (
	"strings"

	"github.com/dexls/dexls/cursor"
	"github.com/dexls/dexls/dialect"
	"github.com/dexls/dexls/token"
)

// subqueryWithoutAlias flags a FROM/JOIN subquery that lacks an alias;
// the backend cannot address the derived table without one.
type subqueryWithoutAlias struct{}

func (*subqueryWithoutAlias) ID() string   { return "subquery-without-alias" }
func (*subqueryWithoutAlias) Name() string { return "Derived tables need an alias" }

func (r *subqueryWithoutAlias) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	idx := meaningful(ctx.Tokens)
	for n, i := range idx {
		tok := &ctx.Tokens[i]
		if !tok.MatchPunct("(") {
			continue
		}
		if n+1 >= len(idx) || !ctx.Tokens[idx[n+1]].MatchKeyword("SELECT") {
			continue
		}
		if n == 0 {
			continue
		}
		prev := &ctx.Tokens[idx[n-1]]
		// Only subqueries in table position need an alias. IN (...),
		// EXISTS (...) and scalar comparisons do not.
		if !prev.MatchKeyword("FROM", "JOIN") && !r.fromListComma(ctx.Tokens, idx, n-1) {
			continue
		}
		end := matchingClose(ctx.Tokens, idx, n)
		if end < 0 {
			// still being typed
			continue
		}
		open := tok
		closeTok := &ctx.Tokens[idx[end]]
		aliased := false
		if end+1 < len(idx) {
			after := &ctx.Tokens[idx[end+1]]
			if after.IsName() {
				aliased = true
			}
			if after.MatchKeyword("AS") && end+2 < len(idx) && ctx.Tokens[idx[end+2]].IsName() {
				aliased = true
			}
		}
		if !aliased {
			diags = append(diags, Diagnostic{
				Message:  "subquery in FROM must have an alias",
				Severity: Error,
				Start:    open.Start,
				End:      closeTok.End,
			})
		}
	}
	return diags
}

// fromListComma reports whether the comma at position n continues a FROM
// list, walking back at the comma's depth for the owning clause keyword.
func (r *subqueryWithoutAlias) fromListComma(toks []token.Token, idx []int, n int) bool {
	if !toks[idx[n]].MatchPunct(",") {
		return false
	}
	depth := 0
	for m := n - 1; m >= 0; m-- {
		t := &toks[idx[m]]
		switch {
		case t.MatchPunct(")"):
			depth++
		case t.MatchPunct("("):
			if depth == 0 {
				return false
			}
			depth--
		case depth == 0 && t.Kind == token.Keyword:
			switch t.Upper() {
			case "FROM":
				return true
			case "SELECT", "WHERE", "GROUP", "HAVING", "ORDER", "JOIN", "ON", "UNION":
				return false
			}
		}
	}
	return false
}

// matchingClose returns the meaningful index of the ")" balancing the
// "(" at meaningful index n, or -1 when unterminated.
func matchingClose(toks []token.Token, idx []int, n int) int {
	depth := 0
	for m := n; m < len(idx); m++ {
		t := &toks[idx[m]]
		if t.MatchPunct("(") {
			depth++
		}
		if t.MatchPunct(")") {
			depth--
			if depth == 0 {
				return m
			}
		}
	}
	return -1
}

// selfJoinSameAlias flags joining a table to itself without distinct
// aliases; every reference would resolve to the same source.
type selfJoinSameAlias struct{}

func (*selfJoinSameAlias) ID() string   { return "self-join-same-alias" }
func (*selfJoinSameAlias) Name() string { return "Self join needs distinct aliases" }

func (r *selfJoinSameAlias) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	refs := cursor.ExtractTables(ctx.SQL)
	for i, ref := range refs {
		if ref.IsSubquery {
			continue
		}
		for _, other := range refs[:i] {
			if other.IsSubquery || other.ScopeDepth != ref.ScopeDepth {
				continue
			}
			if !strings.EqualFold(other.Name, ref.Name) {
				continue
			}
			if !strings.EqualFold(other.Alias, ref.Alias) {
				continue
			}
			diags = append(diags, Diagnostic{
				Message:  "self join of '" + ref.Name + "' requires a distinct alias on each reference",
				Severity: Error,
				Start:    ref.Start,
				End:      ref.End,
			})
			break
		}
	}
	return diags
}

// unsupportedFunctions flags functions the dialect does not ship,
// naming the supported alternative when one exists.
type unsupportedFunctions struct{}

func (*unsupportedFunctions) ID() string   { return "unsupported-functions" }
func (*unsupportedFunctions) Name() string { return "Unsupported function" }

func (r *unsupportedFunctions) Check(ctx *Context) []Diagnostic {
	var diags []Diagnostic
	for i := range ctx.Tokens {
		tok := &ctx.Tokens[i]
		if !tok.FuncCall {
			continue
		}
		if tok.Kind != token.Ident && tok.Kind != token.Keyword {
			continue
		}
		fn, ok := dialect.LookupUnsupportedFunction(tok.Text)
		if !ok {
			continue
		}
		msg := "function " + strings.ToUpper(fn.Name) + "() is not supported"
		if fn.Alternative != "" {
			msg += "; use " + fn.Alternative + " instead"
		}
		diags = append(diags, Diagnostic{
			Message:  msg,
			Severity: Error,
			Start:    tok.Start,
			End:      tok.End,
		})
	}
	return diags
}

// ambiguousField warns when an unqualified field name exists in more
// than one joined table. Needs field metadata; silent without it.
type ambiguousField struct{}

func (*ambiguousField) ID() string   { return "ambiguous-field" }
func (*ambiguousField) Name() string { return "Ambiguous field reference" }

func (r *ambiguousField) Check(ctx *Context) []Diagnostic {
	if len(ctx.TableFields) == 0 {
		return nil
	}
	refs := cursor.ExtractTables(ctx.SQL)
	var tables []*cursor.TableReference
	for _, ref := range refs {
		if ref.ScopeDepth == 0 && !ref.IsSubquery {
			tables = append(tables, ref)
		}
	}
	if len(tables) < 2 {
		return nil
	}

	// how many of the joined tables carry each field name
	fieldOwners := map[string]int{}
	sourceNames := map[string]bool{}
	for _, ref := range tables {
		sourceNames[strings.ToLower(ref.Name)] = true
		if ref.Alias != "" {
			sourceNames[strings.ToLower(ref.Alias)] = true
		}
		for _, f := range ctx.TableFields[strings.ToLower(ref.Name)] {
			fieldOwners[strings.ToLower(f)]++
		}
	}

	var diags []Diagnostic
	idx := meaningful(ctx.Tokens)
	for n, i := range idx {
		tok := &ctx.Tokens[i]
		if !tok.IsName() || tok.FuncCall {
			continue
		}
		lower := strings.ToLower(tok.Name())
		if fieldOwners[lower] < 2 || sourceNames[lower] {
			continue
		}
		if n > 0 {
			prev := &ctx.Tokens[idx[n-1]]
			if prev.MatchPunct(".") || prev.MatchKeyword("AS", "FROM", "JOIN") {
				continue
			}
		}
		if n+1 < len(idx) && ctx.Tokens[idx[n+1]].MatchPunct(".") {
			continue
		}
		diags = append(diags, Diagnostic{
			Message:  "field '" + tok.Name() + "' exists in more than one table; qualify it with a table alias",
			Severity: Warning,
			Start:    tok.Start,
			End:      tok.End,
		})
	}
	return diags
}

// aggregateGroupBy checks that when the select list mixes an aggregate
// with plain fields, each plain field appears in GROUP BY.
type aggregateGroupBy struct{}

func (*aggregateGroupBy) ID() string   { return "aggregate-group-by" }
func (*aggregateGroupBy) Name() string { return "Non-aggregated field missing from GROUP BY" }

// selectField is one bare field in the select list, possibly qualified.
type selectField struct {
	key string // lower-cased, qualifier included
	tok *token.Token
}

func (r *aggregateGroupBy) Check(ctx *Context) []Diagnostic {
	depths := tokenDepths(ctx.Tokens)
	clauses := clauseAtTopLevel(ctx.Tokens)
	idx := meaningful(ctx.Tokens)

	hasAggregate := false
	var fields []selectField
	grouped := map[string]bool{}

	for n, i := range idx {
		tok := &ctx.Tokens[i]
		if depths[i] != 0 {
			continue
		}
		switch clauses[i] {
		case "SELECT":
			if tok.FuncCall && dialect.AggregateFunctions[tok.Upper()] {
				hasAggregate = true
				continue
			}
			if !tok.IsName() || tok.FuncCall {
				continue
			}
			if n > 0 {
				prev := &ctx.Tokens[idx[n-1]]
				// aliases and dotted continuations were handled with the
				// field they belong to
				if prev.MatchKeyword("AS") || prev.MatchPunct(".") {
					continue
				}
			}
			key, last := qualifiedKey(ctx.Tokens, idx, n)
			fields = append(fields, selectField{key: key, tok: &ctx.Tokens[idx[last]]})
		case "GROUP":
			if !tok.IsName() || tok.FuncCall {
				continue
			}
			if n > 0 && ctx.Tokens[idx[n-1]].MatchPunct(".") {
				continue
			}
			key, _ := qualifiedKey(ctx.Tokens, idx, n)
			grouped[key] = true
			// the bare name also satisfies a qualified select entry
			if dot := strings.IndexByte(key, '.'); dot >= 0 {
				grouped[key[dot+1:]] = true
			}
		}
	}
	if !hasAggregate {
		return nil
	}

	var diags []Diagnostic
	for _, f := range fields {
		bare := f.key
		if dot := strings.IndexByte(bare, '.'); dot >= 0 {
			bare = bare[dot+1:]
		}
		if grouped[f.key] || grouped[bare] {
			continue
		}
		diags = append(diags, Diagnostic{
			Message:  "field '" + f.tok.Name() + "' must appear in GROUP BY or inside an aggregate function",
			Severity: Error,
			Start:    f.tok.Start,
			End:      f.tok.End,
		})
	}
	return diags
}

// qualifiedKey reads a possibly dotted name starting at meaningful index
// n and returns the lower-cased dotted key plus the index of the last
// name part. Callers only pass the first part of a dotted name.
func qualifiedKey(toks []token.Token, idx []int, n int) (string, int) {
	key := strings.ToLower(toks[idx[n]].Name())
	last := n
	for last+2 < len(idx) && toks[idx[last+1]].MatchPunct(".") && toks[idx[last+2]].IsName() {
		key += "." + strings.ToLower(toks[idx[last+2]].Name())
		last += 2
	}
	return key, last
}
