// Package cursor derives a semantic snapshot of the position a user is
// editing inside a query: the clause the cursor sits in, the word being
// typed, and the table references visible from that position.
package cursor

import (
	"strings"

	"github.com/dexls/dexls/token"
)

// TableReference is one table source parsed out of a FROM or JOIN clause.
type TableReference struct {
	Name          string
	QualifiedName string
	Alias         string
	Start         int
	End           int
	IsBracketed   bool
	IsSubquery    bool
	ScopeDepth    int
	OutputFields  []string
}

// DisplayName returns the alias when present, the table name otherwise.
func (r *TableReference) DisplayName() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Name
}

// Context is the snapshot of where the cursor is. It is recomputed from
// scratch on every text or cursor change.
type Context struct {
	Depth             int
	CurrentWord       string
	AliasBeforeDot    string
	IsAfterFromJoin   bool
	IsAfterSelect     bool
	LastKeyword       string
	HasTableReference bool
	InTableReference  bool
	HasFromJoinTable  bool
	InFromJoinTable   bool
	TablesInScope     []*TableReference
	AliasMap          map[string]*TableReference
}

// ResolveAlias finds the table whose alias (or name, when unaliased)
// matches, preferring the innermost matching scope.
func (c *Context) ResolveAlias(name string) *TableReference {
	lower := strings.ToLower(name)
	var found *TableReference
	for _, ref := range c.TablesInScope {
		if ref.ScopeDepth > c.Depth {
			continue
		}
		key := strings.ToLower(ref.DisplayName())
		if key != lower {
			continue
		}
		if found == nil || ref.ScopeDepth > found.ScopeDepth {
			found = ref
		}
	}
	return found
}

// Resolve computes the cursor context for the given byte offset.
func Resolve(sql string, offset int) *Context {
	if offset < 0 {
		offset = 0
	}
	if offset > len(sql) {
		offset = len(sql)
	}

	ctx := &Context{AliasMap: map[string]*TableReference{}}
	ctx.CurrentWord = wordBefore(sql, offset)
	ctx.AliasBeforeDot = aliasBeforeDot(sql, offset-len(ctx.CurrentWord))

	toks := token.Scan(sql)
	refs := extractTables(toks)

	ctx.Depth = depthAt(toks, offset)
	ctx.scanClause(toks, offset)
	ctx.collectScope(refs, offset)
	return ctx
}

// ExtractTables parses every table reference in the query, subqueries
// included. Lint rules share this with the resolver.
func ExtractTables(sql string) []*TableReference {
	return extractTables(token.Scan(sql))
}

// wordBefore returns the identifier characters immediately preceding the
// offset.
func wordBefore(sql string, offset int) string {
	start := offset
	for start > 0 && isWordByte(sql[start-1]) {
		start--
	}
	return sql[start:offset]
}

// aliasBeforeDot returns the word before a trailing dot, as in "a." or
// "a.fie". start is the offset where the current word begins.
func aliasBeforeDot(sql string, start int) string {
	if start <= 0 || sql[start-1] != '.' {
		return ""
	}
	end := start - 1
	// bracket-quoted alias: [My Alias].
	if end > 0 && sql[end-1] == ']' {
		open := strings.LastIndexByte(sql[:end-1], '[')
		if open >= 0 {
			return sql[open+1 : end-1]
		}
		return ""
	}
	return wordBefore(sql, end)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '@' || c == '#' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func depthAt(toks []token.Token, offset int) int {
	depth := 0
	for i := range toks {
		if toks[i].End > offset {
			break
		}
		if toks[i].MatchPunct("(") {
			depth++
		}
		if toks[i].MatchPunct(")") && depth > 0 {
			depth--
		}
	}
	return depth
}

// scanClause walks the tokens before the cursor and classifies the clause
// the cursor sits in at its own nesting depth.
func (c *Context) scanClause(toks []token.Token, offset int) {
	depth := 0
	lastClause := ""
	fromJoinAt := -1
	for i := range toks {
		tok := &toks[i]
		if tok.Start >= offset {
			break
		}
		switch {
		case tok.MatchPunct("("):
			depth++
			continue
		case tok.MatchPunct(")"):
			if depth > 0 {
				depth--
			}
			// Leaving a nested scope invalidates any clause tracked there.
			if depth < c.Depth {
				lastClause = ""
				fromJoinAt = -1
			}
			continue
		}
		if tok.Kind == token.Keyword {
			c.LastKeyword = tok.Upper()
		}
		if depth != c.Depth {
			continue
		}
		if tok.Kind == token.Keyword {
			switch tok.Upper() {
			case "SELECT", "WHERE", "HAVING", "ORDER", "GROUP", "ON":
				lastClause = tok.Upper()
				fromJoinAt = -1
			case "FROM", "JOIN":
				lastClause = tok.Upper()
				fromJoinAt = i
			}
			continue
		}
		// A completed name after FROM/JOIN means the clause no longer wants
		// a table suggestion, unless that name is the word still being typed.
		if fromJoinAt >= 0 && tok.IsName() && tok.End < offset {
			c.HasFromJoinTable = true
		}
		if fromJoinAt >= 0 && tok.IsName() && tok.End == offset && tok.Text == c.CurrentWord {
			c.InFromJoinTable = true
		}
	}
	c.IsAfterSelect = lastClause == "SELECT"
	c.IsAfterFromJoin = lastClause == "FROM" || lastClause == "JOIN"
	if !c.IsAfterFromJoin {
		c.HasFromJoinTable = false
	}
}

// collectScope records the references visible from the cursor and indexes
// them by alias, innermost scope winning.
func (c *Context) collectScope(refs []*TableReference, offset int) {
	c.HasTableReference = len(refs) > 0
	for _, ref := range refs {
		if ref.Start <= offset && offset <= ref.End {
			c.InTableReference = true
			if c.IsAfterFromJoin {
				c.InFromJoinTable = true
			}
		}
		if ref.ScopeDepth > c.Depth {
			continue
		}
		c.TablesInScope = append(c.TablesInScope, ref)
	}
	// Shallow scopes first so deeper entries overwrite them.
	for _, ref := range c.TablesInScope {
		key := strings.ToLower(ref.DisplayName())
		if key == "" {
			continue
		}
		if prev, ok := c.AliasMap[key]; !ok || ref.ScopeDepth >= prev.ScopeDepth {
			c.AliasMap[key] = ref
		}
	}
}
