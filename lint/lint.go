// Package lint holds the registry of dialect rules. Every rule is a
// pure function over the raw query text and its tokens; rules know
// nothing about each other and each one can be tested on its own.
package lint

import (
	"sort"

	"github.com/dexls/dexls/internal/debug"
	"github.com/dexls/dexls/token"
)

type Severity int

const (
	// Error blocks the query
	Error Severity = iota
	// Prereq marks a structural precondition that is not met yet
	Prereq
	// Warning is advisory
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Prereq:
		return "prereq"
	case Warning:
		return "warning"
	}
	return ""
}

// Diagnostic is one finding. Start and End are byte offsets into the
// linted text, 0 <= Start <= End <= len(sql).
type Diagnostic struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Start    int      `json:"startIndex"`
	End      int      `json:"endIndex"`
}

// Context is what a rule consumes. TableFields optionally maps
// lower-cased table names to their field names when the host supplied
// metadata; rules needing it produce nothing otherwise.
type Context struct {
	SQL         string
	Tokens      []token.Token
	TableFields map[string][]string
}

// NewContext scans the text once and shares the tokens across rules.
func NewContext(sql string) *Context {
	return &Context{SQL: sql, Tokens: token.Scan(sql)}
}

// Rule is one independent lint check.
type Rule interface {
	ID() string
	Name() string
	Check(ctx *Context) []Diagnostic
}

// syncRules is the cheap subset run on every keystroke.
var syncRules = []Rule{
	&missingSelect{},
	&prohibitedKeywords{},
	&multiStatement{},
	&commaValidation{},
}

// heavyRules run only through the background analysis pass.
var heavyRules = []Rule{
	&subqueryWithoutAlias{},
	&selfJoinSameAlias{},
	&unsupportedFunctions{},
	&offsetWithoutOrderBy{},
	&orderByInSubquery{},
	&aliasInClause{},
	&unbracketedNames{},
	&ambiguousField{},
	&aggregateGroupBy{},
}

// SyncRules returns the fast-path rules, in registry order.
func SyncRules() []Rule {
	return syncRules
}

// AllRules returns the full registry, fast rules first.
func AllRules() []Rule {
	all := make([]Rule, 0, len(syncRules)+len(heavyRules))
	all = append(all, syncRules...)
	all = append(all, heavyRules...)
	return all
}

// Without returns rules with the named ids removed.
func Without(rules []Rule, ids []string) []Rule {
	if len(ids) == 0 {
		return rules
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !drop[r.ID()] {
			kept = append(kept, r)
		}
	}
	return kept
}

// Run evaluates the given rules and aggregates their findings, ordered
// by start offset then severity.
func Run(ctx *Context, rules []Rule) []Diagnostic {
	var diags []Diagnostic
	for _, r := range rules {
		diags = append(diags, runRule(r, ctx)...)
	}
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Start != diags[j].Start {
			return diags[i].Start < diags[j].Start
		}
		return diags[i].Severity < diags[j].Severity
	})
	return diags
}

// runRule isolates a panicking rule so one broken check cannot suppress
// the rest of the registry.
func runRule(r Rule, ctx *Context) (diags []Diagnostic) {
	defer func() {
		if rec := recover(); rec != nil {
			debug.DPrintf("lint: rule %s panicked: %v\n", r.ID(), rec)
			diags = nil
		}
	}()
	return r.Check(ctx)
}
