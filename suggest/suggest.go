// Package suggest ranks completion candidates for the query editor.
// Candidates come from host metadata; ranking is deterministic so the
// same input always produces the same list.
package suggest

import (
	"sort"
	"strings"
)

// MaxResults caps every suggestion list after ranking.
const MaxResults = 50

// TableCandidate is one completable table with its field names. Shared
// tables live outside the user's default scope and are addressed with
// the ENT. qualifier.
type TableCandidate struct {
	Name   string
	Shared bool
	Fields []string
}

// Suggestion is one ranked completion item.
type Suggestion struct {
	Label      string `json:"label"`
	InsertText string `json:"insertText"`
	Name       string `json:"name"`
}

// matchRank orders match quality: prefix beats word boundary beats plain
// subsequence.
const (
	rankPrefix = iota
	rankWordBoundary
	rankFuzzy
	rankNone
)

// FuzzyMatch reports whether every character of term appears in candidate
// in order, case-insensitively. An empty term matches everything. A
// leading ENT. qualifier on the candidate is ignored.
func FuzzyMatch(term, candidate string) bool {
	return rank(term, candidate) != rankNone
}

func rank(term, candidate string) int {
	candidate = strings.TrimPrefix(candidate, "ENT.")
	candidate = strings.Trim(candidate, "[]")
	if term == "" {
		return rankPrefix
	}
	t := strings.ToLower(term)
	c := strings.ToLower(candidate)
	if strings.HasPrefix(c, t) {
		return rankPrefix
	}
	if !subsequence(t, c) {
		return rankNone
	}
	if matchesAtBoundary(t, candidate) {
		return rankWordBoundary
	}
	return rankFuzzy
}

func subsequence(term, candidate string) bool {
	i := 0
	for j := 0; j < len(candidate) && i < len(term); j++ {
		if candidate[j] == term[i] {
			i++
		}
	}
	return i == len(term)
}

// matchesAtBoundary reports whether term is a prefix of some camelCase or
// underscore-delimited word inside candidate.
func matchesAtBoundary(term, candidate string) bool {
	lower := strings.ToLower(candidate)
	for j := 1; j+len(term) <= len(candidate); j++ {
		boundary := candidate[j-1] == '_' ||
			(isUpper(candidate[j]) && !isUpper(candidate[j-1]))
		if boundary && strings.HasPrefix(lower[j:], term) {
			return true
		}
	}
	return false
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// ranked carries a suggestion through sorting.
type ranked struct {
	s    Suggestion
	rank int
}

// sortAndTrim orders by match quality, then shorter name, then name.
// With no search term every rank ties, so the order is plain alphabetical.
func sortAndTrim(items []ranked, alphabetical bool) []Suggestion {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].rank != items[j].rank {
			return items[i].rank < items[j].rank
		}
		if !alphabetical && len(items[i].s.Name) != len(items[j].s.Name) {
			return len(items[i].s.Name) < len(items[j].s.Name)
		}
		return strings.ToLower(items[i].s.Name) < strings.ToLower(items[j].s.Name)
	})
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}
	out := make([]Suggestion, len(items))
	for i := range items {
		out[i] = items[i].s
	}
	return out
}

// Tables builds the ranked table completions matching term.
func Tables(cands []TableCandidate, term string) []Suggestion {
	var items []ranked
	for _, c := range cands {
		r := rank(term, c.Name)
		if r == rankNone {
			continue
		}
		items = append(items, ranked{s: tableSuggestion(c), rank: r})
	}
	return sortAndTrim(items, term == "")
}

func tableSuggestion(c TableCandidate) Suggestion {
	if c.Shared {
		qualified := "ENT.[" + c.Name + "]"
		return Suggestion{Label: qualified, InsertText: qualified, Name: c.Name}
	}
	insert := c.Name
	if needsBrackets(c.Name) {
		insert = "[" + c.Name + "]"
	}
	return Suggestion{Label: c.Name, InsertText: insert, Name: c.Name}
}

// needsBrackets reports whether a name must be bracket-quoted to survive
// the scanner.
func needsBrackets(name string) bool {
	if name == "" {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return true
		}
	}
	return false
}

// Fields builds the ranked field completions for one table.
func Fields(fields []string, term string) []Suggestion {
	var items []ranked
	for _, f := range fields {
		r := rank(term, f)
		if r == rankNone {
			continue
		}
		insert := f
		if needsBrackets(f) {
			insert = "[" + f + "]"
		}
		items = append(items, ranked{s: Suggestion{Label: f, InsertText: insert, Name: f}, rank: r})
	}
	return sortAndTrim(items, term == "")
}

// joinPair is one field equality in a curated join predicate; Left
// belongs to the first table of the normalized pair key.
type joinPair struct {
	Left  string
	Right string
}

// joinOverrides maps a normalized "left|right" table pair to curated
// predicates. Each inner slice is one suggestion; multiple pairs in a
// slice are joined with AND.
var joinOverrides = map[string][][]joinPair{
	"sendlog|subscribers": {{{"SubscriberKey", "SubscriberKey"}}},
	"opens|sendlog":       {{{"JobID", "JobID"}, {"SubscriberKey", "SubscriberKey"}}},
	"clicks|sendlog":      {{{"JobID", "JobID"}, {"SubscriberKey", "SubscriberKey"}}},
	"bounces|sendlog":     {{{"JobID", "JobID"}, {"SubscriberKey", "SubscriberKey"}}},
	"opens|subscribers":   {{{"SubscriberKey", "SubscriberKey"}}},
	"clicks|subscribers":  {{{"SubscriberKey", "SubscriberKey"}}},
	"subscribers|unsubs":  {{{"SubscriberKey", "SubscriberKey"}}},
}

// Joins suggests ON predicates for joining left to right. A curated
// override wins; otherwise fields sharing a name across both tables
// become equality predicates. Aliases fall back to the table names.
func Joins(left, right TableCandidate, leftAlias, rightAlias string) []Suggestion {
	if leftAlias == "" {
		leftAlias = left.Name
	}
	if rightAlias == "" {
		rightAlias = right.Name
	}

	key, flipped := overrideKey(left.Name, right.Name)
	if preds, ok := joinOverrides[key]; ok {
		la, ra := leftAlias, rightAlias
		if flipped {
			la, ra = ra, la
		}
		out := make([]Suggestion, 0, len(preds))
		for _, pairs := range preds {
			parts := make([]string, 0, len(pairs))
			for _, p := range pairs {
				parts = append(parts, la+"."+bracketIfNeeded(p.Left)+" = "+ra+"."+bracketIfNeeded(p.Right))
			}
			text := strings.Join(parts, " AND ")
			out = append(out, Suggestion{Label: text, InsertText: text, Name: text})
		}
		return out
	}

	rightFields := map[string]string{}
	for _, f := range right.Fields {
		rightFields[strings.ToLower(f)] = f
	}
	var out []Suggestion
	for _, f := range left.Fields {
		if _, ok := rightFields[strings.ToLower(f)]; !ok {
			continue
		}
		text := leftAlias + "." + bracketIfNeeded(f) + " = " + rightAlias + "." + bracketIfNeeded(f)
		out = append(out, Suggestion{Label: text, InsertText: text, Name: f})
		if len(out) == MaxResults {
			break
		}
	}
	return out
}

// overrideKey normalizes a table pair to the alphabetical "a|b" form and
// reports whether the caller's order was flipped to reach it.
func overrideKey(left, right string) (string, bool) {
	l := strings.ToLower(left)
	r := strings.ToLower(right)
	if l <= r {
		return l + "|" + r, false
	}
	return r + "|" + l, true
}

func bracketIfNeeded(name string) string {
	if needsBrackets(name) {
		return "[" + name + "]"
	}
	return name
}
