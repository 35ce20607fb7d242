package analyzer

import (
	"sort"
	"strings"

	"github.com/dexls/dexls/lint"
)

// Merge combines the synchronous diagnostics with the latest accepted
// asynchronous set. Exact duplicates collapse onto the synchronous copy,
// and an async finding that overlaps a sync one at the same severity
// with a normalized-equal message is dropped as redundant.
func Merge(sync, async []lint.Diagnostic) []lint.Diagnostic {
	type key struct {
		sev        lint.Severity
		start, end int
		msg        string
	}
	seen := map[key]bool{}
	out := make([]lint.Diagnostic, 0, len(sync)+len(async))
	for _, d := range sync {
		k := key{d.Severity, d.Start, d.End, d.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}

	for _, d := range async {
		k := key{d.Severity, d.Start, d.End, d.Message}
		if seen[k] {
			continue
		}
		if shadowedBySync(d, sync) {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Severity < out[j].Severity
	})
	return out
}

func shadowedBySync(d lint.Diagnostic, sync []lint.Diagnostic) bool {
	for _, s := range sync {
		if s.Severity != d.Severity {
			continue
		}
		if !overlaps(s, d) {
			continue
		}
		if normalizeMessage(s.Message) == normalizeMessage(d.Message) {
			return true
		}
	}
	return false
}

func overlaps(a, b lint.Diagnostic) bool {
	return a.Start < b.End && b.Start < a.End
}

// normalizeMessage lowercases and collapses whitespace so cosmetic
// differences do not defeat deduplication.
func normalizeMessage(msg string) string {
	return strings.Join(strings.Fields(strings.ToLower(msg)), " ")
}
