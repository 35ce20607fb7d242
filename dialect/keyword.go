package dialect

import "strings"

type KeywordKind int

const (
	// Matched keyword, allowed in read queries
	Matched KeywordKind = iota
	// Data Manipulation Language
	DML
	// Data Definition Language
	DDL
	// Data Control Language
	DCL
	// Transaction control
	TCL
	// Procedural construct
	Procedural
	// Unmatched keyword (like table and column identifier)
	Unmatched = 99
)

var match = map[string]KeywordKind{
	"ALL":        Matched,
	"AND":        Matched,
	"ANY":        Matched,
	"AS":         Matched,
	"ASC":        Matched,
	"BETWEEN":    Matched,
	"BY":         Matched,
	"CASE":       Matched,
	"CAST":       Matched,
	"COLLATE":    Matched,
	"CONVERT":    Matched,
	"CROSS":      Matched,
	"DESC":       Matched,
	"DISTINCT":   Matched,
	"ELSE":       Matched,
	"END":        Matched,
	"ESCAPE":     Matched,
	"EXCEPT":     Matched,
	"EXISTS":     Matched,
	"FETCH":      Matched,
	"FIRST":      Matched,
	"FROM":       Matched,
	"FULL":       Matched,
	"GROUP":      Matched,
	"HAVING":     Matched,
	"IN":         Matched,
	"INNER":      Matched,
	"INTERSECT":  Matched,
	"IS":         Matched,
	"JOIN":       Matched,
	"LEFT":       Matched,
	"LIKE":       Matched,
	"NEXT":       Matched,
	"NOT":        Matched,
	"NULL":       Matched,
	"OFFSET":     Matched,
	"ON":         Matched,
	"ONLY":       Matched,
	"OR":         Matched,
	"ORDER":      Matched,
	"OUTER":      Matched,
	"OVER":       Matched,
	"PARTITION":  Matched,
	"RIGHT":      Matched,
	"ROW":        Matched,
	"ROWS":       Matched,
	"SELECT":     Matched,
	"THEN":       Matched,
	"TOP":        Matched,
	"UNION":      Matched,
	"WHEN":       Matched,
	"WHERE":      Matched,

	"DELETE":   DML,
	"INSERT":   DML,
	"MERGE":    DML,
	"UPDATE":   DML,
	"UPSERT":   DML,

	"ALTER":    DDL,
	"CREATE":   DDL,
	"DROP":     DDL,
	"RENAME":   DDL,
	"TRUNCATE": DDL,

	"DENY":   DCL,
	"GRANT":  DCL,
	"REVOKE": DCL,

	"BEGIN":       TCL,
	"COMMIT":      TCL,
	"ROLLBACK":    TCL,
	"SAVEPOINT":   TCL,
	"TRANSACTION": TCL,

	"DECLARE": Procedural,
	"EXEC":    Procedural,
	"EXECUTE": Procedural,
	"GOTO":    Procedural,
	"IF":      Procedural,
	"PRINT":   Procedural,
	"PROC":    Procedural,
	"RETURN":  Procedural,
	"SET":     Procedural,
	"USE":     Procedural,
	"WHILE":   Procedural,

	// Common table expressions are not part of the dialect, but WITH still
	// starts a statement and must be recognized as a keyword to be flagged.
	"WITH": Procedural,
}

// MatchKeyword classifies an upper-cased word against the keyword table.
func MatchKeyword(word string) KeywordKind {
	kind, ok := match[word]
	if !ok {
		return Unmatched
	}
	return kind
}

// IsKeyword reports whether the word is any keyword of the dialect,
// allowed or prohibited.
func IsKeyword(word string) bool {
	_, ok := match[strings.ToUpper(word)]
	return ok
}

// IsProhibited reports whether the keyword may not be used as a statement
// in the read-only dialect.
func IsProhibited(word string) bool {
	kind := MatchKeyword(strings.ToUpper(word))
	switch kind {
	case DML, DDL, DCL, TCL, Procedural:
		return true
	}
	return false
}

// ProhibitedReason names the category of a prohibited keyword for
// diagnostic messages.
func ProhibitedReason(word string) string {
	w := strings.ToUpper(word)
	if w == "WITH" {
		return "common table expressions (WITH) are not supported"
	}
	switch MatchKeyword(w) {
	case DML:
		return "data manipulation statements are not supported"
	case DDL:
		return "data definition statements are not supported"
	case DCL:
		return "permission statements are not supported"
	case TCL:
		return "transaction statements are not supported"
	case Procedural:
		return "procedural constructs are not supported"
	}
	return ""
}

// StatementStartKeywords are the keywords that may begin a statement in
// the dialect. Anything else appearing after a statement terminator is
// reported by its own rule.
var StatementStartKeywords = map[string]bool{
	"SELECT": true,
	"WITH":   true,
}

// AggregateFunctions used by the aggregate/GROUP BY validation.
var AggregateFunctions = map[string]bool{
	"AVG":   true,
	"COUNT": true,
	"MAX":   true,
	"MIN":   true,
	"SUM":   true,
}

// ClauseKeywords mark boundaries when walking a statement clause by clause.
var ClauseKeywords = map[string]bool{
	"FROM":   true,
	"GROUP":  true,
	"HAVING": true,
	"JOIN":   true,
	"ON":     true,
	"ORDER":  true,
	"SELECT": true,
	"UNION":  true,
	"WHERE":  true,
}
