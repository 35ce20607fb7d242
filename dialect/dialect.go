package dialect

// Dialect describes the character classes the scanner uses to split
// identifiers out of raw query text.
type Dialect interface {
	IsIdentifierStart(r rune) bool
	IsIdentifierPart(r rune) bool
	IsDelimitedIdentifierStart(r rune) bool
}

// QueryDialect is the restricted, read-only marketing-data dialect.
// Identifiers may be quoted with square brackets.
type QueryDialect struct {
}

func (*QueryDialect) IsIdentifierStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '@'
}

func (*QueryDialect) IsIdentifierPart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '@' || r == '$' || r == '#'
}

func (*QueryDialect) IsDelimitedIdentifierStart(r rune) bool {
	return r == '['
}

var _ Dialect = &QueryDialect{}
