package token

import "strings"

type Kind int

//go:generate stringer -type Kind token.go
const (
	// A keyword of the dialect (like SELECT)
	Keyword Kind = iota
	// Bare identifier
	Ident
	// Bracket-quoted identifier i.e: [My Table]
	BracketIdent
	// Single or double quoted string
	String
	// Numeric literal
	Number
	// Operator like = or <>
	Operator
	// Punctuation like ( ) , . ;
	Punct
	// Line comment starting with --
	LineComment
	// Block comment i.e: /* comment */
	BlockComment
)

// Token is a classified, non-overlapping span of source text. Start and
// End are byte offsets into the scanned string; Text is the raw slice
// between them, quotes and comment markers included.
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int
	// FuncCall marks a bare word followed by an opening parenthesis.
	FuncCall bool
}

// Upper returns the token text upper-cased, the form keyword tables use.
func (t *Token) Upper() string {
	return strings.ToUpper(t.Text)
}

// Name returns the identifier without bracket quoting.
func (t *Token) Name() string {
	if t.Kind == BracketIdent {
		s := strings.TrimPrefix(t.Text, "[")
		return strings.TrimSuffix(s, "]")
	}
	return t.Text
}

// MatchKeyword reports whether the token is a keyword equal to any of
// the given upper-cased words.
func (t *Token) MatchKeyword(words ...string) bool {
	if t.Kind != Keyword {
		return false
	}
	u := t.Upper()
	for _, w := range words {
		if u == w {
			return true
		}
	}
	return false
}

// MatchPunct reports whether the token is the given punctuation.
func (t *Token) MatchPunct(text string) bool {
	return t.Kind == Punct && t.Text == text
}

// IsComment reports whether the token is a line or block comment.
func (t *Token) IsComment() bool {
	return t.Kind == LineComment || t.Kind == BlockComment
}

// IsName reports whether the token can name a table or field.
func (t *Token) IsName() bool {
	return t.Kind == Ident || t.Kind == BracketIdent
}
