package token

import (
	"unicode"
	"unicode/utf8"

	"github.com/dexls/dexls/dialect"
)

// scanner state. The states are mutually exclusive; everything the
// scanner does is a transition between them.
type state int

const (
	stateNormal state = iota
	stateSingleQuote
	stateDoubleQuote
	stateBracket
	stateLineComment
	stateBlockComment
)

var queryDialect dialect.Dialect = &dialect.QueryDialect{}

// Scan walks the input once and classifies it into typed spans. It never
// fails: malformed input degrades to best-effort tokens, and constructs
// left unterminated at end of input close implicitly.
func Scan(sql string) []Token {
	s := &scanner{src: sql}
	return s.run()
}

type scanner struct {
	src   string
	pos   int
	start int
	state state
	toks  []Token
}

func (s *scanner) run() []Token {
	for s.pos < len(s.src) {
		switch s.state {
		case stateNormal:
			s.scanNormal()
		case stateSingleQuote:
			s.scanString('\'')
		case stateDoubleQuote:
			s.scanString('"')
		case stateBracket:
			s.scanBracket()
		case stateLineComment:
			s.scanLineComment()
		case stateBlockComment:
			s.scanBlockComment()
		}
	}
	s.finish()
	return s.toks
}

func (s *scanner) peek(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *scanner) emit(kind Kind) {
	s.toks = append(s.toks, Token{
		Kind:  kind,
		Text:  s.src[s.start:s.pos],
		Start: s.start,
		End:   s.pos,
	})
}

func (s *scanner) scanNormal() {
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	c := s.src[s.pos]

	switch {
	case c == '\'':
		s.start = s.pos
		s.pos++
		s.state = stateSingleQuote
	case c == '"':
		s.start = s.pos
		s.pos++
		s.state = stateDoubleQuote
	case queryDialect.IsDelimitedIdentifierStart(r):
		s.start = s.pos
		s.pos++
		s.state = stateBracket
	case c == '-' && s.peek(1) == '-':
		s.start = s.pos
		s.pos += 2
		s.state = stateLineComment
	case c == '/' && s.peek(1) == '*':
		s.start = s.pos
		s.pos += 2
		s.state = stateBlockComment
	case queryDialect.IsIdentifierStart(r) || r >= utf8.RuneSelf:
		s.scanWord()
	case c >= '0' && c <= '9':
		s.scanNumber()
	case unicode.IsSpace(r):
		s.pos += size
	default:
		s.scanOperator()
	}
}

func (s *scanner) scanWord() {
	s.start = s.pos
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !queryDialect.IsIdentifierPart(r) && r < utf8.RuneSelf {
			break
		}
		s.pos += size
	}
	word := s.src[s.start:s.pos]
	kind := Ident
	if dialect.IsKeyword(word) {
		kind = Keyword
	}
	tok := Token{Kind: kind, Text: word, Start: s.start, End: s.pos}
	// A following ( marks a potential function-call site.
	for i := s.pos; i < len(s.src); i++ {
		if s.src[i] == ' ' || s.src[i] == '\t' {
			continue
		}
		tok.FuncCall = s.src[i] == '('
		break
	}
	s.toks = append(s.toks, tok)
}

func (s *scanner) scanNumber() {
	s.start = s.pos
	hasE := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			s.pos++
		} else if !hasE && (c == 'e' || c == 'E') {
			s.pos++
			hasE = true
			if c := s.peek(0); c == '+' || c == '-' {
				s.pos++
			}
		} else {
			break
		}
	}
	s.emit(Number)
}

var punctBytes = map[byte]bool{
	'(': true, ')': true, ',': true, '.': true, ';': true, ':': true, ']': true,
}

func (s *scanner) scanOperator() {
	s.start = s.pos
	c := s.src[s.pos]
	if punctBytes[c] {
		s.pos++
		s.emit(Punct)
		return
	}
	s.pos++
	// two-character operators
	switch c {
	case '<':
		if n := s.peek(0); n == '=' || n == '>' {
			s.pos++
		}
	case '>', '!':
		if s.peek(0) == '=' {
			s.pos++
		}
	}
	s.emit(Operator)
}

func (s *scanner) scanString(quote byte) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == quote {
			// A doubled quote is an escape, not a terminator.
			if s.peek(1) == quote {
				s.pos += 2
				continue
			}
			s.pos++
			s.emit(String)
			s.state = stateNormal
			return
		}
		s.pos++
	}
}

func (s *scanner) scanBracket() {
	for s.pos < len(s.src) {
		if s.src[s.pos] == ']' {
			s.pos++
			s.emit(BracketIdent)
			s.state = stateNormal
			return
		}
		s.pos++
	}
}

func (s *scanner) scanLineComment() {
	for s.pos < len(s.src) {
		if s.src[s.pos] == '\n' {
			s.emit(LineComment)
			s.state = stateNormal
			return
		}
		s.pos++
	}
}

func (s *scanner) scanBlockComment() {
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			s.emit(BlockComment)
			s.state = stateNormal
			return
		}
		s.pos++
	}
}

// finish closes whatever construct was still open at end of input.
func (s *scanner) finish() {
	if s.state == stateNormal {
		return
	}
	switch s.state {
	case stateSingleQuote, stateDoubleQuote:
		s.emit(String)
	case stateBracket:
		s.emit(BracketIdent)
	case stateLineComment:
		s.emit(LineComment)
	case stateBlockComment:
		s.emit(BlockComment)
	}
	s.state = stateNormal
}
