// Package format normalizes query text for the explicit format action.
// Formatting is best effort and fails open: whatever goes wrong, the
// caller gets valid text back, worst case its own input.
package format

import (
	"strings"

	"github.com/dexls/dexls/token"
)

// Format uppercases keywords and normalizes comma spacing, leaving
// strings, comments and bracket-quoted names untouched. It is a fixed
// point: formatting already-formatted text changes nothing, and the
// empty string stays empty.
func Format(sql string) (out string) {
	defer func() {
		if recover() != nil {
			out = sql
		}
	}()
	if sql == "" {
		return ""
	}
	return reflowCommas(upperKeywords(sql))
}

// upperKeywords rewrites keyword tokens in place; every other span,
// whitespace included, is copied verbatim.
func upperKeywords(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	pos := 0
	for _, tok := range token.Scan(sql) {
		b.WriteString(sql[pos:tok.Start])
		if tok.Kind == token.Keyword {
			b.WriteString(tok.Upper())
		} else {
			b.WriteString(tok.Text)
		}
		pos = tok.End
	}
	b.WriteString(sql[pos:])
	return b.String()
}

// commaState carries quote and comment parity across lines.
type commaState int

const (
	stateCode commaState = iota
	stateSingleQuote
	stateDoubleQuote
	stateBracket
	stateBlockComment
)

// reflowCommas rewrites each line so commas have no space before and one
// space after, except at line end. The pass runs line by line but quote
// and block-comment state survives line breaks; commas inside strings,
// comments and brackets are never touched.
func reflowCommas(sql string) string {
	lines := strings.Split(sql, "\n")
	state := stateCode
	for n, line := range lines {
		lines[n], state = reflowLine(line, state)
	}
	return strings.Join(lines, "\n")
}

func reflowLine(line string, state commaState) (string, commaState) {
	var b strings.Builder
	b.Grow(len(line))
	i := 0
	for i < len(line) {
		c := line[i]
		switch state {
		case stateSingleQuote:
			b.WriteByte(c)
			if c == '\'' {
				if i+1 < len(line) && line[i+1] == '\'' {
					b.WriteByte('\'')
					i += 2
					continue
				}
				state = stateCode
			}
			i++
		case stateDoubleQuote:
			b.WriteByte(c)
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					b.WriteByte('"')
					i += 2
					continue
				}
				state = stateCode
			}
			i++
		case stateBracket:
			b.WriteByte(c)
			if c == ']' {
				state = stateCode
			}
			i++
		case stateBlockComment:
			b.WriteByte(c)
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				b.WriteByte('/')
				i += 2
				state = stateCode
				continue
			}
			i++
		default:
			switch {
			case c == '\'':
				state = stateSingleQuote
				b.WriteByte(c)
				i++
			case c == '"':
				state = stateDoubleQuote
				b.WriteByte(c)
				i++
			case c == '[':
				state = stateBracket
				b.WriteByte(c)
				i++
			case c == '/' && i+1 < len(line) && line[i+1] == '*':
				state = stateBlockComment
				b.WriteString("/*")
				i += 2
			case c == '-' && i+1 < len(line) && line[i+1] == '-':
				// rest of the line is a comment
				b.WriteString(line[i:])
				return b.String(), stateCode
			case c == ',':
				trimTrailingSpace(&b)
				b.WriteByte(',')
				i++
				for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
					i++
				}
				if i < len(line) {
					b.WriteByte(' ')
				}
			default:
				b.WriteByte(c)
				i++
			}
		}
	}
	return b.String(), state
}

// trimTrailingSpace drops spaces and tabs from the end of the builder.
func trimTrailingSpace(b *strings.Builder) {
	s := b.String()
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	if end == len(s) {
		return
	}
	trimmed := s[:end]
	b.Reset()
	b.WriteString(trimmed)
}
