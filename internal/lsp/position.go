package lsp

import "strings"

// The engine works in byte offsets; the protocol works in line and
// character positions. Conversion happens only at this boundary.

// PositionFrom converts a byte offset into a Position. Offsets outside
// the text clamp to its edges.
func PositionFrom(text string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	line := strings.Count(text[:offset], "\n")
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return Position{Line: line, Character: offset - lineStart}
}

// OffsetAt converts a Position back into a byte offset, clamping both
// the line and the character to the text.
func OffsetAt(text string, pos Position) int {
	offset := 0
	for line := 0; line < pos.Line; line++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
	}
	lineEnd := strings.IndexByte(text[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - offset
	}
	if pos.Character < lineEnd {
		return offset + pos.Character
	}
	return offset + lineEnd
}

// RangeFrom converts a byte offset span into a Range.
func RangeFrom(text string, start, end int) Range {
	return Range{Start: PositionFrom(text, start), End: PositionFrom(text, end)}
}
