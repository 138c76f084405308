package lsp

import (
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"namespacer/internal/syntax"
)

// Mapper converts between byte offsets (what the tree speaks) and LSP
// line/UTF-16-character positions (what the editor speaks).
type Mapper struct {
	content    string
	lineStarts []int
}

func NewMapper(content string) *Mapper {
	lineStarts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &Mapper{content: content, lineStarts: lineStarts}
}

func (m *Mapper) PositionFor(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(m.content) {
		offset = len(m.content)
	}

	line := 0
	for line+1 < len(m.lineStarts) && m.lineStarts[line+1] <= offset {
		line++
	}

	character := 0
	for i := m.lineStarts[line]; i < offset; {
		r, size := utf8.DecodeRuneInString(m.content[i:])
		character += len(utf16.Encode([]rune{r}))
		i += size
	}

	return protocol.Position{Line: u32(line), Character: u32(character)}
}

func (m *Mapper) OffsetFor(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(m.lineStarts) {
		return len(m.content)
	}

	offset := m.lineStarts[line]
	remaining := int(pos.Character)
	for remaining > 0 && offset < len(m.content) && m.content[offset] != '\n' {
		r, size := utf8.DecodeRuneInString(m.content[offset:])
		remaining -= len(utf16.Encode([]rune{r}))
		offset += size
	}
	return offset
}

func (m *Mapper) RangeFor(span syntax.Span) protocol.Range {
	return protocol.Range{
		Start: m.PositionFor(span.Start),
		End:   m.PositionFor(span.End),
	}
}

func u32(n int) protocol.UInteger {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0
	}
	return protocol.UInteger(v)
}
