// Package refactor turns diagnostics into concrete text edits. It is
// purely a function of a diagnostic's repair payload and the current
// document text; it never re-runs analysis rules.
package refactor

import (
	"fmt"
	"sort"
	"strings"

	"namespacer/internal/syntax"
)

// TextEdit replaces a span of the document with new text. A zero-width
// span is an insertion; several insertions at the same point apply in
// slice order.
type TextEdit struct {
	Span    syntax.Span
	NewText string
}

// Validate checks that every edit is in bounds and that no two edits
// overlap. Insertions may share a position with each other and may touch
// a neighboring edit's boundary.
func Validate(edits []TextEdit, docLen int) error {
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		return sorted[i].Span.End < sorted[j].Span.End
	})

	prevEnd := 0
	for _, e := range sorted {
		if e.Span.Start < 0 || e.Span.End > docLen || e.Span.Start > e.Span.End {
			return fmt.Errorf("edit span [%d,%d) out of bounds for document of %d bytes", e.Span.Start, e.Span.End, docLen)
		}
		if e.Span.Start < prevEnd {
			return fmt.Errorf("edit at [%d,%d) overlaps a preceding edit ending at %d", e.Span.Start, e.Span.End, prevEnd)
		}
		prevEnd = e.Span.End
	}
	return nil
}

// Apply rewrites the document with all edits at once. Edits must have
// been validated; Apply preserves the relative order of insertions that
// share a position, and an insertion always lands before a replacement
// starting at the same offset.
func Apply(doc string, edits []TextEdit) string {
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		return sorted[i].Span.Len() < sorted[j].Span.Len()
	})

	var out strings.Builder
	pos := 0
	for _, e := range sorted {
		if e.Span.Start > pos {
			out.WriteString(doc[pos:e.Span.Start])
		}
		out.WriteString(e.NewText)
		if e.Span.End > pos {
			pos = e.Span.End
		}
	}
	if pos < len(doc) {
		out.WriteString(doc[pos:])
	}
	return out.String()
}
