package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namespacer/internal/syntax"
)

func TestApplySplicesInOrder(t *testing.T) {
	doc := "uint256 a; uint256 b;"
	edits := []TextEdit{
		{Span: syntax.Span{Start: 11, End: 21}, NewText: ""},
		{Span: syntax.Span{Start: 0, End: 10}, NewText: "bool c;"},
	}
	require.NoError(t, Validate(edits, len(doc)))
	assert.Equal(t, "bool c; ", Apply(doc, edits))
}

func TestInsertionsAtSamePointKeepSliceOrder(t *testing.T) {
	doc := "{}"
	edits := []TextEdit{
		{Span: syntax.Span{Start: 1, End: 1}, NewText: "one;"},
		{Span: syntax.Span{Start: 1, End: 1}, NewText: "two;"},
	}
	require.NoError(t, Validate(edits, len(doc)))
	assert.Equal(t, "{one;two;}", Apply(doc, edits))
}

func TestInsertionMayTouchNeighborBoundary(t *testing.T) {
	doc := "abcdef"
	edits := []TextEdit{
		{Span: syntax.Span{Start: 2, End: 4}, NewText: "XY"},
		{Span: syntax.Span{Start: 4, End: 4}, NewText: "!"},
	}
	require.NoError(t, Validate(edits, len(doc)))
	assert.Equal(t, "abXY!ef", Apply(doc, edits))
}

func TestInsertionBeforeReplacementAtSamePoint(t *testing.T) {
	doc := "abc"
	edits := []TextEdit{
		{Span: syntax.Span{Start: 1, End: 2}, NewText: "X"},
		{Span: syntax.Span{Start: 1, End: 1}, NewText: "+"},
	}
	require.NoError(t, Validate(edits, len(doc)))
	assert.Equal(t, "a+Xc", Apply(doc, edits),
		"an insertion applies before a replacement starting at the same offset")
}

func TestValidateRejectsOverlap(t *testing.T) {
	edits := []TextEdit{
		{Span: syntax.Span{Start: 0, End: 5}},
		{Span: syntax.Span{Start: 4, End: 8}},
	}
	assert.Error(t, Validate(edits, 10))
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	assert.Error(t, Validate([]TextEdit{{Span: syntax.Span{Start: 0, End: 11}}}, 10))
	assert.Error(t, Validate([]TextEdit{{Span: syntax.Span{Start: -1, End: 2}}}, 10))
	assert.Error(t, Validate([]TextEdit{{Span: syntax.Span{Start: 5, End: 3}}}, 10))
}
