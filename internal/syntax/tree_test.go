package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSample assembles a small tree by hand:
//
//	contract C { uint256 a; }
//	0        9  13        23
func buildSample() *Tree {
	source := "contract C { uint256 a; }"
	b := NewBuilder(source)
	b.Start(KindContract, 0)
	b.Leaf(KindIdentifier, Span{Start: 9, End: 10})
	b.Start(KindStateVar, 13)
	b.Start(KindTypeName, 13)
	b.Finish(20)
	b.Leaf(KindIdentifier, Span{Start: 21, End: 22})
	b.Finish(23)
	b.Finish(25)
	return b.Build()
}

func TestTextUnparsesSpans(t *testing.T) {
	tree := buildSample()
	assert.Equal(t, "contract C { uint256 a; }", tree.Source())
	assert.Equal(t, "uint256", tree.Text(Span{Start: 13, End: 20}))
	assert.Equal(t, "", tree.Text(Span{Start: -1, End: 2}), "out-of-range spans unparse empty")
	assert.Equal(t, "", tree.Text(Span{Start: 5, End: 3}))
}

func TestCursorPreorderWalk(t *testing.T) {
	tree := buildSample()

	c := tree.Root().Clone()
	assert.Equal(t, KindSourceUnit, c.Kind())

	require.True(t, c.GoToNext(KindStateVar))
	assert.Equal(t, "uint256 a;", c.Text())

	name := c.Spawn()
	require.True(t, name.GoToNext(KindIdentifier))
	assert.Equal(t, "a", name.Text())
}

func TestSpawnBoundsTheWalk(t *testing.T) {
	tree := buildSample()

	c := tree.Root().Clone()
	require.True(t, c.GoToNext(KindTypeName))

	inner := c.Spawn()
	assert.False(t, inner.GoToNext(KindIdentifier),
		"the variable name sits outside the type's subtree")
}

func TestStepOverSkipsSubtree(t *testing.T) {
	tree := buildSample()

	c := tree.Root().Clone()
	require.True(t, c.GoToNext(KindContract))
	c.StepOver()
	assert.False(t, c.GoToNext(KindStateVar),
		"stepping over the contract skips everything inside it")
}

func TestGoToNextLeavesPositionOnFailure(t *testing.T) {
	tree := buildSample()

	c := tree.Root().Clone()
	require.True(t, c.GoToNext(KindStateVar))
	before := c.Span()
	assert.False(t, c.GoToNext(KindPragma))
	assert.Equal(t, before, c.Span())
}

func TestErrorIn(t *testing.T) {
	b := NewBuilder("contract C {")
	b.Start(KindContract, 0)
	b.Error("unterminated contract body", Span{Start: 11, End: 12})
	b.Finish(12)
	tree := b.Build()

	assert.False(t, tree.Valid())
	assert.True(t, tree.ErrorIn(Span{Start: 0, End: 12}))
	assert.False(t, tree.ErrorIn(Span{Start: 0, End: 5}))
}

func TestLeadingCommentsKeepOnlyTheAdjacentRun(t *testing.T) {
	//           0          11           24          37
	source := "// distant\n\n// nearer\n/// doc\nuint256 a;"
	b := NewBuilder(source)
	b.Leaf(KindComment, Span{Start: 0, End: 10})
	b.Leaf(KindComment, Span{Start: 12, End: 21})
	b.Leaf(KindDocComment, Span{Start: 22, End: 29})
	b.Start(KindStateVar, 30)
	b.Finish(40)
	tree := b.Build()

	comments := tree.LeadingComments(30)
	require.Len(t, comments, 3, "blank lines are whitespace, the whole run is adjacent")

	docs := tree.LeadingDocComments(30)
	require.Len(t, docs, 1)
	assert.Equal(t, "/// doc", tree.Text(docs[0]))
}

func TestLeadingCommentsStopAtCode(t *testing.T) {
	//           0       8          19
	source := "uint x; // trailing\nuint256 a;"
	b := NewBuilder(source)
	b.Leaf(KindComment, Span{Start: 8, End: 19})
	b.Start(KindStateVar, 20)
	b.Finish(30)
	tree := b.Build()

	// The comment is adjacent, but a run never reaches past code.
	comments := tree.LeadingComments(20)
	require.Len(t, comments, 1)
	assert.Equal(t, "// trailing", tree.Text(comments[0]))

	assert.Empty(t, tree.LeadingComments(8), "nothing but code precedes the first comment")
}

func TestSpanPredicates(t *testing.T) {
	a := Span{Start: 2, End: 8}
	assert.Equal(t, 6, a.Len())
	assert.True(t, a.Contains(Span{Start: 3, End: 7}))
	assert.False(t, a.Contains(Span{Start: 1, End: 7}))
	assert.True(t, a.Overlaps(Span{Start: 7, End: 10}))
	assert.False(t, a.Overlaps(Span{Start: 8, End: 10}), "half-open ranges touching at a boundary do not overlap")
}
