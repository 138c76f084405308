package syntax

// Cursor is a read-only view over a Tree, positioned on one node and
// bounded to a subtree. Cursors never mutate the tree; any number of them
// may walk the same tree independently.
type Cursor struct {
	tree  *Tree
	idx   int
	bound int
}

// Node returns the node the cursor is positioned on.
func (c *Cursor) Node() Node {
	return c.tree.nodes[c.idx]
}

func (c *Cursor) Kind() Kind {
	return c.tree.nodes[c.idx].Kind
}

func (c *Cursor) Span() Span {
	return c.tree.nodes[c.idx].Span
}

func (c *Cursor) Flags() Flags {
	return c.tree.nodes[c.idx].Flags
}

// Text unparses the current subtree back to source text.
func (c *Cursor) Text() string {
	return c.tree.Text(c.Span())
}

// Tree returns the tree this cursor walks.
func (c *Cursor) Tree() *Tree {
	return c.tree
}

// Clone returns an independent cursor at the same position and bound.
func (c *Cursor) Clone() *Cursor {
	clone := *c
	return &clone
}

// Spawn returns a new cursor confined to the current node's subtree. The
// spawned cursor starts on the current node; advancing it never leaves
// the subtree.
func (c *Cursor) Spawn() *Cursor {
	return &Cursor{tree: c.tree, idx: c.idx, bound: c.tree.nodes[c.idx].extent}
}

// GoToNext advances the cursor in preorder to the next node matching any
// of the given kinds, staying within the cursor's bound. It reports
// whether such a node was found; on failure the position is unchanged.
func (c *Cursor) GoToNext(kinds ...Kind) bool {
	for i := c.idx + 1; i < c.bound; i++ {
		for _, k := range kinds {
			if c.tree.nodes[i].Kind == k {
				c.idx = i
				return true
			}
		}
	}
	return false
}

// StepOver moves the cursor to the last node of the current subtree, so
// the next GoToNext continues past it.
func (c *Cursor) StepOver() {
	ext := c.tree.nodes[c.idx].extent
	if ext-1 > c.idx && ext-1 < c.bound {
		c.idx = ext - 1
	}
}

// Builder assembles a tree in preorder while the parser descends. Start
// and Finish must pair like braces; Leaf appends a childless node.
type Builder struct {
	source string
	nodes  []Node
	stack  []int
	errors []ParseError
}

func NewBuilder(source string) *Builder {
	b := &Builder{source: source}
	b.Start(KindSourceUnit, 0)
	return b
}

func (b *Builder) Start(kind Kind, start int) {
	parent := -1
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1]
	}
	b.stack = append(b.stack, len(b.nodes))
	b.nodes = append(b.nodes, Node{Kind: kind, Span: Span{Start: start}, parent: parent})
}

func (b *Builder) Finish(end int) {
	idx := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.nodes[idx].Span.End = end
	b.nodes[idx].extent = len(b.nodes)
}

func (b *Builder) Leaf(kind Kind, span Span) {
	parent := -1
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1]
	}
	b.nodes = append(b.nodes, Node{Kind: kind, Span: span, parent: parent, extent: len(b.nodes) + 1})
}

// SetFlags ORs flags into the innermost open node.
func (b *Builder) SetFlags(flags Flags) {
	idx := b.stack[len(b.stack)-1]
	b.nodes[idx].Flags |= flags
}

func (b *Builder) Error(message string, span Span) {
	b.errors = append(b.errors, ParseError{Message: message, Span: span})
}

// Build closes the source unit and returns the finished tree.
func (b *Builder) Build() *Tree {
	for len(b.stack) > 0 {
		b.Finish(len(b.source))
	}
	return &Tree{source: b.source, nodes: b.nodes, errors: b.errors}
}
