// Package syntax defines the immutable syntax tree produced by the parser
// and the cursors the analysis walks it with. Nodes live in a preorder
// arena over the original source string, so unparsing any subtree is a
// plain source slice and cursors are just indices.
package syntax

// Kind identifies a tree node. Terminal kinds (Identifier, Comment,
// DocComment) carry no children; everything else spans a subtree.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindSourceUnit
	KindPragma
	KindImport
	KindContract
	KindInheritance
	KindStructDef
	KindStateVar
	KindTypeName
	KindExpression
	KindConstructor
	KindFunction
	KindModifierDef
	KindParamList
	KindParam
	KindBlock
	KindIdentifier
	KindComment
	KindDocComment
)

var kindNames = map[Kind]string{
	KindInvalid:     "Invalid",
	KindSourceUnit:  "SourceUnit",
	KindPragma:      "Pragma",
	KindImport:      "Import",
	KindContract:    "Contract",
	KindInheritance: "Inheritance",
	KindStructDef:   "StructDef",
	KindStateVar:    "StateVar",
	KindTypeName:    "TypeName",
	KindExpression:  "Expression",
	KindConstructor: "Constructor",
	KindFunction:    "Function",
	KindModifierDef: "ModifierDef",
	KindParamList:   "ParamList",
	KindParam:       "Param",
	KindBlock:       "Block",
	KindIdentifier:  "Identifier",
	KindComment:     "Comment",
	KindDocComment:  "DocComment",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Flags mark declaration modifiers the rules care about.
type Flags uint8

const (
	FlagConstant Flags = 1 << iota
	FlagImmutable
)

// Span is a half-open byte range [Start, End) into the tree's source.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Node is one arena entry. The extent field points one past the node's
// subtree in preorder order, which is all a cursor needs to walk or skip
// the subtree.
type Node struct {
	Kind   Kind
	Span   Span
	Flags  Flags
	parent int
	extent int
}

// ParseError records a recoverable syntax error with the region it
// poisons. The analysis skips contracts whose span contains one.
type ParseError struct {
	Message string
	Span    Span
}

// Tree is the immutable result of parsing one source unit.
type Tree struct {
	source string
	nodes  []Node
	errors []ParseError
}

func (t *Tree) Source() string {
	return t.source
}

func (t *Tree) Errors() []ParseError {
	return t.errors
}

func (t *Tree) Valid() bool {
	return len(t.errors) == 0
}

// ErrorIn reports whether any parse error falls inside the given span.
func (t *Tree) ErrorIn(span Span) bool {
	for _, e := range t.errors {
		if span.Overlaps(e.Span) || span.Contains(e.Span) {
			return true
		}
	}
	return false
}

// Text unparses a span back to source text.
func (t *Tree) Text(span Span) string {
	if span.Start < 0 || span.End > len(t.source) || span.Start > span.End {
		return ""
	}
	return t.source[span.Start:span.End]
}

// Root returns a cursor positioned on the source unit node.
func (t *Tree) Root() *Cursor {
	return &Cursor{tree: t, idx: 0, bound: len(t.nodes)}
}

// LeadingComments returns the comment and doc-comment spans immediately
// preceding start: a contiguous run separated from the target (and from
// each other) by whitespace only, in source order.
func (t *Tree) LeadingComments(start int) []Span {
	run := t.leadingCommentRun(start)
	spans := make([]Span, len(run))
	for i, n := range run {
		spans[i] = n.Span
	}
	return spans
}

// LeadingDocComments is LeadingComments filtered to doc comments.
func (t *Tree) LeadingDocComments(start int) []Span {
	var docs []Span
	for _, n := range t.leadingCommentRun(start) {
		if n.Kind == KindDocComment {
			docs = append(docs, n.Span)
		}
	}
	return docs
}

func (t *Tree) leadingCommentRun(start int) []Node {
	var comments []Node
	for _, n := range t.nodes {
		if (n.Kind == KindComment || n.Kind == KindDocComment) && n.Span.End <= start {
			comments = append(comments, n)
		}
	}

	// Walk backwards keeping only the whitespace-adjacent run.
	end := start
	first := len(comments)
	for i := len(comments) - 1; i >= 0; i-- {
		if !isBlank(t.source[comments[i].Span.End:end]) {
			break
		}
		end = comments[i].Span.Start
		first = i
	}
	return comments[first:]
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}
