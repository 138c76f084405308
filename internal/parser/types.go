package parser

type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers + literals
	IDENTIFIER
	NUMBER
	HEX_NUMBER
	STRING

	// Keywords the parser dispatches on; everything else stays IDENTIFIER
	PRAGMA
	IMPORT
	CONTRACT
	INTERFACE
	LIBRARY
	ABSTRACT
	IS
	STRUCT
	FUNCTION
	CONSTRUCTOR
	MODIFIER
	MAPPING
	EVENT
	ERROR_DECL
	ENUM
	USING
	TYPE_DECL
	CONSTANT
	IMMUTABLE

	// Separators
	COMMA
	DOT
	SEMICOLON

	// Brackets
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET

	// Assignment; compound forms and comparisons scan as OPERATOR
	EQUAL

	// Any other operator or punctuation
	OPERATOR

	// Comments
	COMMENT
	BLOCK_COMMENT
	DOC_COMMENT
)

type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based absolute index in input
}

type Token struct {
	Type     TokenType
	Lexeme   string
	Position Position
}

// End returns the byte offset one past the token text.
func (t Token) End() int {
	return t.Position.Offset + len(t.Lexeme)
}
