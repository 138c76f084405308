package parser

import (
	"unicode"
)

type Scanner struct {
	source      string
	tokens      []Token
	start       int
	current     int
	line        int
	startColumn int
	column      int
	errors      []ScanError
}

type ScanError struct {
	Message  string
	Position Position
	Length   int
}

func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
		column: 1,
	}
}

func (s *Scanner) Errors() []ScanError {
	return s.errors
}

func (s *Scanner) ScanTokens() []Token {
	for !s.isAtEnd() {
		s.start = s.current
		s.startColumn = s.column
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: EOF, Position: Position{Line: s.line, Column: s.column, Offset: s.current}})
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	// Simple single-character tokens
	case '(':
		s.addToken(LEFT_PAREN)
	case ')':
		s.addToken(RIGHT_PAREN)
	case '{':
		s.addToken(LEFT_BRACE)
	case '}':
		s.addToken(RIGHT_BRACE)
	case '[':
		s.addToken(LEFT_BRACKET)
	case ']':
		s.addToken(RIGHT_BRACKET)
	case ',':
		s.addToken(COMMA)
	case '.':
		s.addToken(DOT)
	case ';':
		s.addToken(SEMICOLON)

	case '=':
		s.scanEqualOperator()
	case '/':
		s.scanSlashOperator()

	// Multi-character operators that must not split into two tokens
	case '+', '-', '*', '%', '!', '<', '>', '&', '|', '^', '~', '?', ':':
		s.scanOperator(c)

	// Whitespace (ignored)
	case ' ', '\r', '\t':
	case '\n':
		// Handled in advance()

	// String literals
	case '"', '\'':
		s.scanString(c)

	default:
		s.scanDefault(c)
	}
}

// scanEqualOperator keeps plain assignment distinct: the declaration
// parser splits on a bare '=' to find initializers.
func (s *Scanner) scanEqualOperator() {
	if s.matchNext('=') || s.matchNext('>') {
		s.addToken(OPERATOR)
	} else {
		s.addToken(EQUAL)
	}
}

func (s *Scanner) scanSlashOperator() {
	if s.matchNext('/') {
		s.scanSingleLineComment()
	} else if s.matchNext('*') {
		s.scanBlockComment()
	} else {
		s.matchNext('=')
		s.addToken(OPERATOR)
	}
}

func (s *Scanner) scanOperator(c byte) {
	switch c {
	case '+':
		if !s.matchNext('+') {
			s.matchNext('=')
		}
	case '-':
		if !s.matchNext('-') && !s.matchNext('=') {
			s.matchNext('>')
		}
	case '*':
		if !s.matchNext('*') {
			s.matchNext('=')
		}
	case '<':
		if s.matchNext('<') {
			s.matchNext('=')
		} else {
			s.matchNext('=')
		}
	case '>':
		if s.matchNext('>') {
			s.matchNext('=')
		} else {
			s.matchNext('=')
		}
	case '&':
		if !s.matchNext('&') {
			s.matchNext('=')
		}
	case '|':
		if !s.matchNext('|') {
			s.matchNext('=')
		}
	case '!', '%', '^':
		s.matchNext('=')
	}
	s.addToken(OPERATOR)
}

func (s *Scanner) scanDefault(c byte) {
	if isDigit(c) {
		s.scanNumber()
	} else if isAlpha(c) {
		s.scanIdentifier()
	} else {
		// Unknown runes become opaque operator tokens rather than scan
		// errors: the tree must stay usable around exotic input.
		s.addToken(OPERATOR)
	}
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	if c == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return c
}

func (s *Scanner) matchNext(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) addToken(tokenType TokenType) {
	text := s.source[s.start:s.current]
	s.tokens = append(s.tokens, Token{
		Type:   tokenType,
		Lexeme: text,
		Position: Position{
			Line:   s.line,
			Column: s.startColumn,
			Offset: s.start,
		},
	})
}

func (s *Scanner) reportError(message string) {
	s.errors = append(s.errors, ScanError{
		Message:  message,
		Position: Position{Line: s.line, Column: s.startColumn, Offset: s.start},
		Length:   s.current - s.start,
	})
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

// Helper functions.

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_' || c == '$'
}

func (s *Scanner) scanIdentifier() {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	s.addToken(lookupIdentifier(text))
}

func (s *Scanner) scanNumber() {
	if s.source[s.start] == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.advance()
		for isHexDigit(s.peek()) || s.peek() == '_' {
			s.advance()
		}
		s.addToken(HEX_NUMBER)
		return
	}
	for isDigit(s.peek()) || s.peek() == '_' {
		s.advance()
	}
	// Exponent suffix as in 1e18; the dot in 1.5e18 scans as DOT, which
	// is harmless since expressions are kept as raw spans.
	if s.peek() == 'e' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	s.addToken(NUMBER)
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') ||
		('a' <= c && c <= 'f') ||
		('A' <= c && c <= 'F')
}

func (s *Scanner) scanString(quote byte) {
	for s.peek() != quote && s.peek() != '\n' && !s.isAtEnd() {
		if s.peek() == '\\' && s.current+1 < len(s.source) {
			s.advance()
		}
		s.advance()
	}
	if s.isAtEnd() || s.peek() == '\n' {
		s.reportError("Unterminated string.")
		return
	}
	s.advance()
	s.addToken(STRING)
}

func lookupIdentifier(text string) TokenType {
	if t, ok := KEYWORDS[text]; ok {
		return t
	}
	return IDENTIFIER
}

func (s *Scanner) scanSingleLineComment() {
	for s.peek() != '\n' && !s.isAtEnd() {
		s.advance()
	}
	commentText := s.source[s.start:s.current]
	tokenType := COMMENT
	if len(commentText) >= 3 && commentText[:3] == "///" {
		tokenType = DOC_COMMENT
	}
	s.addToken(tokenType)
}

func (s *Scanner) scanBlockComment() {
	unterminated := true
	for !s.isAtEnd() {
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance() // *
			s.advance() // /
			unterminated = false
			break
		}
		s.advance()
	}

	if unterminated {
		s.reportError("Unterminated block comment.")
		return
	}

	commentText := s.source[s.start:s.current]
	tokenType := BLOCK_COMMENT
	if len(commentText) >= 3 && commentText[:3] == "/**" {
		tokenType = DOC_COMMENT
	}
	s.addToken(tokenType)
}
