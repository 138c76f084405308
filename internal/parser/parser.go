// Package parser turns Solidity source text into a syntax.Tree. It is
// deliberately shallow: it recognizes the declarations the storage rules
// need (pragmas, contracts, inheritance, state variables, structs,
// functions and their bodies) and skips everything else with balanced
// consumption. It never fails: malformed regions are recorded as parse
// errors on the tree and the analysis skips the contracts they poison.
package parser

import (
	"fmt"

	"namespacer/internal/syntax"
)

type Parser struct {
	tokens  []Token
	pos     int
	prevEnd int
	b       *syntax.Builder
}

// Parse builds a tree for one source unit. The grammar version is part
// of the interface contract with version inference; the subset grammar
// recognized here is version-independent, so the value only travels.
func Parse(grammarVersion string, source string) *syntax.Tree {
	_ = grammarVersion

	scanner := NewScanner(source)
	tokens := scanner.ScanTokens()

	b := syntax.NewBuilder(source)
	for _, e := range scanner.Errors() {
		b.Error(e.Message, syntax.Span{Start: e.Position.Offset, End: e.Position.Offset + e.Length})
	}

	p := &Parser{tokens: tokens, b: b}
	p.parseSourceUnit()
	return b.Build()
}

func (p *Parser) parseSourceUnit() {
	for {
		t := p.peek()
		switch t.Type {
		case EOF:
			return
		case PRAGMA:
			p.parsePragma()
		case IMPORT:
			p.parseImport()
		case ABSTRACT, CONTRACT, INTERFACE, LIBRARY:
			p.parseContract()
		default:
			// File-level constants, free functions, using-for: skip as a
			// loose item without poisoning the tree.
			p.skipLooseItem()
		}
	}
}

func (p *Parser) parsePragma() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindPragma, start)
	p.consumeTo(SEMICOLON)
	if p.check(SEMICOLON) {
		p.next()
	} else {
		p.errorHere("unterminated pragma directive")
	}
	p.b.Finish(p.prevEnd)
}

func (p *Parser) parseImport() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindImport, start)
	p.consumeTo(SEMICOLON)
	if p.check(SEMICOLON) {
		p.next()
	} else {
		p.errorHere("unterminated import directive")
	}
	p.b.Finish(p.prevEnd)
}

func (p *Parser) parseContract() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindContract, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	if p.check(ABSTRACT) {
		p.next()
	}
	p.next() // contract / interface / library

	if !p.check(IDENTIFIER) {
		p.errorHere("expected contract name")
		p.consumeTo(LEFT_BRACE, SEMICOLON)
		if p.check(SEMICOLON) {
			p.next()
			return
		}
	} else {
		name := p.next()
		p.b.Leaf(syntax.KindIdentifier, tokenSpan(name))
	}

	if p.match(IS) {
		for {
			p.parseInheritance()
			if !p.match(COMMA) {
				break
			}
		}
	}

	if !p.check(LEFT_BRACE) {
		p.errorHere("expected '{' to open contract body")
		return
	}
	p.next() // {

	for {
		t := p.peek()
		switch t.Type {
		case RIGHT_BRACE:
			p.next()
			return
		case EOF:
			p.errorHere("unterminated contract body")
			return
		case STRUCT:
			p.parseStruct()
		case FUNCTION:
			p.parseCallable(syntax.KindFunction, true)
		case CONSTRUCTOR:
			p.parseCallable(syntax.KindConstructor, false)
		case MODIFIER:
			p.parseCallable(syntax.KindModifierDef, true)
		case EVENT, ERROR_DECL, USING, TYPE_DECL:
			p.consumeTo(SEMICOLON, RIGHT_BRACE)
			if p.check(SEMICOLON) {
				p.next()
			}
		case ENUM:
			p.next()
			if p.check(IDENTIFIER) {
				p.next()
			}
			if p.check(LEFT_BRACE) {
				p.consumeBalanced(LEFT_BRACE, RIGHT_BRACE)
			}
		case SEMICOLON:
			p.next()
		case MAPPING, IDENTIFIER:
			p.parseStateVar()
		default:
			p.errorAt(t, fmt.Sprintf("unexpected token %q in contract body", t.Lexeme))
			p.next()
		}
	}
}

func (p *Parser) parseInheritance() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindInheritance, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	if !p.check(IDENTIFIER) {
		p.errorHere("expected base contract name")
		return
	}
	p.next()
	for p.check(DOT) {
		p.next()
		if !p.check(IDENTIFIER) {
			p.errorHere("expected identifier after '.'")
			return
		}
		p.next()
	}
	if p.check(LEFT_PAREN) {
		p.consumeBalanced(LEFT_PAREN, RIGHT_PAREN)
	}
}

func (p *Parser) parseStruct() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindStructDef, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	p.next() // struct
	if p.check(IDENTIFIER) {
		name := p.next()
		p.b.Leaf(syntax.KindIdentifier, tokenSpan(name))
	} else {
		p.errorHere("expected struct name")
	}
	if !p.check(LEFT_BRACE) {
		p.errorHere("expected '{' to open struct body")
		p.consumeTo(SEMICOLON, RIGHT_BRACE)
		if p.check(SEMICOLON) {
			p.next()
		}
		return
	}
	p.consumeBalanced(LEFT_BRACE, RIGHT_BRACE)
}

// parseCallable handles functions, constructors, and modifiers: optional
// name, optional parameter list, attribute soup up to the body or ';'.
func (p *Parser) parseCallable(kind syntax.Kind, named bool) {
	start := p.peek().Position.Offset
	p.b.Start(kind, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	p.next() // function / constructor / modifier

	if named {
		if p.check(IDENTIFIER) {
			name := p.next()
			p.b.Leaf(syntax.KindIdentifier, tokenSpan(name))
		} else {
			p.errorHere("expected name")
		}
	}

	if p.check(LEFT_PAREN) {
		p.parseParamList()
	}

	for {
		t := p.peek()
		switch t.Type {
		case SEMICOLON:
			p.next()
			return
		case LEFT_BRACE:
			p.parseBlock()
			return
		case LEFT_PAREN:
			p.consumeBalanced(LEFT_PAREN, RIGHT_PAREN)
		case RIGHT_BRACE, EOF:
			p.errorAt(t, "expected function body or ';'")
			return
		default:
			p.next()
		}
	}
}

func (p *Parser) parseParamList() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindParamList, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	p.next() // (
	if p.check(RIGHT_PAREN) {
		p.next()
		return
	}
	for {
		p.parseParam()
		if p.match(COMMA) {
			continue
		}
		if p.check(RIGHT_PAREN) {
			p.next()
			return
		}
		p.errorHere("expected ',' or ')' in parameter list")
		p.consumeTo(RIGHT_PAREN, SEMICOLON, LEFT_BRACE)
		if p.check(RIGHT_PAREN) {
			p.next()
		}
		return
	}
}

func (p *Parser) parseParam() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindParam, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	if !p.parseTypeName() {
		p.consumeTo(COMMA, RIGHT_PAREN, SEMICOLON)
		return
	}
	// Storage location and parameter name are attributes; consume flat.
	depth := 0
	for {
		t := p.peek()
		switch {
		case t.Type == EOF:
			return
		case depth == 0 && (t.Type == COMMA || t.Type == RIGHT_PAREN):
			return
		case t.Type == LEFT_PAREN || t.Type == LEFT_BRACKET:
			depth++
			p.next()
		case t.Type == RIGHT_PAREN || t.Type == RIGHT_BRACKET:
			depth--
			p.next()
		default:
			p.next()
		}
	}
}

// parseTypeName accepts elementary and user-defined type paths with array
// suffixes, plus mapping and function types as opaque balanced spans.
func (p *Parser) parseTypeName() bool {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindTypeName, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	switch p.peek().Type {
	case MAPPING:
		p.next()
		if !p.check(LEFT_PAREN) {
			p.errorHere("expected '(' after mapping")
			return false
		}
		p.consumeBalanced(LEFT_PAREN, RIGHT_PAREN)
	case FUNCTION:
		p.next()
		if p.check(LEFT_PAREN) {
			p.consumeBalanced(LEFT_PAREN, RIGHT_PAREN)
		}
	case IDENTIFIER:
		p.next()
		for {
			if p.check(DOT) {
				p.next()
				if !p.check(IDENTIFIER) {
					p.errorHere("expected identifier after '.'")
					return false
				}
				p.next()
			} else if p.check(LEFT_BRACKET) {
				p.consumeBalanced(LEFT_BRACKET, RIGHT_BRACKET)
			} else {
				break
			}
		}
	default:
		p.errorHere("expected type name")
		return false
	}
	return true
}

func (p *Parser) parseStateVar() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindStateVar, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	if !p.parseTypeName() {
		p.consumeTo(SEMICOLON, RIGHT_BRACE)
		if p.check(SEMICOLON) {
			p.next()
		}
		return
	}

	nameIdx, ok := p.findDeclarationName()
	if !ok {
		p.errorHere("expected variable name in declaration")
		p.consumeTo(SEMICOLON, RIGHT_BRACE)
		if p.check(SEMICOLON) {
			p.next()
		}
		return
	}

	// Attribute words between the type and the name; only constant and
	// immutable change behavior, the rest get stripped on migration.
	for p.pos < nameIdx {
		t := p.next()
		switch t.Type {
		case CONSTANT:
			p.b.SetFlags(syntax.FlagConstant)
		case IMMUTABLE:
			p.b.SetFlags(syntax.FlagImmutable)
		}
	}

	name := p.next()
	p.b.Leaf(syntax.KindIdentifier, tokenSpan(name))

	if p.check(EQUAL) {
		p.next()
		p.parseInitializer()
	}

	if p.check(SEMICOLON) {
		p.next()
	} else {
		p.errorHere("expected ';' after state variable declaration")
		p.consumeTo(SEMICOLON, RIGHT_BRACE)
		if p.check(SEMICOLON) {
			p.next()
		}
	}
}

// parseInitializer records the initializer as one raw expression span.
func (p *Parser) parseInitializer() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindExpression, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	depth := 0
	for {
		t := p.peek()
		switch {
		case t.Type == EOF:
			return
		case depth == 0 && t.Type == SEMICOLON:
			return
		case depth == 0 && t.Type == RIGHT_BRACE:
			return
		case t.Type == LEFT_PAREN || t.Type == LEFT_BRACKET || t.Type == LEFT_BRACE:
			depth++
			p.next()
		case t.Type == RIGHT_PAREN || t.Type == RIGHT_BRACKET || t.Type == RIGHT_BRACE:
			depth--
			p.next()
		default:
			p.next()
		}
	}
}

// findDeclarationName looks ahead (without consuming) for the last
// identifier before the initializer's '=' or the closing ';', which is
// the declared name; everything between type and name is attributes.
func (p *Parser) findDeclarationName() (int, bool) {
	nameIdx := -1
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		t := p.tokens[i]
		switch t.Type {
		case COMMENT, BLOCK_COMMENT, DOC_COMMENT:
			continue
		case LEFT_PAREN, LEFT_BRACKET:
			depth++
		case RIGHT_PAREN, RIGHT_BRACKET:
			depth--
		case IDENTIFIER:
			if depth == 0 {
				nameIdx = i
			}
		case EQUAL, SEMICOLON:
			if depth == 0 {
				return nameIdx, nameIdx >= 0
			}
		case LEFT_BRACE, RIGHT_BRACE, EOF:
			return -1, false
		}
	}
	return -1, false
}

// parseBlock records a body as a brace-balanced region, keeping
// identifier and comment leaves so references can be rewritten later.
func (p *Parser) parseBlock() {
	start := p.peek().Position.Offset
	p.b.Start(syntax.KindBlock, start)
	defer func() { p.b.Finish(p.prevEnd) }()

	p.next() // {
	depth := 1
	for depth > 0 {
		t := p.peek()
		if t.Type == EOF {
			p.errorHere("unterminated block")
			return
		}
		t = p.next()
		switch t.Type {
		case LEFT_BRACE:
			depth++
		case RIGHT_BRACE:
			depth--
		case IDENTIFIER:
			p.b.Leaf(syntax.KindIdentifier, tokenSpan(t))
		}
	}
}

func (p *Parser) skipLooseItem() {
	depth := 0
	for {
		t := p.peek()
		if t.Type == EOF {
			return
		}
		t = p.next()
		switch t.Type {
		case LEFT_BRACE:
			depth++
		case RIGHT_BRACE:
			depth--
			if depth <= 0 {
				return
			}
		case SEMICOLON:
			if depth == 0 {
				return
			}
		}
	}
}

// Token plumbing.

func (p *Parser) skipTrivia() {
	for {
		t := p.tokens[p.pos]
		switch t.Type {
		case COMMENT, BLOCK_COMMENT:
			p.b.Leaf(syntax.KindComment, tokenSpan(t))
			p.pos++
		case DOC_COMMENT:
			p.b.Leaf(syntax.KindDocComment, tokenSpan(t))
			p.pos++
		default:
			return
		}
	}
}

func (p *Parser) peek() Token {
	p.skipTrivia()
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	p.skipTrivia()
	t := p.tokens[p.pos]
	if t.Type != EOF {
		p.pos++
		p.prevEnd = t.End()
	}
	return t
}

func (p *Parser) check(tt TokenType) bool {
	return p.peek().Type == tt
}

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.next()
		return true
	}
	return false
}

// consumeTo advances until one of the given token types (or EOF) is next,
// leaving the terminator unconsumed. Bracket pairs are skipped whole.
func (p *Parser) consumeTo(types ...TokenType) {
	depth := 0
	for {
		t := p.peek()
		if t.Type == EOF {
			return
		}
		if depth == 0 {
			for _, tt := range types {
				if t.Type == tt {
					return
				}
			}
		}
		switch t.Type {
		case LEFT_PAREN, LEFT_BRACKET, LEFT_BRACE:
			depth++
		case RIGHT_PAREN, RIGHT_BRACKET, RIGHT_BRACE:
			if depth > 0 {
				depth--
			}
		}
		p.next()
	}
}

// consumeBalanced consumes an open token through its matching close.
func (p *Parser) consumeBalanced(open, close TokenType) {
	if !p.check(open) {
		return
	}
	p.next()
	depth := 1
	for depth > 0 {
		t := p.peek()
		if t.Type == EOF {
			p.errorHere("unexpected end of file")
			return
		}
		t = p.next()
		switch t.Type {
		case open:
			depth++
		case close:
			depth--
		}
	}
}

func (p *Parser) errorHere(message string) {
	p.errorAt(p.peek(), message)
}

func (p *Parser) errorAt(t Token, message string) {
	span := tokenSpan(t)
	if span.End == span.Start {
		span.End = span.Start + 1
	}
	p.b.Error(message, span)
}

func tokenSpan(t Token) syntax.Span {
	return syntax.Span{Start: t.Position.Offset, End: t.End()}
}
