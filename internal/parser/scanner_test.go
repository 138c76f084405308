package parser

import (
	"testing"
)

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := "pragma contract interface library abstract is struct function constructor modifier mapping constant immutable totalSupply"
	expected := []TokenType{
		PRAGMA, CONTRACT, INTERFACE, LIBRARY, ABSTRACT, IS, STRUCT,
		FUNCTION, CONSTRUCTOR, MODIFIER, MAPPING, CONSTANT, IMMUTABLE, IDENTIFIER,
	}

	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	if len(tokens) < len(expected) {
		t.Fatalf("expected at least %d tokens, got %d", len(expected), len(tokens))
	}

	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected type %d, got %d (%q)", i, exp, tokens[i].Type, tokens[i].Lexeme)
		}
	}
}

func TestVisibilityWordsStayIdentifiers(t *testing.T) {
	input := "public private internal external view pure payable override virtual memory storage calldata"
	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	for _, tok := range tokens {
		if tok.Type == EOF {
			break
		}
		if tok.Type != IDENTIFIER {
			t.Errorf("%q should scan as IDENTIFIER, got type %d", tok.Lexeme, tok.Type)
		}
	}
}

func TestNumbers(t *testing.T) {
	input := "42 0 1_000_000 1e18 0x0 0xFF 0xAB_CD"
	expected := []TokenType{NUMBER, NUMBER, NUMBER, NUMBER, HEX_NUMBER, HEX_NUMBER, HEX_NUMBER}

	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	if len(tokens) < len(expected) {
		t.Fatalf("expected at least %d tokens, got %d", len(expected), len(tokens))
	}

	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected type %d, got %d (%q)", i, exp, tokens[i].Type, tokens[i].Lexeme)
		}
	}
}

func TestStringsKeepQuotesVerbatim(t *testing.T) {
	input := `"hello" 'world'`
	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	if tokens[0].Type != STRING || tokens[0].Lexeme != `"hello"` {
		t.Errorf("expected STRING %q, got %q", `"hello"`, tokens[0].Lexeme)
	}
	if tokens[1].Type != STRING || tokens[1].Lexeme != `'world'` {
		t.Errorf("expected STRING %q, got %q", `'world'`, tokens[1].Lexeme)
	}
}

func TestDollarAndUnderscoreIdentifiers(t *testing.T) {
	input := "$ $.slot _authorizeUpgrade BAR_STORAGE_LOCATION"
	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	wantLexemes := []string{"$", "$", ".", "slot", "_authorizeUpgrade", "BAR_STORAGE_LOCATION"}
	wantTypes := []TokenType{IDENTIFIER, IDENTIFIER, DOT, IDENTIFIER, IDENTIFIER, IDENTIFIER}

	for i := range wantLexemes {
		if tokens[i].Lexeme != wantLexemes[i] || tokens[i].Type != wantTypes[i] {
			t.Errorf("token %d: expected %q (type %d), got %q (type %d)",
				i, wantLexemes[i], wantTypes[i], tokens[i].Lexeme, tokens[i].Type)
		}
	}
}

func TestEqualStaysDistinct(t *testing.T) {
	input := "= == => >= <= !="
	expected := []TokenType{EQUAL, OPERATOR, OPERATOR, OPERATOR, OPERATOR, OPERATOR}

	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d (%q): expected type %d, got %d", i, tokens[i].Lexeme, exp, tokens[i].Type)
		}
	}
}

func TestCommentClassification(t *testing.T) {
	input := "// plain\n/// doc\n/* block */\n/** docblock */"
	expected := []TokenType{COMMENT, DOC_COMMENT, BLOCK_COMMENT, DOC_COMMENT}

	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d (%q): expected type %d, got %d", i, tokens[i].Lexeme, exp, tokens[i].Type)
		}
	}
}

func TestTokenOffsets(t *testing.T) {
	input := "uint256 total;"
	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	if tokens[0].Position.Offset != 0 || tokens[0].End() != 7 {
		t.Errorf("uint256 should span [0,7), got [%d,%d)", tokens[0].Position.Offset, tokens[0].End())
	}
	if tokens[1].Position.Offset != 8 || tokens[1].End() != 13 {
		t.Errorf("total should span [8,13), got [%d,%d)", tokens[1].Position.Offset, tokens[1].End())
	}
	if input[tokens[1].Position.Offset:tokens[1].End()] != "total" {
		t.Errorf("lexeme span does not slice back to the source text")
	}
}

func TestUnterminatedString(t *testing.T) {
	scanner := NewScanner(`"no closing quote`)
	scanner.ScanTokens()

	if len(scanner.Errors()) != 1 {
		t.Fatalf("expected 1 scan error, got %d", len(scanner.Errors()))
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	scanner := NewScanner("/* never ends")
	scanner.ScanTokens()

	if len(scanner.Errors()) != 1 {
		t.Fatalf("expected 1 scan error, got %d", len(scanner.Errors()))
	}
}

func TestUnknownRunesBecomeOperators(t *testing.T) {
	scanner := NewScanner("a @ b")
	tokens := scanner.ScanTokens()

	if len(scanner.Errors()) != 0 {
		t.Fatalf("unknown runes must not produce scan errors, got %d", len(scanner.Errors()))
	}
	if tokens[1].Type != OPERATOR || tokens[1].Lexeme != "@" {
		t.Errorf("expected OPERATOR %q, got type %d %q", "@", tokens[1].Type, tokens[1].Lexeme)
	}
}
