package parser

// KEYWORDS maps the Solidity words the parser dispatches on. Visibility
// and mutability words other than constant/immutable deliberately stay
// identifiers: declarations treat them as attributes to strip, not as
// structure.
var KEYWORDS = map[string]TokenType{
	"pragma":      PRAGMA,
	"import":      IMPORT,
	"contract":    CONTRACT,
	"interface":   INTERFACE,
	"library":     LIBRARY,
	"abstract":    ABSTRACT,
	"is":          IS,
	"struct":      STRUCT,
	"function":    FUNCTION,
	"constructor": CONSTRUCTOR,
	"modifier":    MODIFIER,
	"mapping":     MAPPING,
	"event":       EVENT,
	"error":       ERROR_DECL,
	"enum":        ENUM,
	"using":       USING,
	"type":        TYPE_DECL,
	"constant":    CONSTANT,
	"immutable":   IMMUTABLE,
}
