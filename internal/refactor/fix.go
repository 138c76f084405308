package refactor

import (
	"fmt"
	"log"
	"strings"

	"namespacer/internal/analysis"
	"namespacer/internal/parser"
	"namespacer/internal/slot"
	"namespacer/internal/syntax"
	"namespacer/internal/version"
)

// Fix is one coherent, atomic set of edits resolving a diagnostic.
type Fix struct {
	Title      string
	Diagnostic analysis.Diagnostic
	Edits      []TextEdit
}

// BuildQuickFixes produces at most one fix per qualifying diagnostic. A
// failure assembling one fix never suppresses the fixes of its siblings,
// and no fix with overlapping or out-of-bounds edits is ever returned.
func BuildQuickFixes(diags []analysis.Diagnostic, doc string) []Fix {
	var fixes []Fix
	for _, d := range diags {
		fix, ok := buildFix(d, doc)
		if !ok {
			continue
		}
		if err := Validate(fix.Edits, len(doc)); err != nil {
			log.Printf("dropping fix for %s: %v", d.Code, err)
			continue
		}
		fixes = append(fixes, fix)
	}
	return fixes
}

func buildFix(d analysis.Diagnostic, doc string) (fix Fix, ok bool) {
	// One failing repair payload must not take down its siblings.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("fix assembly for %s panicked: %v", d.Code, r)
			ok = false
		}
	}()

	switch repair := d.Repair.(type) {
	case analysis.Replacement:
		return Fix{
			Title:      simpleFixTitle(d.Code),
			Diagnostic: d,
			Edits:      []TextEdit{{Span: d.Span, NewText: repair.Text}},
		}, true
	case analysis.Migration:
		edits := buildMigration(repair.Contract, doc)
		if len(edits) == 0 {
			return Fix{}, false
		}
		return Fix{
			Title:      fmt.Sprintf("Move %s state into namespaced storage", repair.Contract.Name),
			Diagnostic: d,
			Edits:      edits,
		}, true
	default:
		return Fix{}, false
	}
}

func simpleFixTitle(code analysis.Code) string {
	switch code {
	case analysis.CodeNamespaceIdMismatch:
		return "Fix storage location annotation"
	case analysis.CodeNamespaceIdMismatchHashComment:
		return "Fix namespace id in slot comment"
	case analysis.CodeNamespaceHashMismatch, analysis.CodeNamespaceStandaloneHashMismatch:
		return "Recompute slot constant"
	default:
		return "Apply suggested replacement"
	}
}

// buildMigration assembles the move-all-variables fix. The contract is
// re-located in a fresh parse of the current text so struct and body
// positions cannot drift; the variables' own spans were captured against
// the same document version and are used as stored.
func buildMigration(contract analysis.NamespaceableContract, doc string) []TextEdit {
	if len(contract.Variables) == 0 {
		return nil
	}

	tree := parser.Parse(version.Latest(), doc)
	target, ok := findContract(tree, contract.Name)
	if !ok || tree.ErrorIn(target.Span()) {
		return nil
	}

	expected := analysis.ResolveIdentifier(contract.Prefix, contract.Name)

	var edits []TextEdit
	if structSpan, found := findNamespaceStruct(tree, target, expected); found {
		edits = append(edits, extendStructEdits(doc, structSpan, contract.Variables)...)
	} else {
		edits = append(edits, synthesizeStructEdits(doc, expected, contract)...)
	}

	edits = append(edits, rewriteBodyReferences(tree, target, contract)...)
	return edits
}

func findContract(tree *syntax.Tree, name string) (*syntax.Cursor, bool) {
	c := tree.Root().Clone()
	for c.GoToNext(syntax.KindContract) {
		contract := c.Spawn()
		c.StepOver()
		probe := contract.Clone()
		if probe.GoToNext(syntax.KindIdentifier) && probe.Text() == name {
			return contract, true
		}
	}
	return nil, false
}

// findNamespaceStruct locates the first struct in the contract whose
// leading doc comment declares the expected erc7201 namespace.
func findNamespaceStruct(tree *syntax.Tree, contract *syntax.Cursor, expected string) (syntax.Span, bool) {
	want := "erc7201:" + expected
	c := contract.Spawn()
	for c.GoToNext(syntax.KindStructDef) {
		structSpan := c.Span()
		c.StepOver()
		for _, docSpan := range tree.LeadingDocComments(structSpan.Start) {
			text := tree.Text(docSpan)
			if !strings.Contains(text, "@custom:storage-location") {
				continue
			}
			for _, token := range strings.Fields(text) {
				if token == want {
					return structSpan, true
				}
			}
		}
	}
	return syntax.Span{}, false
}

// extendStructEdits deletes each variable's original declaration and
// inserts its normalized form before the struct's closing brace. All
// insertions share the same anchor, so they accumulate in order.
func extendStructEdits(doc string, structSpan syntax.Span, variables []analysis.Variable) []TextEdit {
	brace := structSpan.End - 1
	anchor := brace
	if ls := lineStart(doc, brace); isBlankString(doc[ls:brace]) {
		anchor = ls
	}
	indent := lineIndent(doc, brace) + "    "

	var edits []TextEdit
	for _, v := range variables {
		edits = append(edits,
			TextEdit{Span: v.Span, NewText: ""},
			TextEdit{Span: syntax.Span{Start: anchor, End: anchor}, NewText: indent + v.Declaration + "\n"},
		)
	}
	return edits
}

// synthesizeStructEdits replaces the first variable's declaration with a
// full namespace block and deletes the remaining declarations. Field
// order matches the original declaration order.
func synthesizeStructEdits(doc string, expected string, contract analysis.NamespaceableContract) []TextEdit {
	first := contract.Variables[0]
	block := renderNamespaceBlock(expected, contract, lineIndent(doc, first.Span.Start))

	edits := []TextEdit{{Span: first.Span, NewText: block}}
	for _, v := range contract.Variables[1:] {
		edits = append(edits, TextEdit{Span: v.Span, NewText: ""})
	}
	return edits
}

func renderNamespaceBlock(expected string, contract analysis.NamespaceableContract, indent string) string {
	name := contract.Name
	constant := upperSnake(name) + "_STORAGE_LOCATION"

	var b strings.Builder
	fmt.Fprintf(&b, "/// @custom:storage-location erc7201:%s\n", expected)
	fmt.Fprintf(&b, "%sstruct %sStorage {\n", indent, name)
	for _, v := range contract.Variables {
		fmt.Fprintf(&b, "%s    %s\n", indent, v.Declaration)
	}
	fmt.Fprintf(&b, "%s}\n\n", indent)
	fmt.Fprintf(&b, "%s// keccak256(abi.encode(uint256(keccak256(\"%s\")) - 1)) & ~bytes32(uint256(0xff))\n", indent, expected)
	fmt.Fprintf(&b, "%sbytes32 private constant %s = %s;\n\n", indent, constant, slot.Hash(expected))
	fmt.Fprintf(&b, "%sfunction _get%sStorage() private pure returns (%sStorage storage $) {\n", indent, name, name)
	fmt.Fprintf(&b, "%s    assembly {\n", indent)
	fmt.Fprintf(&b, "%s        $.slot := %s\n", indent, constant)
	fmt.Fprintf(&b, "%s    }\n", indent)
	fmt.Fprintf(&b, "%s}", indent)
	return b.String()
}

// rewriteBodyReferences redirects every body-level reference to a moved
// variable through the storage accessor, and inserts the accessor fetch
// once per body that needed a rewrite. The verbatim-presence check keeps
// repeated applications from inserting the fetch twice.
func rewriteBodyReferences(tree *syntax.Tree, contract *syntax.Cursor, nc analysis.NamespaceableContract) []TextEdit {
	names := make(map[string]bool, len(nc.Variables))
	for _, v := range nc.Variables {
		names[v.Name] = true
	}
	accessor := fmt.Sprintf("%sStorage storage $ = _get%sStorage();", nc.Name, nc.Name)
	doc := tree.Source()

	var edits []TextEdit
	c := contract.Spawn()
	for c.GoToNext(syntax.KindConstructor, syntax.KindFunction) {
		fn := c.Spawn()
		c.StepOver()
		if !fn.GoToNext(syntax.KindBlock) {
			continue
		}
		body := fn.Spawn()
		bodySpan := body.Span()

		rewrites := 0
		for body.GoToNext(syntax.KindIdentifier) {
			name := body.Text()
			if !names[name] || isMemberAccess(doc, body.Span().Start) {
				continue
			}
			edits = append(edits, TextEdit{Span: body.Span(), NewText: "$." + name})
			rewrites++
		}
		if rewrites == 0 {
			continue
		}
		if strings.Contains(tree.Text(bodySpan), accessor) {
			continue
		}
		insertAt := bodySpan.Start + 1
		indent := lineIndent(doc, bodySpan.Start) + "    "
		edits = append(edits, TextEdit{
			Span:    syntax.Span{Start: insertAt, End: insertAt},
			NewText: "\n" + indent + accessor,
		})
	}
	return edits
}

// isMemberAccess reports whether the identifier at offset is the right
// side of a member access, looking back over whitespace for a '.'.
func isMemberAccess(doc string, offset int) bool {
	for i := offset - 1; i >= 0; i-- {
		switch doc[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case '.':
			return true
		default:
			return false
		}
	}
	return false
}

func lineStart(doc string, offset int) int {
	start := strings.LastIndexByte(doc[:offset], '\n') + 1
	return start
}

func lineIndent(doc string, offset int) string {
	start := lineStart(doc, offset)
	end := start
	for end < len(doc) && (doc[end] == ' ' || doc[end] == '\t') {
		end++
	}
	return doc[start:end]
}

func isBlankString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return false
		}
	}
	return true
}

func upperSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' && i > 0 {
			prev := name[i-1]
			if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
