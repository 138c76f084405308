package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"namespacer/internal/slot"
	"namespacer/internal/syntax"
)

// storageLocationAnnotation matches the ERC-7201 doc annotation and
// captures the declared namespace id.
var storageLocationAnnotation = regexp.MustCompile(`@custom:storage-location\s+erc7201:([\w.$-]+)`)

// slotFormula matches the canonical slot-derivation comment and captures
// the namespace id embedded in its inner keccak256 call.
var slotFormula = regexp.MustCompile(`keccak256\(abi\.encode\(uint256\(keccak256\("([^"]+)"\)\)\s*-\s*1\)\)\s*&\s*~bytes32\(uint256\(0xff\)\)`)

// Analyze walks every contract in the tree and applies the diagnostic
// rules. Contracts poisoned by parse errors are skipped whole; the rest
// of the document still gets diagnostics.
func Analyze(tree *syntax.Tree, prefix string) []Diagnostic {
	var diags []Diagnostic
	c := tree.Root().Clone()
	for c.GoToNext(syntax.KindContract) {
		contract := c.Spawn()
		c.StepOver()
		if tree.ErrorIn(contract.Span()) {
			continue
		}
		diags = append(diags, analyzeContract(tree, contract, prefix)...)
	}
	return diags
}

func analyzeContract(tree *syntax.Tree, contract *syntax.Cursor, prefix string) []Diagnostic {
	nameSpan, ok := childSpan(contract, syntax.KindIdentifier)
	if !ok {
		return nil
	}
	name := tree.Text(nameSpan)
	expected := ResolveIdentifier(prefix, name)
	upgradeable := IsUpgradeable(contract)

	var diags []Diagnostic
	if upgradeable {
		diags = append(diags, checkStructAnnotations(tree, contract, expected)...)
		diags = append(diags, checkSlotComments(tree, contract, expected)...)
	}

	eligible, varDiags := collectEligibleVariables(tree, contract, upgradeable)
	diags = append(diags, varDiags...)

	if upgradeable && len(eligible) > 0 {
		span := syntax.Span{Start: nameSpan.Start, End: contract.Span().End}
		diags = append(diags, Diagnostic{
			Code:     CodeContractCanBeNamespaced,
			Severity: SeverityInformation,
			Message:  fmt.Sprintf("contract %s can move its state into ERC-7201 namespaced storage", name),
			Detail:   fmt.Sprintf("%d state variable(s) are eligible for namespace %q", len(eligible), expected),
			Span:     span,
			Repair: Migration{Contract: NamespaceableContract{
				Name:      name,
				Prefix:    prefix,
				Variables: eligible,
			}},
		})
	}
	return diags
}

// checkStructAnnotations compares every @custom:storage-location
// erc7201 annotation in the contract against the expected namespace id.
func checkStructAnnotations(tree *syntax.Tree, contract *syntax.Cursor, expected string) []Diagnostic {
	var diags []Diagnostic
	c := contract.Spawn()
	for c.GoToNext(syntax.KindStructDef) {
		structSpan := c.Span()
		c.StepOver()
		for _, docSpan := range tree.LeadingDocComments(structSpan.Start) {
			text := tree.Text(docSpan)
			m := storageLocationAnnotation.FindStringSubmatchIndex(text)
			if m == nil {
				continue
			}
			declared := text[m[2]:m[3]]
			if declared == expected {
				continue
			}
			diags = append(diags, Diagnostic{
				Code:     CodeNamespaceIdMismatch,
				Severity: SeverityWarning,
				Message:  "storage location annotation does not match the expected namespace id",
				Detail:   fmt.Sprintf("expected %q, found %q", expected, declared),
				Span:     docSpan,
				Repair:   Replacement{Text: text[:m[2]] + expected + text[m[3]:]},
			})
		}
	}
	return diags
}

// checkSlotComments applies the comment/hash rules to state variables
// preceded by the canonical slot-derivation comment. The comment wins a
// disagreement: when its id mismatches the expected one, the hash check
// runs against the comment's id; the standalone check against the
// expected id runs only when the comment already agrees.
func checkSlotComments(tree *syntax.Tree, contract *syntax.Cursor, expected string) []Diagnostic {
	var diags []Diagnostic
	c := contract.Spawn()
	for c.GoToNext(syntax.KindStateVar) {
		v := c.Spawn()
		c.StepOver()

		commentSpan, ok := precedingComment(tree, v.Span().Start)
		if !ok {
			continue
		}
		text := tree.Text(commentSpan)
		m := slotFormula.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		embedded := text[m[2]:m[3]]

		commentFlagged := embedded != expected
		if commentFlagged {
			diags = append(diags, Diagnostic{
				Code:     CodeNamespaceIdMismatchHashComment,
				Severity: SeverityWarning,
				Message:  "slot derivation comment references a different namespace id",
				Detail:   fmt.Sprintf("expected %q, found %q", expected, embedded),
				Span:     commentSpan,
				Repair:   Replacement{Text: text[:m[2]] + expected + text[m[3]:]},
			})
		}

		nameSpan, ok := childSpan(v, syntax.KindIdentifier)
		if !ok || !isSlotConstantName(tree.Text(nameSpan)) {
			continue
		}
		initSpan, ok := childSpan(v, syntax.KindExpression)
		if !ok {
			continue
		}
		initText := strings.ToLower(tree.Text(initSpan))

		if commentFlagged {
			hash := slot.Hash(embedded)
			if !strings.Contains(initText, hash) {
				diags = append(diags, Diagnostic{
					Code:     CodeNamespaceHashMismatch,
					Severity: SeverityWarning,
					Message:  "slot constant does not match the hash derived from its comment",
					Detail:   fmt.Sprintf("namespace %q hashes to %s", embedded, hash),
					Span:     initSpan,
					Repair:   Replacement{Text: hash},
				})
			}
		} else {
			hash := slot.Hash(expected)
			if !strings.Contains(initText, hash) {
				diags = append(diags, Diagnostic{
					Code:     CodeNamespaceStandaloneHashMismatch,
					Severity: SeverityWarning,
					Message:  "slot constant does not match the expected namespace hash",
					Detail:   fmt.Sprintf("namespace %q hashes to %s", expected, hash),
					Span:     initSpan,
					Repair:   Replacement{Text: hash},
				})
			}
		}
	}
	return diags
}

// collectEligibleVariables gathers state variables that can move into a
// namespace struct. Constant and immutable declarations are excluded
// outright. Upgradeable contracts accumulate silently for the bulk fix;
// everything else gets a per-variable diagnostic.
func collectEligibleVariables(tree *syntax.Tree, contract *syntax.Cursor, upgradeable bool) ([]Variable, []Diagnostic) {
	var eligible []Variable
	var diags []Diagnostic

	c := contract.Spawn()
	for c.GoToNext(syntax.KindStateVar) {
		v := c.Spawn()
		c.StepOver()

		if v.Flags()&(syntax.FlagConstant|syntax.FlagImmutable) != 0 {
			continue
		}
		typeSpan, ok := childSpan(v, syntax.KindTypeName)
		if !ok {
			continue
		}
		nameSpan, ok := childSpan(v, syntax.KindIdentifier)
		if !ok {
			continue
		}
		name := tree.Text(nameSpan)
		variable := Variable{
			Name:        name,
			Declaration: tree.Text(typeSpan) + " " + name + ";",
			Span:        v.Span(),
		}
		eligible = append(eligible, variable)

		if upgradeable {
			continue
		}
		if _, hasInit := childSpan(v, syntax.KindExpression); hasInit {
			diags = append(diags, Diagnostic{
				Code:     CodeVariableCanBeNamespaced,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("state variable %s has an initial value", name),
				Detail:   "inline initial values are lost behind a proxy; assign in an initializer before namespacing",
				Span:     v.Span(),
			})
		} else {
			diags = append(diags, Diagnostic{
				Code:     CodeVariableCanBeNamespaced,
				Severity: SeverityInformation,
				Message:  fmt.Sprintf("state variable %s can be namespaced", name),
				Detail:   "moving state into ERC-7201 namespaced storage avoids layout collisions across upgrades",
				Span:     v.Span(),
			})
		}
	}
	return eligible, diags
}

// isSlotConstantName matches the naming conventions for slot constants.
func isSlotConstantName(name string) bool {
	return strings.HasSuffix(name, "_STORAGE_LOCATION") || strings.HasSuffix(name, "StorageLocation")
}

// precedingComment returns the comment immediately before the given
// offset, if the run of leading comments is non-empty.
func precedingComment(tree *syntax.Tree, start int) (syntax.Span, bool) {
	comments := tree.LeadingComments(start)
	if len(comments) == 0 {
		return syntax.Span{}, false
	}
	return comments[len(comments)-1], true
}

// childSpan finds the first descendant of the given kind inside the
// cursor's subtree, without moving the cursor.
func childSpan(c *syntax.Cursor, kind syntax.Kind) (syntax.Span, bool) {
	child := c.Spawn()
	if !child.GoToNext(kind) {
		return syntax.Span{}, false
	}
	return child.Span(), true
}
