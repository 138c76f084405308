package analysis

import (
	"strings"

	"namespacer/internal/syntax"
)

// IsUpgradeable reports whether a contract looks upgrade-sensitive. It is
// a shallow, single-contract heuristic over direct syntax only (no
// inheritance-chain resolution), so it can be both under- and
// over-inclusive. Any one signal is enough.
func IsUpgradeable(contract *syntax.Cursor) bool {
	return inheritsUpgradeableBase(contract) ||
		declaresAuthorizeUpgrade(contract) ||
		carriesUpgradesAnnotation(contract)
}

// inheritsUpgradeableBase checks the direct inheritance list for a type
// literally named Initializable or UUPSUpgradeable.
func inheritsUpgradeableBase(contract *syntax.Cursor) bool {
	c := contract.Spawn()
	for c.GoToNext(syntax.KindInheritance) {
		name := c.Text()
		if i := strings.IndexByte(name, '('); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(name)
		if name == "Initializable" || name == "UUPSUpgradeable" {
			return true
		}
	}
	return false
}

// declaresAuthorizeUpgrade checks for a function _authorizeUpgrade with
// exactly one parameter whose type unparses to address.
func declaresAuthorizeUpgrade(contract *syntax.Cursor) bool {
	c := contract.Spawn()
	for c.GoToNext(syntax.KindFunction) {
		fn := c.Spawn()
		if !fn.GoToNext(syntax.KindIdentifier) || fn.Text() != "_authorizeUpgrade" {
			c.StepOver()
			continue
		}
		params := c.Spawn()
		if !params.GoToNext(syntax.KindParamList) {
			c.StepOver()
			continue
		}
		list := params.Spawn()
		count := 0
		addressTyped := false
		for list.GoToNext(syntax.KindParam) {
			count++
			param := list.Spawn()
			if param.GoToNext(syntax.KindTypeName) {
				addressTyped = strings.TrimSpace(param.Text()) == "address"
			}
			list.StepOver()
		}
		if count == 1 && addressTyped {
			return true
		}
		c.StepOver()
	}
	return false
}

// carriesUpgradesAnnotation checks the contract's leading documentation
// comments for the oz-upgrades custom tags, whitespace-split so partial
// matches inside longer tokens don't count.
func carriesUpgradesAnnotation(contract *syntax.Cursor) bool {
	tree := contract.Tree()
	for _, span := range tree.LeadingDocComments(contract.Span().Start) {
		for _, token := range strings.Fields(tree.Text(span)) {
			if token == "@custom:oz-upgrades" || token == "@custom:oz-upgrades-from" {
				return true
			}
		}
	}
	return false
}
