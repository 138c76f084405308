package version

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/mod/semver"
)

// The pragma constraint grammar: terms conjoin by juxtaposition and
// groups disjoin with ||, e.g. ">=0.8.4 <0.9.0 || ^0.8.20".
var constraintLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Version", Pattern: `[0-9]+(\.[0-9]+){0,2}`},
		{Name: "Or", Pattern: `\|\|`},
		{Name: "Op", Pattern: `>=|<=|\^|~|<|>|=`},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})

type constraintSet struct {
	Groups []*constraintGroup `parser:"@@ ( '||' @@ )*"`
}

type constraintGroup struct {
	Terms []*constraintTerm `parser:"@@+"`
}

type constraintTerm struct {
	Op      string `parser:"@Op?"`
	Version string `parser:"@Version"`
}

var constraintParser = buildConstraintParser()

func buildConstraintParser() *participle.Parser[constraintSet] {
	p, err := participle.Build[constraintSet](
		participle.Lexer(constraintLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build constraint parser: %w", err))
	}
	return p
}

// ResolveConstraint picks the newest supported version satisfying the
// constraint text. It reports false when the text does not parse or no
// supported version matches.
func ResolveConstraint(text string) (string, bool) {
	set, err := constraintParser.ParseString("", text)
	if err != nil {
		return "", false
	}
	for _, v := range supported {
		for _, group := range set.Groups {
			if groupSatisfied(v, group) {
				return v, true
			}
		}
	}
	return "", false
}

func groupSatisfied(v string, group *constraintGroup) bool {
	for _, term := range group.Terms {
		if !satisfies(v, term.Op, term.Version) {
			return false
		}
	}
	return true
}

func satisfies(v, op, ref string) bool {
	cv := "v" + v
	parts := strings.Split(ref, ".")
	cref := "v" + pad(ref)

	switch op {
	case "", "=":
		// A partial version pins only the named components.
		switch len(parts) {
		case 1:
			return semver.Major(cv) == "v"+parts[0]
		case 2:
			return semver.MajorMinor(cv) == "v"+parts[0]+"."+parts[1]
		default:
			return semver.Compare(cv, cref) == 0
		}
	case "^":
		return semver.Compare(cv, cref) >= 0 && semver.Compare(cv, caretUpper(parts)) < 0
	case "~":
		return semver.Compare(cv, cref) >= 0 && semver.Compare(cv, nextMinor(parts)) < 0
	case ">=":
		return semver.Compare(cv, cref) >= 0
	case "<=":
		return semver.Compare(cv, cref) <= 0
	case ">":
		return semver.Compare(cv, cref) > 0
	case "<":
		return semver.Compare(cv, cref) < 0
	}
	return false
}

func pad(ref string) string {
	parts := strings.Split(ref, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return strings.Join(parts, ".")
}

// caretUpper follows the npm caret rule: the leftmost non-zero component
// pins. For 0.x that bumps the minor, otherwise the major.
func caretUpper(parts []string) string {
	major := parts[0]
	if major != "0" {
		return "v" + bump(major) + ".0.0"
	}
	minor := "0"
	if len(parts) > 1 {
		minor = parts[1]
	}
	return "v0." + bump(minor) + ".0"
}

func nextMinor(parts []string) string {
	minor := "0"
	if len(parts) > 1 {
		minor = parts[1]
	}
	return "v" + parts[0] + "." + bump(minor) + ".0"
}

func bump(number string) string {
	n := 0
	for _, r := range number {
		n = n*10 + int(r-'0')
	}
	return fmt.Sprintf("%d", n+1)
}
