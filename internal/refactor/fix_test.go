package refactor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namespacer/internal/analysis"
	"namespacer/internal/parser"
	"namespacer/internal/slot"
	"namespacer/internal/syntax"
	"namespacer/internal/version"
)

func analyzeSource(t *testing.T, source, prefix string) []analysis.Diagnostic {
	t.Helper()
	tree := parser.Parse(version.Latest(), source)
	return analysis.Analyze(tree, prefix)
}

func migrationFix(t *testing.T, source, prefix string) Fix {
	t.Helper()
	var migrations []analysis.Diagnostic
	for _, d := range analyzeSource(t, source, prefix) {
		if d.Code == analysis.CodeContractCanBeNamespaced {
			migrations = append(migrations, d)
		}
	}
	require.Len(t, migrations, 1)

	fixes := BuildQuickFixes(migrations, source)
	require.Len(t, fixes, 1)
	return fixes[0]
}

func TestReplacementFix(t *testing.T) {
	source := `contract Bar is Initializable {
    /// @custom:storage-location erc7201:wrong.Name
    struct BarStorage {
        uint256 a;
    }
}`
	diags := analyzeSource(t, source, "myapp")
	require.NotEmpty(t, diags)

	fixes := BuildQuickFixes(diags, source)
	require.Len(t, fixes, 1)
	assert.Equal(t, "Fix storage location annotation", fixes[0].Title)

	fixed := Apply(source, fixes[0].Edits)
	assert.Contains(t, fixed, "erc7201:myapp.Bar")
	assert.NotContains(t, fixed, "wrong.Name")
}

func TestMigrationSynthesizesNamespaceBlock(t *testing.T) {
	source := `contract Bar is Initializable {
    uint256 a;
    uint256 b = 1;

    function setA(uint256 value) public {
        a = value;
    }

    function reset() public {
        a = 0;
        b = 0;
    }
}`
	fix := migrationFix(t, source, "myapp")
	assert.Equal(t, "Move Bar state into namespaced storage", fix.Title)

	fixed := Apply(source, fix.Edits)

	assert.Contains(t, fixed, "/// @custom:storage-location erc7201:myapp.Bar")
	assert.Contains(t, fixed, "struct BarStorage {")
	assert.Contains(t, fixed, "uint256 a;")
	assert.Contains(t, fixed, "uint256 b;")
	assert.NotContains(t, fixed, "b = 1", "initial values are dropped from moved declarations")

	assert.Contains(t, fixed,
		"bytes32 private constant BAR_STORAGE_LOCATION = "+slot.Hash("myapp.Bar")+";")
	assert.Contains(t, fixed, "function _getBarStorage() private pure returns (BarStorage storage $)")
	assert.Contains(t, fixed, "$.slot := BAR_STORAGE_LOCATION")

	assert.Contains(t, fixed, "$.a = value;")
	assert.Contains(t, fixed, "$.a = 0;")
	assert.Contains(t, fixed, "$.b = 0;")

	accessor := "BarStorage storage $ = _getBarStorage();"
	assert.Equal(t, 2, strings.Count(fixed, accessor),
		"each rewritten body fetches the storage pointer exactly once")
}

func TestMigrationConverges(t *testing.T) {
	source := `contract Bar is Initializable {
    uint256 a;

    function setA(uint256 value) public {
        a = value;
    }
}`
	fixed := Apply(source, migrationFix(t, source, "myapp").Edits)

	assert.Empty(t, analyzeSource(t, fixed, "myapp"),
		"the migrated contract must come back clean")
}

func TestMigrationBodyStartingAtBrace(t *testing.T) {
	// The first statement sits directly against the opening brace, so the
	// accessor insertion and the identifier rewrite start at the same
	// offset; the fetch must still land before the statement.
	source := `contract Bar is Initializable {
    uint256 a;

    function setA(uint256 value) public {a = value;}
}`
	fixed := Apply(source, migrationFix(t, source, "myapp").Edits)

	assert.Contains(t, fixed, "BarStorage storage $ = _getBarStorage();$.a = value;}",
		"the accessor fetch precedes the rewritten statement intact")
	assert.NotContains(t, fixed, "$.a\n",
		"the fetch must not split the statement it enables")
	assert.Empty(t, analyzeSource(t, fixed, "myapp"),
		"the migrated contract must come back clean")
}

func TestMigrationExtendsExistingStruct(t *testing.T) {
	source := `contract Bar is Initializable {
    /// @custom:storage-location erc7201:myapp.Bar
    struct BarStorage {
        uint256 a;
    }

    uint256 b;
}`
	fixed := Apply(source, migrationFix(t, source, "myapp").Edits)

	assert.Contains(t, fixed, "        uint256 b;\n    }",
		"the new field lands before the struct's closing brace")
	assert.Equal(t, 1, strings.Count(fixed, "uint256 b;"),
		"the original declaration is deleted, not duplicated")
	assert.Equal(t, 1, strings.Count(fixed, "struct BarStorage"),
		"no second struct is synthesized when one already carries the namespace")
}

func TestMigrationSkipsMemberAccesses(t *testing.T) {
	source := `contract Bar is Initializable {
    uint256 total;

    function sync(Other other) public {
        total = other.total;
    }
}`
	fixed := Apply(source, migrationFix(t, source, "myapp").Edits)

	assert.Contains(t, fixed, "$.total = other.total;",
		"only bare references are redirected, not fields of other objects")
}

func TestMigrationPreservesConstants(t *testing.T) {
	source := `contract Bar is Initializable {
    uint256 constant MAX = 100;
    uint256 a;

    function cap() public {
        a = MAX;
    }
}`
	fixed := Apply(source, migrationFix(t, source, "myapp").Edits)

	assert.Contains(t, fixed, "uint256 constant MAX = 100;",
		"constants stay where they are")
	assert.Contains(t, fixed, "$.a = MAX;",
		"constant reads keep their direct reference")
}

func TestStaleMigrationOnBrokenDocumentIsDropped(t *testing.T) {
	// A migration payload applied against text where the contract no
	// longer exists must yield no fix rather than a bad one.
	diag := analysis.Diagnostic{
		Code: analysis.CodeContractCanBeNamespaced,
		Repair: analysis.Migration{Contract: analysis.NamespaceableContract{
			Name:      "Gone",
			Prefix:    "myapp",
			Variables: []analysis.Variable{{Name: "a", Declaration: "uint256 a;", Span: syntax.Span{Start: 0, End: 10}}},
		}},
	}
	fixes := BuildQuickFixes([]analysis.Diagnostic{diag}, "contract Other {}")
	assert.Empty(t, fixes)
}

func TestDiagnosticWithoutRepairYieldsNoFix(t *testing.T) {
	diag := analysis.Diagnostic{Code: analysis.CodeVariableCanBeNamespaced}
	assert.Empty(t, BuildQuickFixes([]analysis.Diagnostic{diag}, "contract C {}"))
}
