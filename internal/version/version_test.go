package version

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namespacer/internal/parser"
)

func TestPragmaExtraction(t *testing.T) {
	tree := parser.Parse(Latest(), `// SPDX-License-Identifier: MIT
pragma solidity >=0.8.4 <0.9.0;

contract C {}`)
	assert.Equal(t, ">=0.8.4 <0.9.0", Pragma(tree))
}

func TestPragmaAbsent(t *testing.T) {
	tree := parser.Parse(Latest(), `contract C {}`)
	assert.Equal(t, "", Pragma(tree))

	// Non-version pragmas don't count.
	tree = parser.Parse(Latest(), `pragma abicoder v2;
contract C {}`)
	assert.Equal(t, "", Pragma(tree))
}

func TestInferPriority(t *testing.T) {
	ctx := context.Background()
	r := NewResolver()
	doc := filepath.Join(t.TempDir(), "C.sol")

	assert.Equal(t, "0.8.19", r.Infer(ctx, doc, nil, "0.8.19", "^0.8.0"),
		"an explicit setting beats everything")
	assert.Equal(t, "0.8.30", r.Infer(ctx, doc, nil, "", "^0.8.0"),
		"without a setting the pragma resolves")
	assert.Equal(t, Latest(), r.Infer(ctx, doc, nil, "", ""),
		"with nothing to go on the newest supported version wins")
	assert.Equal(t, Latest(), r.Infer(ctx, doc, nil, "", "not a constraint"),
		"an unresolvable pragma falls through to the newest version")
}

func TestInferReadsFoundryConfig(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte(`[profile.default]
solc = "0.8.21"
`), 0644))

	r := NewResolver()
	doc := filepath.Join(src, "C.sol")

	assert.Equal(t, "0.8.21", r.Infer(ctx, doc, []string{root}, "", "^0.8.0"),
		"a pinned compiler in foundry.toml beats the pragma")
	assert.Equal(t, "0.8.19", r.Infer(ctx, doc, []string{root}, "0.8.19", ""),
		"an explicit setting still beats foundry.toml")
}

func TestInferReadsSolcVersionKey(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte(`[profile.default]
solc_version = "0.8.17"
`), 0644))

	r := NewResolver()
	doc := filepath.Join(root, "C.sol")
	assert.Equal(t, "0.8.17", r.Infer(ctx, doc, []string{root}, "", ""))
}

func TestFoundryScanStopsAtWorkspaceRoot(t *testing.T) {
	ctx := context.Background()
	outer := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outer, "foundry.toml"), []byte(`[profile.default]
solc = "0.8.21"
`), 0644))

	inner := filepath.Join(outer, "workspace")
	require.NoError(t, os.MkdirAll(inner, 0755))

	r := NewResolver()
	doc := filepath.Join(inner, "C.sol")

	assert.Equal(t, Latest(), r.Infer(ctx, doc, []string{inner}, "", ""),
		"configs above the workspace root are out of scope")
	assert.Equal(t, "0.8.21", r.Infer(ctx, doc, nil, "", ""),
		"without a declared root the scan walks all the way up")
}

func TestSupportedIsACopy(t *testing.T) {
	list := Supported()
	list[0] = "tampered"
	assert.Equal(t, "0.8.30", Latest())
	assert.Equal(t, "0.8.30", Supported()[0])
}
