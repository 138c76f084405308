// Package version resolves which Solidity grammar version applies to a
// document: an explicit setting wins, then a foundry.toml scan, then the
// document's own pragma constraint, then the newest supported version.
package version

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"

	"namespacer/internal/syntax"
)

// supported lists the grammar versions this tool understands, newest
// first. Pragma constraints resolve against this list.
var supported = []string{
	"0.8.30", "0.8.29", "0.8.28", "0.8.27", "0.8.26", "0.8.25", "0.8.24",
	"0.8.23", "0.8.22", "0.8.21", "0.8.20", "0.8.19", "0.8.18", "0.8.17",
	"0.8.16", "0.8.15", "0.8.14", "0.8.13", "0.8.12", "0.8.11", "0.8.10",
	"0.8.9", "0.8.8", "0.8.7", "0.8.6", "0.8.5", "0.8.4", "0.8.3", "0.8.2",
	"0.8.1", "0.8.0",
	"0.7.6", "0.7.5", "0.7.4", "0.7.3", "0.7.2", "0.7.1", "0.7.0",
	"0.6.12", "0.6.11", "0.6.10", "0.6.9", "0.6.8", "0.6.7", "0.6.6",
	"0.6.5", "0.6.4", "0.6.3", "0.6.2", "0.6.1", "0.6.0",
	"0.5.17", "0.5.16", "0.5.15", "0.5.10", "0.5.0",
	"0.4.26", "0.4.25", "0.4.24", "0.4.22", "0.4.11",
}

func Latest() string {
	return supported[0]
}

func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

// Pragma extracts the version constraint text from the first
// `pragma solidity ...;` directive in the tree, or "".
func Pragma(tree *syntax.Tree) string {
	c := tree.Root().Clone()
	for c.GoToNext(syntax.KindPragma) {
		text := strings.TrimSuffix(strings.TrimSpace(c.Text()), ";")
		fields := strings.Fields(text)
		if len(fields) >= 3 && fields[0] == "pragma" && fields[1] == "solidity" {
			return strings.Join(fields[2:], " ")
		}
	}
	return ""
}

// Resolver performs the file probing behind version inference. The core
// analysis never touches it; only the LSP and CLI layers do I/O.
type Resolver struct {
	fs afs.Service
}

func NewResolver() *Resolver {
	return &Resolver{fs: afs.New()}
}

// Infer resolves the grammar version for a document, in priority order:
// explicit setting, build-config scan, pragma resolution, newest
// supported.
func (r *Resolver) Infer(ctx context.Context, docPath string, roots []string, explicit string, pragma string) string {
	if explicit != "" {
		return explicit
	}
	if v, ok := r.foundryVersion(ctx, docPath, roots); ok {
		return v
	}
	if pragma != "" {
		if v, ok := ResolveConstraint(pragma); ok {
			return v
		}
	}
	return Latest()
}

type foundryConfig struct {
	Profile map[string]foundryProfile `toml:"profile"`
}

type foundryProfile struct {
	Solc        string `toml:"solc"`
	SolcVersion string `toml:"solc_version"`
}

// foundryVersion walks up from the document's directory looking for a
// foundry.toml that pins a compiler, stopping at a workspace root.
func (r *Resolver) foundryVersion(ctx context.Context, docPath string, roots []string) (string, bool) {
	dir := filepath.Dir(docPath)
	for {
		if data, _ := r.fs.DownloadWithURL(ctx, filepath.Join(dir, "foundry.toml")); len(data) > 0 {
			var cfg foundryConfig
			if err := toml.Unmarshal(data, &cfg); err == nil {
				if v, ok := pinnedSolc(cfg); ok {
					return v, true
				}
			}
		}
		if isWorkspaceRoot(dir, roots) {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func pinnedSolc(cfg foundryConfig) (string, bool) {
	if p, ok := cfg.Profile["default"]; ok {
		if v := profileSolc(p); v != "" {
			return v, true
		}
	}
	for _, p := range cfg.Profile {
		if v := profileSolc(p); v != "" {
			return v, true
		}
	}
	return "", false
}

func profileSolc(p foundryProfile) string {
	if p.Solc != "" {
		return p.Solc
	}
	return p.SolcVersion
}

func isWorkspaceRoot(dir string, roots []string) bool {
	for _, root := range roots {
		if filepath.Clean(root) == filepath.Clean(dir) {
			return true
		}
	}
	return false
}
