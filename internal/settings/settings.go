// Package settings loads per-workspace configuration. The analysis core
// never reads files itself; the LSP and CLI layers fetch settings here
// and pass plain values down.
package settings

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/highwayhash"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-workspace configuration file name.
const ConfigFile = "namespacer.yaml"

type Settings struct {
	// Prefix is the namespace prefix for this workspace; empty means
	// "derive from the workspace folder name".
	Prefix string `yaml:"prefix"`
	// SolidityVersion pins the grammar version, skipping inference.
	SolidityVersion string `yaml:"solidity-version"`
}

// Store caches decoded settings per workspace root. Entries are keyed by
// a fingerprint of the raw config bytes, so a stale cache entry can never
// survive a config edit; cache output always equals an uncached read.
type Store struct {
	fs    afs.Service
	mu    sync.RWMutex
	cache map[string]entry
}

type entry struct {
	fingerprint uint64
	settings    Settings
}

func NewStore() *Store {
	return &Store{
		fs:    afs.New(),
		cache: make(map[string]entry),
	}
}

// For returns the settings for a workspace root, with the prefix
// defaulted from the folder name when the config does not set one.
// Missing or malformed config files resolve to pure defaults.
func (s *Store) For(ctx context.Context, root string) Settings {
	data, _ := s.fs.DownloadWithURL(ctx, filepath.Join(root, ConfigFile))

	fp := fingerprint(data)
	s.mu.RLock()
	cached, ok := s.cache[root]
	s.mu.RUnlock()
	if ok && cached.fingerprint == fp {
		return cached.settings
	}

	var loaded Settings
	if len(data) > 0 {
		_ = yaml.Unmarshal(data, &loaded)
	}
	if loaded.Prefix == "" {
		loaded.Prefix = DefaultPrefix(root)
	}

	s.mu.Lock()
	s.cache[root] = entry{fingerprint: fp, settings: loaded}
	s.mu.Unlock()
	return loaded
}

// DefaultPrefix derives the namespace prefix from the workspace root's
// folder name, mapping whitespace to '-'.
func DefaultPrefix(root string) string {
	base := filepath.Base(filepath.Clean(root))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return '-'
		}
		return r
	}, base)
}

var fingerprintKey = []byte("namespacer-settings-cache-key-32")

func fingerprint(data []byte) uint64 {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0
	}
	h.Write(data)
	return h.Sum64()
}
