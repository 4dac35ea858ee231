// Package manifest handles ravel.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chazu/ravel/vm"
)

// FileName is the manifest file looked up in project directories.
const FileName = "ravel.toml"

// DefaultProfileDatabase is the site statistics database, relative to the
// manifest directory.
const DefaultProfileDatabase = ".ravel/profile.db"

// Manifest represents a ravel.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Cache   CacheConfig   `toml:"cache"`
	Access  AccessConfig  `toml:"access"`
	Log     LogConfig     `toml:"log"`
	Profile ProfileConfig `toml:"profile"`

	// Dir is the directory containing the ravel.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// CacheConfig configures access site caches.
type CacheConfig struct {
	// MaxEntries is the polymorphic limit of every site, 1..8.
	MaxEntries   int  `toml:"max-entries"`
	CollectStats bool `toml:"collect-stats"`
}

// AccessConfig configures member access diagnostics.
type AccessConfig struct {
	WarnPartialMatchDollar bool `toml:"warn-partial-match-dollar"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// ProfileConfig configures the site statistics store.
type ProfileConfig struct {
	Database string `toml:"database"`
}

// Default returns the manifest used when no ravel.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

// Load parses a ravel.toml file from the given directory, fills in
// defaults and validates the result.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes and validates manifest text.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	log.Debugf("manifest: project %q, %d site entries", m.Project.Name, m.Cache.MaxEntries)
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Cache.MaxEntries == 0 {
		m.Cache.MaxEntries = vm.DefaultSiteEntries
	}
	if m.Profile.Database == "" {
		m.Profile.Database = DefaultProfileDatabase
	}
}

// FindAndLoad walks up from startDir to find a ravel.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// VMOptions converts the manifest to VM options.
func (m *Manifest) VMOptions() vm.Options {
	return vm.Options{
		MaxSiteEntries:         m.Cache.MaxEntries,
		CollectStats:           m.Cache.CollectStats,
		WarnPartialMatchDollar: m.Access.WarnPartialMatchDollar,
	}
}

// ProfilePath returns the absolute path of the site statistics database.
func (m *Manifest) ProfilePath() string {
	if filepath.IsAbs(m.Profile.Database) {
		return m.Profile.Database
	}
	return filepath.Join(m.Dir, m.Profile.Database)
}
