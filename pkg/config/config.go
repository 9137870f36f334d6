package config

import (
	"github.com/vendroo/repomirror/pkg/rules"
)

const (
	// DirName is the dot-prefixed directory at the monorepo root that holds
	// the configuration artifact.
	DirName = ".repomirror"

	// FileName is the name of the configuration artifact inside DirName.
	FileName = "config.yaml"

	// SupportedConfigVersion is the configuration format version written by
	// this binary. The format is additive: artifacts written by older
	// binaries parse fine, artifacts from newer ones are rejected.
	SupportedConfigVersion = "v1alpha1"
)

// Submodule is one tracked unit inside the monorepo. Its sibling path is
// derived from the monorepo root on every sync rather than persisted, since
// the filesystem is authoritative and can change between runs.
type Submodule struct {
	Name  string       `json:"name"`
	Rules []rules.Rule `json:"rules,omitempty"`
}

// MonorepoConfig is the root configuration entity, one per initialized
// monorepo. Submodules keep their insertion order so that command output is
// reproducible.
type MonorepoConfig struct {
	Version    string      `json:"version,omitempty"`
	RootPath   string      `json:"rootPath"`
	Submodules []Submodule `json:"submodules,omitempty"`
}

// Lookup returns the submodule with the given name.
func (cfg MonorepoConfig) Lookup(name string) (Submodule, bool) {
	for _, sm := range cfg.Submodules {
		if sm.Name == name {
			return sm, true
		}
	}
	return Submodule{}, false
}
