package registry

import (
	"os"
	"path/filepath"

	"github.com/vendroo/repomirror/pkg/config"
	"github.com/vendroo/repomirror/pkg/errors"
	"github.com/vendroo/repomirror/pkg/rules"
	"github.com/vendroo/repomirror/pkg/sibling"
)

// DefaultRules is the ruleset a submodule starts with when `add` is run
// without explicit patterns. It mirrors the conventional layout of the app
// checkouts the tool was built for.
var DefaultRules = []rules.Rule{
	{Pattern: "lib/***", Kind: rules.Include},
	{Pattern: "pubspec.yaml", Kind: rules.Include},
	{Pattern: "test/***", Kind: rules.Include},
}

// Registry provides the submodule lifecycle over a config store. Every
// mutation is a serialized load-modify-save cycle, so a failed operation
// never leaves a partial write behind.
type Registry struct {
	store *config.Store
}

// New returns a Registry backed by the given store.
func New(store *config.Store) Registry {
	return Registry{store: store}
}

// Add registers a new submodule with the given ruleset. The name must be an
// existing immediate child directory of the monorepo root, and the ruleset
// must compile.
func (r Registry) Add(name string, ruleset []rules.Rule) error {
	if err := sibling.ValidateName(name); err != nil {
		return err
	}

	// Validate before mutating so a bad ruleset is never persisted.
	if _, err := rules.Compile(ruleset); err != nil {
		return err
	}

	return r.store.Mutate(func(cfg *config.MonorepoConfig) error {
		if _, ok := cfg.Lookup(name); ok {
			return errors.DuplicateSubmodule{Name: name}
		}

		dir := filepath.Join(cfg.RootPath, name)
		if isDir, err := isDirectory(dir); err != nil {
			return errors.WithContext(err, "stat submodule dir")
		} else if !isDir {
			return errors.NotASubdirectory{Name: name, Root: cfg.RootPath}
		}

		cfg.Submodules = append(cfg.Submodules, config.Submodule{
			Name:  name,
			Rules: ruleset,
		})
		return nil
	})
}

// Remove deletes a submodule from the registry. Files already mirrored to
// the sibling directory are left untouched.
func (r Registry) Remove(name string) error {
	return r.store.Mutate(func(cfg *config.MonorepoConfig) error {
		for i, sm := range cfg.Submodules {
			if sm.Name == name {
				cfg.Submodules = append(cfg.Submodules[:i], cfg.Submodules[i+1:]...)
				return nil
			}
		}
		return errors.UnknownSubmodule{Name: name}
	})
}

// Update atomically replaces a submodule's ruleset. The old rules are fully
// discarded, never merged.
func (r Registry) Update(name string, ruleset []rules.Rule) error {
	if _, err := rules.Compile(ruleset); err != nil {
		return err
	}

	return r.store.Mutate(func(cfg *config.MonorepoConfig) error {
		for i := range cfg.Submodules {
			if cfg.Submodules[i].Name == name {
				cfg.Submodules[i].Rules = ruleset
				return nil
			}
		}
		return errors.UnknownSubmodule{Name: name}
	})
}

// Get returns a single submodule by name.
func (r Registry) Get(name string) (config.Submodule, error) {
	cfg, err := r.store.Load()
	if err != nil {
		return config.Submodule{}, err
	}

	sm, ok := cfg.Lookup(name)
	if !ok {
		return config.Submodule{}, errors.UnknownSubmodule{Name: name}
	}
	return sm, nil
}

// List returns the registered submodules in insertion order.
func (r Registry) List() ([]config.Submodule, error) {
	cfg, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	return append([]config.Submodule{}, cfg.Submodules...), nil
}

func isDirectory(path string) (bool, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.IsDir(), nil
}
