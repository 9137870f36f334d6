package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ghodss/yaml"
	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/afero"

	"github.com/vendroo/repomirror/pkg/errors"
)

// Store is the durable home of the monorepo configuration. It's an explicit
// value passed to every component that needs the registry rather than an
// ambient singleton, and it serializes all load-modify-save cycles so
// concurrent mutations are never merged.
type Store struct {
	root string
	mu   sync.Mutex
}

// NewStore returns a Store for the monorepo rooted at root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the monorepo root path the store was created with.
func (s *Store) Root() string {
	return s.root
}

// Path returns the location of the configuration artifact.
func (s *Store) Path() string {
	return filepath.Join(s.root, DirName, FileName)
}

// Init creates the initial configuration artifact. It fails if the monorepo
// is already initialized.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, err := afero.Exists(fs, s.Path()); err != nil {
		return errors.WithContext(err, "check artifact")
	} else if exists {
		return errors.NewFriendlyError(
			"The monorepo at %q is already initialized.", s.root)
	}
	return s.save(MonorepoConfig{RootPath: s.root})
}

// Load returns the persisted configuration.
func (s *Store) Load() (MonorepoConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save fully replaces the persisted configuration.
func (s *Store) Save(cfg MonorepoConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cfg)
}

// Mutate runs a load-modify-save cycle under the store's single-writer lock.
// If mutate returns an error, nothing is persisted.
func (s *Store) Mutate(mutate func(*MonorepoConfig) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}

	if err := mutate(&cfg); err != nil {
		return err
	}
	return s.save(cfg)
}

func (s *Store) load() (MonorepoConfig, error) {
	path := s.Path()
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return MonorepoConfig{}, errors.NotInitialized{Path: path}
		}
		return MonorepoConfig{}, errors.WithContext(err, "read artifact")
	}

	var cfg MonorepoConfig
	if err := yaml.Unmarshal(configBytes, &cfg); err != nil {
		return MonorepoConfig{}, errors.ConfigCorrupt{Path: path, Reason: err.Error()}
	}

	if err := checkVersion(path, cfg.Version); err != nil {
		return MonorepoConfig{}, err
	}
	return cfg, nil
}

// save writes the configuration through a write-temp-then-rename discipline
// so a crash mid-write never corrupts the previous valid artifact.
func (s *Store) save(cfg MonorepoConfig) error {
	cfg.Version = SupportedConfigVersion

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	dir := filepath.Dir(s.Path())
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.WithContext(err, "create config dir")
	}

	// The temp file lives in the same directory as the artifact so the
	// rename can't cross filesystems.
	tmp, err := afero.TempFile(fs, dir, ".config-*.yaml")
	if err != nil {
		return errors.WithContext(err, "create temp file")
	}

	if _, err := tmp.Write(yamlBytes); err != nil {
		tmp.Close()
		fs.Remove(tmp.Name())
		return errors.WithContext(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmp.Name())
		return errors.WithContext(err, "close temp file")
	}

	if err := fs.Rename(tmp.Name(), s.Path()); err != nil {
		fs.Remove(tmp.Name())
		return errors.WithContext(err, "replace artifact")
	}
	return nil
}

func checkVersion(path, artifactVersion string) error {
	if artifactVersion == "" {
		// Artifacts written before the version field existed are treated as
		// the initial format.
		return nil
	}

	actual, err := goversion.NewVersion(versionNumber(artifactVersion))
	if err != nil {
		return errors.ConfigCorrupt{
			Path:   path,
			Reason: fmt.Sprintf("unparseable version %q", artifactVersion),
		}
	}

	supported, err := goversion.NewVersion(versionNumber(SupportedConfigVersion))
	if err != nil {
		return errors.WithContext(err, "parse supported version")
	}

	if actual.GreaterThan(supported) {
		return errors.ConfigCorrupt{
			Path: path,
			Reason: fmt.Sprintf("format version %q is newer than the supported %q; "+
				"upgrade repomirror", artifactVersion, SupportedConfigVersion),
		}
	}
	return nil
}

// versionNumber strips the leading "v" and trailing stability marker from a
// config version string ("v1alpha1" -> "1"), leaving something go-version
// can compare.
func versionNumber(v string) string {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexFunc(v, func(r rune) bool {
		return r < '0' || r > '9'
	}); i != -1 {
		v = v[:i]
	}
	return v
}
