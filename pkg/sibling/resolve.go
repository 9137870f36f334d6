package sibling

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vendroo/repomirror/pkg/errors"
)

// Binding is the resolved relationship between a submodule and its on-disk
// sibling target. It's recomputed from the monorepo root on every sync and
// never cached across runs, because the sibling directory can appear or
// disappear between them.
type Binding struct {
	// Name is the submodule's name.
	Name string

	// SourcePath is the submodule's directory inside the monorepo.
	SourcePath string

	// TargetPath is the sibling directory that receives mirrored content. It
	// shares the submodule's name and sits next to the monorepo root.
	TargetPath string
}

// ValidateName rejects submodule names that can't map to a direct child of a
// directory, such as names containing path separators. This defends against
// a crafted name resolving outside the monorepo's parent.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.InvalidName{Name: name, Reason: "name is empty"}
	case name == "." || name == "..":
		return errors.InvalidName{Name: name, Reason: "name must not be a relative path element"}
	case strings.ContainsAny(name, `/\`):
		return errors.InvalidName{Name: name, Reason: "name must not contain path separators"}
	}
	return nil
}

// Target computes the sibling target path for a submodule without touching
// the filesystem: the parent directory of the monorepo root with the
// submodule name appended as a direct child.
func Target(rootPath, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	parent := filepath.Dir(filepath.Clean(rootPath))
	target := filepath.Join(parent, name)

	// Join cleans its result, so a name that escaped the parent would no
	// longer be its direct child.
	if filepath.Dir(target) != parent {
		return "", errors.InvalidName{
			Name:   name,
			Reason: "name resolves outside the monorepo's parent directory",
		}
	}
	return target, nil
}

// Resolve derives and validates a submodule's sibling binding. It fails with
// SiblingNotFound when the target doesn't exist or isn't a directory.
func Resolve(rootPath, name string) (Binding, error) {
	target, err := Target(rootPath, name)
	if err != nil {
		return Binding{}, err
	}

	fi, err := fs.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return Binding{}, errors.SiblingNotFound{Name: name, Path: target}
		}
		return Binding{}, errors.WithContext(err, "stat sibling")
	}
	if !fi.IsDir() {
		return Binding{}, errors.SiblingNotFound{Name: name, Path: target}
	}

	return Binding{
		Name:       name,
		SourcePath: filepath.Join(rootPath, name),
		TargetPath: target,
	}, nil
}

// CreateTarget creates a submodule's sibling directory if it's absent. It's
// the opt-in used by `sync --create-missing`.
func CreateTarget(rootPath, name string) (Binding, error) {
	target, err := Target(rootPath, name)
	if err != nil {
		return Binding{}, err
	}

	if err := fs.MkdirAll(target, 0755); err != nil {
		return Binding{}, errors.WithContext(err, "create sibling")
	}
	return Resolve(rootPath, name)
}
