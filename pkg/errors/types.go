package errors

import (
	"fmt"
)

// NotInitialized represents when a command requiring the monorepo
// configuration is run before `repomirror init`.
type NotInitialized struct {
	Path string
}

func (err NotInitialized) Error() string {
	return fmt.Sprintf("monorepo is not initialized: no configuration at %q", err.Path)
}

func (err NotInitialized) FriendlyMessage() string {
	return fmt.Sprintf("The monorepo isn't initialized.\n"+
		"Expected a configuration file at %q.\n"+
		"Run `repomirror init` at the monorepo root to create it.", err.Path)
}

// ConfigCorrupt represents when the configuration artifact exists but can't
// be used. The artifact is never rewritten or repaired automatically.
type ConfigCorrupt struct {
	Path   string
	Reason string
}

func (err ConfigCorrupt) Error() string {
	return fmt.Sprintf("configuration at %q is corrupt: %s", err.Path, err.Reason)
}

// FileNotFound represents when we were unable to access a file because the
// path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// DuplicateSubmodule represents an attempt to register a submodule name
// that's already present.
type DuplicateSubmodule struct {
	Name string
}

func (err DuplicateSubmodule) Error() string {
	return fmt.Sprintf("submodule %q is already registered", err.Name)
}

// UnknownSubmodule represents a reference to a submodule name that isn't in
// the registry.
type UnknownSubmodule struct {
	Name string
}

func (err UnknownSubmodule) Error() string {
	return fmt.Sprintf("unknown submodule %q", err.Name)
}

// NotASubdirectory represents an attempt to register a submodule whose name
// doesn't correspond to an immediate child directory of the monorepo root.
type NotASubdirectory struct {
	Name string
	Root string
}

func (err NotASubdirectory) Error() string {
	return fmt.Sprintf("%q is not a subdirectory of %q", err.Name, err.Root)
}

// SiblingNotFound represents when a submodule's sibling target directory
// doesn't exist on disk.
type SiblingNotFound struct {
	Name string
	Path string
}

func (err SiblingNotFound) Error() string {
	return fmt.Sprintf("sibling directory for submodule %q does not exist at %q",
		err.Name, err.Path)
}

// InvalidName represents a submodule name that can't be used, such as one
// containing path separators.
type InvalidName struct {
	Name   string
	Reason string
}

func (err InvalidName) Error() string {
	return fmt.Sprintf("invalid submodule name %q: %s", err.Name, err.Reason)
}

// InvalidRule represents a malformed sync rule.
type InvalidRule struct {
	Index  int
	Reason string
}

func (err InvalidRule) Error() string {
	return fmt.Sprintf("invalid sync rule at position %d: %s", err.Index, err.Reason)
}

// VacuousRuleSet represents a ruleset that only contains exclusions, so
// nothing could ever be mirrored.
type VacuousRuleSet struct{}

func (err VacuousRuleSet) Error() string {
	return "ruleset only contains exclusions, so nothing would ever be mirrored"
}

// SyncFailed represents a mirroring run where the external tool exited
// non-zero. Output carries the tool's diagnostic text verbatim.
type SyncFailed struct {
	Submodule string
	Output    string
}

func (err SyncFailed) Error() string {
	if err.Output == "" {
		return fmt.Sprintf("sync failed for submodule %q", err.Submodule)
	}
	return fmt.Sprintf("sync failed for submodule %q: %s", err.Submodule, err.Output)
}
