package util

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vendroo/repomirror/pkg/config"
	"github.com/vendroo/repomirror/pkg/errors"
	"github.com/vendroo/repomirror/pkg/rules"
)

// Mocked for unit testing.
var exit = os.Exit

// HandleFatalError reports an unrecoverable error to the user and exits.
// Friendly errors are printed verbatim; everything else goes through the
// logger with its full context chain.
func HandleFatalError(err error) {
	friendly, ok := err.(errors.FriendlyError)
	if !ok {
		friendly, ok = errors.RootCause(err).(errors.FriendlyError)
	}

	if ok {
		fmt.Fprintln(os.Stderr, friendly.FriendlyMessage())
	} else {
		log.Error(err)
	}
	exit(1)
}

// HandlePanic converts a panic into an error report rather than a raw
// stacktrace dump to the user's terminal.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("panic", r).Error(
			"Repomirror crashed. This is a bug -- please report it.")
		debug.PrintStack()
		exit(1)
	}
}

// GetStore resolves the monorepo root and returns its config store. The root
// comes from the persistent --root flag when set, and the working directory
// otherwise.
func GetStore(cmd *cobra.Command) (*config.Store, error) {
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return nil, errors.WithContext(err, "get root flag")
	}

	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return nil, errors.WithContext(err, "get working directory")
		}
	} else {
		root, err = homedir.Expand(root)
		if err != nil {
			return nil, errors.WithContext(err, "expand root path")
		}
	}

	root, err = filepath.Abs(root)
	if err != nil {
		return nil, errors.WithContext(err, "absolute root path")
	}
	return config.NewStore(root), nil
}

// RuleFlags collects --include and --exclude patterns into a single ordered
// ruleset, preserving the patterns' relative order on the command line.
type RuleFlags struct {
	Rules []rules.Rule
}

// Register installs the --include and --exclude flags on a flag set.
func (f *RuleFlags) Register(flags *pflag.FlagSet) {
	flags.Var(&ruleValue{flags: f, kind: rules.Include}, "include",
		"Pattern to mirror, relative to the submodule root. "+
			"Repeatable; order is significant.")
	flags.Var(&ruleValue{flags: f, kind: rules.Exclude}, "exclude",
		"Pattern to shield from mirroring. "+
			"Repeatable; order is significant.")
}

type ruleValue struct {
	flags *RuleFlags
	kind  rules.Kind
}

func (v *ruleValue) Set(pattern string) error {
	v.flags.Rules = append(v.flags.Rules, rules.Rule{Pattern: pattern, Kind: v.kind})
	return nil
}

func (v *ruleValue) String() string {
	return ""
}

func (v *ruleValue) Type() string {
	return "pattern"
}
