package add

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vendroo/repomirror/cmd/util"
	"github.com/vendroo/repomirror/pkg/registry"
	"github.com/vendroo/repomirror/pkg/vcs"
)

// New creates a new `add` command.
func New() *cobra.Command {
	ruleFlags := &util.RuleFlags{}
	cmd := &cobra.Command{
		Use:   "add SUBMODULE",
		Short: "Register a submodule for mirroring",
		Long: "Register the given subdirectory of the monorepo as a submodule.\n" +
			"Sync rules are given with repeated --include and --exclude flags and\n" +
			"are applied in the order they appear on the command line. If no rules\n" +
			"are given, a default rule set for Dart packages is used.",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := args[0]
			store, err := util.GetStore(cmd)
			if err != nil {
				util.HandleFatalError(err)
			}

			rules := ruleFlags.Rules
			if len(rules) == 0 {
				rules = registry.DefaultRules
			}

			if err := registry.New(store).Add(name, rules); err != nil {
				util.HandleFatalError(err)
			}
			fmt.Printf("Registered submodule %q\n", name)

			if err := vcs.StageConfig(cmd.Context(), store.Root(), store.Path()); err != nil {
				log.WithError(err).Debug("Failed to stage the configuration artifact")
			}
		},
	}
	ruleFlags.Register(cmd.Flags())
	return cmd
}
