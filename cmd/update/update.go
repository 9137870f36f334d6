package update

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vendroo/repomirror/cmd/util"
	"github.com/vendroo/repomirror/pkg/errors"
	"github.com/vendroo/repomirror/pkg/registry"
	"github.com/vendroo/repomirror/pkg/vcs"
)

// New creates a new `update` command.
func New() *cobra.Command {
	ruleFlags := &util.RuleFlags{}
	cmd := &cobra.Command{
		Use:   "update SUBMODULE",
		Short: "Replace a submodule's sync rules",
		Long: "Replace the sync rules of an already registered submodule with the\n" +
			"--include and --exclude flags given on the command line. The previous\n" +
			"rules are discarded entirely.",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := args[0]
			store, err := util.GetStore(cmd)
			if err != nil {
				util.HandleFatalError(err)
			}

			if len(ruleFlags.Rules) == 0 {
				util.HandleFatalError(errors.NewFriendlyError(
					"No rules given. Pass at least one --include or --exclude flag,\n" +
						"or remove and re-add the submodule to restore the defaults."))
			}

			if err := registry.New(store).Update(name, ruleFlags.Rules); err != nil {
				util.HandleFatalError(err)
			}
			fmt.Printf("Updated rules for submodule %q\n", name)

			if err := vcs.StageConfig(cmd.Context(), store.Root(), store.Path()); err != nil {
				log.WithError(err).Debug("Failed to stage the configuration artifact")
			}
		},
	}
	ruleFlags.Register(cmd.Flags())
	return cmd
}
