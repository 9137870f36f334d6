package remove

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vendroo/repomirror/cmd/util"
	"github.com/vendroo/repomirror/pkg/registry"
	"github.com/vendroo/repomirror/pkg/vcs"
)

// New creates a new `remove` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "remove SUBMODULE",
		Short: "Unregister a submodule",
		Long: "Remove the given submodule from the registry. Content already\n" +
			"mirrored into the sibling repository is left untouched.",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := args[0]
			store, err := util.GetStore(cmd)
			if err != nil {
				util.HandleFatalError(err)
			}

			if err := registry.New(store).Remove(name); err != nil {
				util.HandleFatalError(err)
			}
			fmt.Printf("Removed submodule %q\n", name)

			if err := vcs.StageConfig(cmd.Context(), store.Root(), store.Path()); err != nil {
				log.WithError(err).Debug("Failed to stage the configuration artifact")
			}
		},
	}
}
