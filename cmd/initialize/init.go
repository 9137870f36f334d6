package initialize

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vendroo/repomirror/cmd/util"
	"github.com/vendroo/repomirror/pkg/vcs"
)

// New creates a new `init` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the monorepo configuration",
		Long: "Create the configuration artifact for the monorepo rooted at the\n" +
			"current directory (or --root). Submodules are registered afterwards\n" +
			"with `repomirror add`.",
		Run: func(cmd *cobra.Command, _ []string) {
			store, err := util.GetStore(cmd)
			if err != nil {
				util.HandleFatalError(err)
			}

			if !vcs.InWorkTree(store.Root()) {
				log.WithField("root", store.Root()).Warn(
					"The monorepo root doesn't appear to be inside a git work tree")
			}

			if err := store.Init(); err != nil {
				util.HandleFatalError(err)
			}
			fmt.Printf("Initialized monorepo configuration at %s\n", store.Path())
		},
	}
}
