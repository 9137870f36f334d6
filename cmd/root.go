package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vendroo/repomirror/cmd/add"
	"github.com/vendroo/repomirror/cmd/initialize"
	"github.com/vendroo/repomirror/cmd/list"
	"github.com/vendroo/repomirror/cmd/remove"
	syncCmd "github.com/vendroo/repomirror/cmd/sync"
	"github.com/vendroo/repomirror/cmd/update"
	"github.com/vendroo/repomirror/cmd/util"
	"github.com/vendroo/repomirror/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "REPOMIRROR_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := &cobra.Command{
		Use:          "repomirror",
		Short:        "Mirror monorepo submodules into sibling repositories",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("root", "",
		"path to the monorepo root (defaults to the working directory)")
	rootCmd.AddCommand(
		initialize.New(),
		add.New(),
		remove.New(),
		update.New(),
		list.New(),
		syncCmd.New(),
		version.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		util.HandleFatalError(err)
	}
}
