package list

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vendroo/repomirror/cmd/util"
	"github.com/vendroo/repomirror/pkg/registry"
	"github.com/vendroo/repomirror/pkg/rules"
	"github.com/vendroo/repomirror/pkg/sibling"
)

// New creates a new `list` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered submodules",
		Long: "Print the registered submodules in registry order, along with their\n" +
			"sync rules and the state of each sibling repository.",
		Run: func(cmd *cobra.Command, _ []string) {
			store, err := util.GetStore(cmd)
			if err != nil {
				util.HandleFatalError(err)
			}

			submodules, err := registry.New(store).List()
			if err != nil {
				util.HandleFatalError(err)
			}
			if len(submodules) == 0 {
				fmt.Println("No submodules registered. Register one with `repomirror add`.")
				return
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Name", "Rules", "Sibling"})
			for _, submodule := range submodules {
				t.AppendRow(table.Row{
					submodule.Name,
					formatRules(submodule.Rules),
					siblingState(store.Root(), submodule.Name),
				})
			}
			t.Render()
		},
	}
}

func formatRules(ruleSet []rules.Rule) string {
	formatted := make([]string, 0, len(ruleSet))
	for _, rule := range ruleSet {
		formatted = append(formatted, fmt.Sprintf("%s %s", rule.Kind, rule.Pattern))
	}
	return strings.Join(formatted, "\n")
}

func siblingState(root, name string) string {
	binding, err := sibling.Resolve(root, name)
	if err != nil {
		return "missing"
	}
	return binding.TargetPath
}
