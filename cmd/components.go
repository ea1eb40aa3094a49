package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "List the registered hydration components",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tHASH\tMODE\tMODULE")
		for _, d := range p.registry.Descriptors() {
			mode := "client"
			if d.Prerendered() {
				mode = "prerender"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, d.Hash, mode, d.Module)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}
