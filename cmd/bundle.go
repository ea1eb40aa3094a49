package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Generate and compile the client hydration bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		entryOnly, _ := cmd.Flags().GetBool("entry-only")

		p, err := loadProject()
		if err != nil {
			return err
		}

		if entryOnly {
			if err := p.writeEntry(); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", p.manifest.Bundle.Entry)
			return nil
		}

		scripts, err := p.compile(false)
		if err != nil {
			return errors.Wrap(err, "error compiling javascript")
		}
		for name, path := range scripts {
			fmt.Printf("Compiled %s -> %s\n", name, path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundleCmd)
	bundleCmd.Flags().Bool("entry-only", false, "Write the generated entry without compiling it")
}
