package cmd

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh rule files from the condensed rules",
	Long: `Write the [update] rules source to every [[update.targets]] entry.

Strategies:
  full     replace the file with the rules
  partial  keep the file's front matter (--- ... ---), replace the rest
  prepend  write the target's header, then the rules

A partial target that does not exist yet is created from the rules.
A partial target without front matter is overwritten with a warning.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	rep := p.newReport(cmd)
	p.update(rep)
	return finish(cmd, rep)
}
