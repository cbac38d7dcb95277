package cmd

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble templates and generate IDE rule files",
	Long: `Build the template aggregate and the IDE rule files.

Steps:
  1. Remove the build directory (when [assembler] clean = true)
  2. Copy the agent prompt into the output directory
  3. Wrap every template in <tag>...</tag> and write the aggregate
  4. Write the [build] rules source to every [[build.targets]] entry

A missing template is skipped with a warning. A missing prompt or a
failed write is reported and the remaining steps still run. The exit
status is 1 if any step failed.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	rep := p.newReport(cmd)
	p.build(rep)
	return finish(cmd, rep)
}
