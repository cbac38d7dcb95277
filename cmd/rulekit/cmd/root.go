package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// Global flags
	verbose    bool
	workDir    string
	configPath string
	jsonOutput bool
	quiet      bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "rulekit",
	Short: "Assemble and distribute rule files for AI coding assistants",
	Long: `rulekit builds prompt templates and keeps per-tool rule files in sync.

Two pipelines read Markdown sources from the project root:

  templates  wrap each template in <tag>...</tag> and concatenate them
             into one aggregate file, then copy the agent prompt
  rules      write one canonical rules document to every tool's rule
             file (full, partial or prepend)

Paths and strategies come from rulekit.toml; without one the built-in
layout is used. Run 'rulekit init' to write it out.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is given, list the configured pipelines
		return listPipelines(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "project root (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: <workdir>/rulekit.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print the final report as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress lines")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors")

	// Version flag
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("rulekit {{.Version}}\n")
}

// getWorkDir returns the effective project root.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return dir, nil
}

// listPipelines prints what 'build' and 'update' would touch.
func listPipelines(cmd *cobra.Command) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	out := cmd.OutOrStdout()
	cfg := p.cfg

	fmt.Fprintf(out, "Project: %s\n", p.root)
	if p.configFound {
		fmt.Fprintf(out, "Config:  %s\n", p.configFile)
	} else {
		fmt.Fprintln(out, "Config:  built-in defaults")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "build:")
	fmt.Fprintf(out, "  templates  %d template(s) from %s/ -> %s/%s\n",
		len(cfg.Assembler.Templates), cfg.Assembler.SourceDir, cfg.Assembler.OutputDir, cfg.Assembler.AggregateFile)
	fmt.Fprintf(out, "  rules      %s -> %d target(s)\n", cfg.Build.Source, len(cfg.Build.Targets))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "update:")
	fmt.Fprintf(out, "  rules      %s -> %d target(s)\n", cfg.Update.Source, len(cfg.Update.Targets))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run: rulekit build | rulekit update | rulekit plan")

	return nil
}
