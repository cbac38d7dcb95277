package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ai-rules/rulekit/internal/config"
	"github.com/ai-rules/rulekit/internal/fsutil"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate rulekit.toml",
	Long: `Load and validate the configuration without writing anything.

Checks:
- TOML syntax and unknown keys
- Required fields and strategy names
- Template tags are plain names and unique
- Prepend headers are closed front-matter blocks holding YAML
- No destination is listed twice

Missing source files are listed as warnings; they do not fail validation.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	out := cmd.OutOrStdout()
	if p.configFound {
		fmt.Fprintf(out, "Configuration OK: %s\n", p.configFile)
	} else {
		fmt.Fprintln(out, "Configuration OK: built-in defaults")
	}

	for _, missing := range missingSources(p.cfg, p.root) {
		fmt.Fprintf(out, "  warning: source not found: %s\n", missing)
	}
	return nil
}

// missingSources lists configured inputs that do not exist, relative to root.
func missingSources(cfg *config.Config, root string) []string {
	var missing []string
	check := func(path string) {
		if !fsutil.Exists(path) {
			missing = append(missing, fsutil.Rel(root, path))
		}
	}

	srcDir := cfg.SourceDir(root)
	if !fsutil.IsDir(srcDir) {
		missing = append(missing, fsutil.Rel(root, srcDir)+"/")
	} else {
		for _, t := range cfg.Assembler.Templates {
			check(filepath.Join(srcDir, t.Path))
		}
		if cfg.Assembler.Prompt.Source != "" {
			check(filepath.Join(srcDir, cfg.Assembler.Prompt.Source))
		}
	}
	check(config.Resolve(root, cfg.Build.Source))
	check(config.Resolve(root, cfg.Update.Source))

	return missing
}
