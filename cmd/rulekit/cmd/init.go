package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ai-rules/rulekit/internal/cli"
	"github.com/ai-rules/rulekit/internal/config"
	"github.com/ai-rules/rulekit/internal/fsutil"
)

// starterConfig spells out the built-in defaults.
const starterConfig = `# rulekit configuration
version = "1"

[logging]
level = "error"   # debug, info, warn, error
format = "text"   # text, json
# file = "build/rulekit.log"

[assembler]
source_dir = "gem"
build_dir = "build"
output_dir = "build/gem"
clean = true      # remove build_dir before assembling
aggregate_file = "templates.txt"

[assembler.prompt]
source = "agent-prompt.md"
dest = "agent-prompt.txt"

[[assembler.templates]]
path = "FEAT_PRD_TEMPLATE.md"
tag = "FEAT_PRD_TEMPLATE"

[[assembler.templates]]
path = "PROD_PRD_TEMPLATE.md"
tag = "PROD_PRD_TEMPLATE"

[[assembler.templates]]
path = "PROTO_PRD_TEMPLATE.md"
tag = "PROTO_PRD_TEMPLATE"

[[assembler.templates]]
path = "TASKS_TEMPLATE.md"
tag = "TASKS_TEMPLATE"

[[assembler.templates]]
path = "OPERATIONAL_GUIDELINES_TEMPLATE.md"
tag = "OPERATIONAL_GUIDELINES_TEMPLATE"

# Strategies: full, partial (keep existing front matter), prepend (write header first)

[build]
source = "ide-rules/DEV-RULES.md"

[[build.targets]]
path = "build/ide-rules/.cursor/rules/global.mdc"
strategy = "prepend"
header = """
---
description: Apply this rule to the entire repository
globs:
alwaysApply: true
---

"""

[[build.targets]]
path = "build/ide-rules/.github/copilot-instructions.md"
strategy = "full"

[[build.targets]]
path = "build/ide-rules/.roo/rules-code/rules.md"
strategy = "full"

[[build.targets]]
path = "build/ide-rules/.windsurf/rules/rules.md"
strategy = "prepend"
header = """
---
trigger: always_on
---

"""

[update]
source = "rules/CODE-RULES-CONDENSED.md"

[[update.targets]]
path = "rules/github/.github/copilot-instructions.md"
strategy = "full"

[[update.targets]]
path = "rules/windsurf/.windsurfrules"
strategy = "full"

[[update.targets]]
path = "rules/roo/.roo/rules-code/rules.md"
strategy = "full"

[[update.targets]]
path = "rules/cursor/.cursor/global.mdc"
strategy = "partial"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter rulekit.toml",
	Long: `Write rulekit.toml to the project root.

The file spells out the built-in defaults, so running with it behaves
exactly like running without one. Edit paths, templates and targets
from there.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing rulekit.toml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := getWorkDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !initForce {
		// Only ask when someone can answer.
		if !isTerminal(os.Stdin) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
		}
		ok, err := cli.Confirm(os.Stdin, cmd.OutOrStdout(), fmt.Sprintf("%s already exists. Overwrite?", config.FileName), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := fsutil.WriteFile(path, starterConfig); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Run 'rulekit plan' to see what build and update would do.")
	return nil
}
