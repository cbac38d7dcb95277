package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ai-rules/rulekit/internal/assembler"
	"github.com/ai-rules/rulekit/internal/config"
	"github.com/ai-rules/rulekit/internal/distributor"
)

var planCmd = &cobra.Command{
	Use:   "plan [build|update]",
	Short: "Show what build and update would do",
	Long: `Show, without writing anything, what each pipeline would do.

For partial targets the existing file is scanned and the plan says
whether its front matter would be preserved, and which keys it holds.

Examples:
  rulekit plan           # both pipelines
  rulekit plan update    # update targets only
  rulekit plan --json    # machine-readable`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"build", "update"},
	RunE:      runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

// rulesPlan is the plan of one distributor run.
type rulesPlan struct {
	Source  string                `json:"source"`
	Targets []distributor.Planned `json:"targets"`
}

// templatesPlan is the plan of one assembler run.
type templatesPlan struct {
	Aggregate string                     `json:"aggregate"`
	Sections  []assembler.PlannedSection `json:"sections"`
	Prompt    string                     `json:"prompt,omitempty"`
}

type buildPlan struct {
	Templates templatesPlan `json:"templates"`
	Rules     rulesPlan     `json:"rules"`
}

type fullPlan struct {
	Build  *buildPlan `json:"build,omitempty"`
	Update *rulesPlan `json:"update,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	build, update, err := selectPipelines(args)
	if err != nil {
		return err
	}

	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	var plan fullPlan
	d := distributor.New(p.root, p.logger)
	if build {
		a := assembler.New(p.cfg.Assembler, p.root, p.logger)
		plan.Build = &buildPlan{
			Templates: templatesPlan{
				Aggregate: a.AggregatePath(),
				Sections:  a.Plan(),
				Prompt:    p.cfg.Assembler.Prompt.Source,
			},
			Rules: rulesPlan{Source: p.cfg.Build.Source, Targets: d.Plan(p.cfg.Build)},
		}
	}
	if update {
		plan.Update = &rulesPlan{Source: p.cfg.Update.Source, Targets: d.Plan(p.cfg.Update)}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, plan)
	}

	if plan.Build != nil {
		fmt.Fprintln(out, "build:")
		printTemplatesPlan(out, plan.Build.Templates)
		printRulesPlan(out, plan.Build.Rules)
	}
	if plan.Update != nil {
		if plan.Build != nil {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, "update:")
		printRulesPlan(out, *plan.Update)
	}
	return nil
}

// selectPipelines maps an optional "build" or "update" argument to the pipelines to run.
func selectPipelines(args []string) (build, update bool, err error) {
	if len(args) == 0 {
		return true, true, nil
	}
	switch args[0] {
	case "build":
		return true, false, nil
	case "update":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("unknown pipeline %q (expected build or update)", args[0])
	}
}

func printTemplatesPlan(out io.Writer, tp templatesPlan) {
	fmt.Fprintf(out, "  templates -> %s\n", tp.Aggregate)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, s := range tp.Sections {
		note := "append"
		if !s.Present {
			note = "missing, skipped"
		}
		fmt.Fprintf(w, "    <%s>\t%s\t%s\n", s.Tag, s.Path, note)
	}
	w.Flush()
	if tp.Prompt != "" {
		fmt.Fprintf(out, "  prompt: %s\n", tp.Prompt)
	}
}

func printRulesPlan(out io.Writer, rp rulesPlan) {
	fmt.Fprintf(out, "  rules from %s\n", rp.Source)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range rp.Targets {
		fmt.Fprintf(w, "    %s\t%s\t%s\n", t.Strategy, t.Path, describeAction(t))
	}
	w.Flush()
}

func describeAction(t distributor.Planned) string {
	if t.Err != nil {
		return "error: " + t.Err.Error()
	}
	switch t.Action {
	case distributor.ActionWrite:
		if t.Strategy == config.StrategyPrepend {
			return "write header + rules"
		}
		return "write rules"
	case distributor.ActionCreate:
		return "create (no existing file)"
	case distributor.ActionOverwrite:
		return "overwrite (no front matter)"
	case distributor.ActionKeepFirst:
		return "keep first line (front matter not closed)"
	case distributor.ActionPreserve:
		desc := fmt.Sprintf("preserve %d-line front matter", t.Lines)
		if len(t.Keys) > 0 {
			desc += " [" + strings.Join(t.Keys, ", ") + "]"
		}
		return desc
	default:
		return string(t.Action)
	}
}
