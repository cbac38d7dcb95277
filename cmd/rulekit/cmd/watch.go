package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ai-rules/rulekit/internal/fsutil"
	"github.com/ai-rules/rulekit/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [build|update]",
	Short: "Re-run build and update when sources change",
	Long: `Run the selected pipelines once, then again whenever one of their
source files changes: templates, the prompt, the rules documents or
rulekit.toml. Rapid saves are batched into one run.

The configuration is reloaded before every run. The set of watched files
is fixed at start; restart after adding templates.

Stop with Ctrl-C.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"build", "update"},
	RunE:      runWatch,
}

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	build, update, err := selectPipelines(args)
	if err != nil {
		return err
	}

	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	runOnce := func(ctx context.Context, changed []string) {
		for _, path := range changed {
			fmt.Fprintf(out, "changed: %s\n", fsutil.Rel(p.root, path))
		}
		runSelected(cmd, build, update)
	}

	w, err := watch.New(watch.Sources(p.cfg, p.root, build, update), watchDebounce, runOnce, p.logger)
	if err != nil {
		return err
	}

	runSelected(cmd, build, update)
	fmt.Fprintln(out, "Watching for changes (Ctrl-C to stop)")
	return w.Run(ctx)
}

// runSelected reloads the project and runs the pipelines. Failures are
// printed; watching continues.
func runSelected(cmd *cobra.Command, build, update bool) {
	p, err := openProject(cmd)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	defer p.Close()

	rep := p.newReport(cmd)
	if build {
		p.build(rep)
	}
	if update {
		p.update(rep)
	}
	if err := finish(cmd, rep); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
}
