package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ai-rules/rulekit/internal/assembler"
	"github.com/ai-rules/rulekit/internal/config"
	"github.com/ai-rules/rulekit/internal/distributor"
	"github.com/ai-rules/rulekit/internal/fsutil"
	"github.com/ai-rules/rulekit/internal/logging"
	"github.com/ai-rules/rulekit/internal/report"
)

// project is a loaded and validated configuration plus its logger.
type project struct {
	root        string
	cfg         *config.Config
	configFile  string
	configFound bool
	logger      *slog.Logger
	closer      io.Closer
}

// openProject resolves the project root, loads the config and sets up logging.
func openProject(cmd *cobra.Command) (*project, error) {
	dir, err := getWorkDir()
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if !fsutil.IsDir(root) {
		return nil, fmt.Errorf("project root is not a directory: %s", root)
	}

	file := filepath.Join(root, config.FileName)
	if configPath != "" {
		if file, err = filepath.Abs(configPath); err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		if !fsutil.Exists(file) {
			return nil, fmt.Errorf("config file not found: %s", file)
		}
	}

	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.NewFromConfig(cfg, root, cmd.ErrOrStderr(), verbose)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	return &project{
		root:        root,
		cfg:         cfg,
		configFile:  file,
		configFound: fsutil.Exists(file),
		logger:      logger,
		closer:      closer,
	}, nil
}

// Close releases the log file, if any.
func (p *project) Close() {
	if p.closer != nil {
		p.closer.Close()
	}
}

// formatOptions derives report formatting from the global flags.
func formatOptions(out io.Writer) report.FormatOptions {
	return report.FormatOptions{
		NoColor: noColor || !isTerminal(out),
		Quiet:   quiet || jsonOutput,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *project) newReport(cmd *cobra.Command) *report.Report {
	out := cmd.OutOrStdout()
	return report.New(out, p.logger, formatOptions(out))
}

// build runs the assembler, then distributes the build rules.
func (p *project) build(rep *report.Report) {
	assembler.New(p.cfg.Assembler, p.root, p.logger).Run(rep)
	distributor.New(p.root, p.logger).Run(distributor.PipelineName, p.cfg.Build, rep)
}

// update distributes the update rules.
func (p *project) update(rep *report.Report) {
	distributor.New(p.root, p.logger).Run(distributor.PipelineName, p.cfg.Update, rep)
}

// finish prints the summary (or the JSON report) and turns failures into an error.
func finish(cmd *cobra.Command, rep *report.Report) error {
	out := cmd.OutOrStdout()

	switch {
	case jsonOutput:
		if err := writeJSON(out, rep); err != nil {
			return err
		}
	case !quiet:
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.FormatSummary(rep, formatOptions(out)))
	}

	return rep.Err()
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
