// Package distributor writes one canonical rules document to every
// configured destination, each with its own strategy.
package distributor

import (
	"fmt"
	"log/slog"

	"github.com/ai-rules/rulekit/internal/config"
	kiterrors "github.com/ai-rules/rulekit/internal/errors"
	"github.com/ai-rules/rulekit/internal/frontmatter"
	"github.com/ai-rules/rulekit/internal/fsutil"
	"github.com/ai-rules/rulekit/internal/logging"
	"github.com/ai-rules/rulekit/internal/report"
)

// PipelineName is the report name used by build and update.
const PipelineName = "rules"

// Distributor applies a RulesConfig under one project root.
type Distributor struct {
	root   string
	logger *slog.Logger
}

// New creates a distributor for the project at root.
func New(root string, logger *slog.Logger) *Distributor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Distributor{root: root, logger: logger}
}

// Run reads rules.Source once and writes every target. Failing to read the
// source aborts the pipeline; a failing target is recorded and the
// remaining targets are still written.
func (d *Distributor) Run(name string, rules config.RulesConfig, rep *report.Report) {
	rep.Begin(name)
	logger := logging.WithPipeline(d.logger, name)

	srcPath := config.Resolve(d.root, rules.Source)
	content, err := fsutil.ReadFile(srcPath)
	if err != nil {
		rep.Abort(err)
		return
	}
	logger.Debug("rules loaded", "path", srcPath, "bytes", len(content))

	for _, target := range rules.Targets {
		d.apply(logger, target, content, rep)
	}
}

func (d *Distributor) apply(logger *slog.Logger, target config.TargetSpec, content string, rep *report.Report) {
	path := config.Resolve(d.root, target.Path)
	display := fsutil.Rel(d.root, path)
	step := string(target.Strategy)

	switch target.Strategy {
	case config.StrategyFull:
		if err := fsutil.WriteFile(path, content); err != nil {
			rep.Fail(step, display, err)
			return
		}
		rep.OK(step, display, "written")

	case config.StrategyPrepend:
		if err := fsutil.WriteFile(path, target.Header+content); err != nil {
			rep.Fail(step, display, err)
			return
		}
		rep.OK(step, display, "written with header")

	case config.StrategyPartial:
		d.partial(logger, path, display, content, rep)

	default:
		rep.Fail(step, display, kiterrors.ConfigInvalidValue("strategy", target.Strategy, "must be full, partial or prepend"))
	}
}

// partial rewrites path keeping its front matter. The outcome is recorded on rep.
func (d *Distributor) partial(logger *slog.Logger, path, display, content string, rep *report.Report) {
	step := string(config.StrategyPartial)

	existing, err := fsutil.ReadFile(path)
	if kiterrors.HasCode(err, kiterrors.CodeSourceNotFound) {
		if err := fsutil.WriteFile(path, content); err != nil {
			rep.Fail(step, display, err)
			return
		}
		rep.OK(step, display, "created")
		return
	}
	if err != nil {
		rep.Fail(step, display, err)
		return
	}

	merged, block := frontmatter.Merge(existing, content)
	if err := fsutil.WriteFile(path, merged); err != nil {
		rep.Fail(step, display, err)
		return
	}

	switch block.State {
	case frontmatter.BeforeStart:
		rep.Warn(step, display, kiterrors.FrontMatterMissing(display))
	case frontmatter.InFrontMatter:
		rep.Warn(step, display, kiterrors.FrontMatterUnterminated(display))
	default:
		if keys, err := block.Keys(); err == nil {
			logger.Debug("front matter preserved", "path", display, "keys", keys)
		} else {
			logger.Debug("front matter preserved as text", "path", display, "error", err)
		}
		rep.OK(step, display, fmt.Sprintf("preserved %d-line front matter", block.Lines))
	}
}
