// Package report records the outcome of each pipeline step and prints a
// progress line as soon as a step finishes.
package report

import (
	"fmt"
	"io"
	"log/slog"

	kiterrors "github.com/ai-rules/rulekit/internal/errors"
)

// Status is the outcome of one step.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// Step is one recorded operation, e.g. writing one destination file.
type Step struct {
	Pipeline string
	Name     string
	Path     string
	Status   Status
	Message  string
	Err      error
}

// Pipeline groups the steps of one pipeline run.
type Pipeline struct {
	Name    string
	Steps   []Step
	Aborted error
}

// Counts tallies step outcomes.
type Counts struct {
	OK       int `json:"ok"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
	Aborted  int `json:"aborted"`
}

// Report collects pipelines and their steps in execution order.
type Report struct {
	Pipelines []*Pipeline

	out     io.Writer
	logger  *slog.Logger
	opts    FormatOptions
	current *Pipeline
}

// New creates a report that prints progress to out and logs through logger.
func New(out io.Writer, logger *slog.Logger, opts FormatOptions) *Report {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Report{
		out:    out,
		logger: logger,
		opts:   opts,
	}
}

// Begin starts a new pipeline; following steps are recorded under it.
func (r *Report) Begin(name string) {
	r.current = &Pipeline{Name: name}
	r.Pipelines = append(r.Pipelines, r.current)
	if !r.opts.Quiet {
		fmt.Fprintf(r.out, "==> %s\n", name)
	}
}

// OK records a successful step.
func (r *Report) OK(name, path, message string) {
	r.add(Step{Name: name, Path: path, Status: StatusOK, Message: message})
	r.logger.Debug(message, "pipeline", r.pipelineName(), "step", name, "path", path)
}

// Warn records a step that completed in a degraded way.
func (r *Report) Warn(name, path string, err error) {
	r.add(Step{Name: name, Path: path, Status: StatusWarning, Message: err.Error(), Err: err})
	r.logger.Warn(err.Error(), "pipeline", r.pipelineName(), "step", name, "path", path, "code", kiterrors.Code(err))
}

// Fail records a step that did not complete. Later steps still run.
func (r *Report) Fail(name, path string, err error) {
	r.add(Step{Name: name, Path: path, Status: StatusFailed, Message: err.Error(), Err: err})
	r.logger.Error(err.Error(), "pipeline", r.pipelineName(), "step", name, "path", path, "code", kiterrors.Code(err))
}

// Abort marks the current pipeline as stopped early.
func (r *Report) Abort(err error) {
	p := r.ensurePipeline()
	p.Aborted = err
	if !r.opts.Quiet {
		fmt.Fprintln(r.out, formatAbort(p, r.opts))
	}
	r.logger.Error("pipeline aborted", "pipeline", p.Name, "error", err, "code", kiterrors.Code(err))
}

// Steps returns every recorded step across pipelines.
func (r *Report) Steps() []Step {
	var steps []Step
	for _, p := range r.Pipelines {
		steps = append(steps, p.Steps...)
	}
	return steps
}

// Counts tallies outcomes across pipelines.
func (r *Report) Counts() Counts {
	var c Counts
	for _, p := range r.Pipelines {
		if p.Aborted != nil {
			c.Aborted++
		}
		for _, s := range p.Steps {
			switch s.Status {
			case StatusOK:
				c.OK++
			case StatusWarning:
				c.Warnings++
			case StatusFailed:
				c.Failed++
			}
		}
	}
	return c
}

// Failed reports whether any step failed or any pipeline aborted.
func (r *Report) Failed() bool {
	c := r.Counts()
	return c.Failed > 0 || c.Aborted > 0
}

// Err returns a summary error when the report failed, nil otherwise.
func (r *Report) Err() error {
	if !r.Failed() {
		return nil
	}
	c := r.Counts()
	return fmt.Errorf("%d step(s) failed, %d pipeline(s) aborted", c.Failed, c.Aborted)
}

func (r *Report) add(step Step) {
	p := r.ensurePipeline()
	step.Pipeline = p.Name
	p.Steps = append(p.Steps, step)
	if !r.opts.Quiet {
		fmt.Fprintln(r.out, formatStep(step, r.opts))
	}
}

func (r *Report) ensurePipeline() *Pipeline {
	if r.current == nil {
		r.Begin("default")
	}
	return r.current
}

func (r *Report) pipelineName() string {
	if r.current == nil {
		return ""
	}
	return r.current.Name
}
