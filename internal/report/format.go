package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	kiterrors "github.com/ai-rules/rulekit/internal/errors"
)

// FormatOptions controls output formatting.
type FormatOptions struct {
	NoColor bool
	Quiet   bool
}

// FormatSummary formats the closing summary of a run.
func FormatSummary(r *Report, opts FormatOptions) string {
	var b strings.Builder

	c := r.Counts()
	b.WriteString(fmt.Sprintf("Summary: %d ok, %d warning(s), %d failed", c.OK, c.Warnings, c.Failed))

	for _, p := range r.Pipelines {
		if p.Aborted != nil {
			b.WriteString("\n")
			b.WriteString(formatAbort(p, opts))
		}
	}

	return b.String()
}

func formatStep(step Step, opts FormatOptions) string {
	var line string
	switch step.Status {
	case StatusOK:
		line = step.Message
		if step.Path != "" {
			line = fmt.Sprintf("%s: %s", step.Message, step.Path)
		}
	case StatusWarning:
		line = "warning: " + step.Message
	default:
		line = "error: " + step.Message
	}

	return fmt.Sprintf("  %s%s %s%s", getStatusColor(step.Status, opts.NoColor), getStatusIcon(step.Status), line, resetColor(opts.NoColor))
}

func formatAbort(p *Pipeline, opts FormatOptions) string {
	return fmt.Sprintf("  %s■ %s aborted: %v%s", getStatusColor(StatusFailed, opts.NoColor), p.Name, p.Aborted, resetColor(opts.NoColor))
}

func getStatusIcon(status Status) string {
	switch status {
	case StatusOK:
		return "✓"
	case StatusWarning:
		return "!"
	case StatusFailed:
		return "✗"
	default:
		return "?"
	}
}

func getStatusColor(status Status, noColor bool) string {
	if noColor {
		return ""
	}

	switch status {
	case StatusOK:
		return "\033[32m" // Green
	case StatusWarning:
		return "\033[33m" // Yellow
	case StatusFailed:
		return "\033[31m" // Red
	default:
		return ""
	}
}

func resetColor(noColor bool) string {
	if noColor {
		return ""
	}
	return "\033[0m"
}

// jsonReport is the --json view of a Report.
type jsonReport struct {
	Pipelines []jsonPipeline `json:"pipelines"`
	Counts    Counts         `json:"counts"`
	Failed    bool           `json:"failed"`
}

type jsonPipeline struct {
	Name    string          `json:"name"`
	Aborted json.RawMessage `json:"aborted,omitempty"`
	Steps   []jsonStep      `json:"steps"`
}

type jsonStep struct {
	Name    string          `json:"name"`
	Path    string          `json:"path,omitempty"`
	Status  Status          `json:"status"`
	Message string          `json:"message,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := jsonReport{
		Pipelines: make([]jsonPipeline, 0, len(r.Pipelines)),
		Counts:    r.Counts(),
		Failed:    r.Failed(),
	}

	for _, p := range r.Pipelines {
		jp := jsonPipeline{Name: p.Name, Steps: make([]jsonStep, 0, len(p.Steps))}
		if p.Aborted != nil {
			raw, err := marshalError(p.Aborted)
			if err != nil {
				return nil, err
			}
			jp.Aborted = raw
		}
		for _, s := range p.Steps {
			js := jsonStep{Name: s.Name, Path: s.Path, Status: s.Status, Message: s.Message}
			if s.Err != nil {
				raw, err := marshalError(s.Err)
				if err != nil {
					return nil, err
				}
				js.Error = raw
			}
			jp.Steps = append(jp.Steps, js)
		}
		out.Pipelines = append(out.Pipelines, jp)
	}

	return json.Marshal(out)
}

// marshalError keeps the code and details of coded errors.
func marshalError(err error) (json.RawMessage, error) {
	var kerr *kiterrors.KitError
	if errors.As(err, &kerr) {
		return json.Marshal(kerr)
	}
	return json.Marshal(map[string]string{"message": err.Error()})
}
