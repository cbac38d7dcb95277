// Package assembler builds the template aggregate and copies the agent prompt.
//
// Each template is wrapped in a tag named after it and the sections are
// concatenated in configuration order:
//
//	<FEAT_PRD_TEMPLATE>
//	...template content...
//	</FEAT_PRD_TEMPLATE>
//
// A template that cannot be read is left out of the aggregate; the other
// sections are still written.
package assembler

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ai-rules/rulekit/internal/config"
	kiterrors "github.com/ai-rules/rulekit/internal/errors"
	"github.com/ai-rules/rulekit/internal/fsutil"
	"github.com/ai-rules/rulekit/internal/logging"
	"github.com/ai-rules/rulekit/internal/report"
)

// PipelineName is the report name of the assembler pipeline.
const PipelineName = "templates"

// Assembler runs the template pipeline for one project root.
type Assembler struct {
	cfg    config.AssemblerConfig
	root   string
	logger *slog.Logger
}

// New creates an assembler for the project at root.
func New(cfg config.AssemblerConfig, root string, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		cfg:    cfg,
		root:   root,
		logger: logging.WithPipeline(logger, PipelineName),
	}
}

// Run prepares the build tree, copies the prompt and writes the aggregate.
// A missing source directory or a refused clean aborts the pipeline; every
// other failure is recorded as a step and the run continues.
func (a *Assembler) Run(rep *report.Report) {
	rep.Begin(PipelineName)

	if err := a.Prepare(rep); err != nil {
		rep.Abort(err)
		return
	}
	a.CopyPrompt(rep)
	a.BuildTemplates(rep)
}

// Prepare checks the source directory, removes the previous build when
// cleaning is enabled, and creates the output directory.
func (a *Assembler) Prepare(rep *report.Report) error {
	srcDir := a.sourceDir()
	if !fsutil.IsDir(srcDir) {
		return kiterrors.SourceDirMissing(a.display(srcDir))
	}

	if a.cfg.Clean {
		buildDir := config.Resolve(a.root, a.cfg.BuildDir)
		removed, err := fsutil.RemoveWithin(a.root, buildDir)
		if err != nil {
			return err
		}
		if removed {
			rep.OK("clean", a.display(buildDir), "removed")
		}
	}

	outDir := a.outputDir()
	if err := fsutil.EnsureDirs(outDir); err != nil {
		return err
	}
	a.logger.Debug("output directory ready", "path", outDir)
	return nil
}

// CopyPrompt copies the prompt file into the output directory.
func (a *Assembler) CopyPrompt(rep *report.Report) {
	if a.cfg.Prompt.Source == "" {
		return
	}

	src := filepath.Join(a.sourceDir(), a.cfg.Prompt.Source)
	dest := a.cfg.Prompt.Dest
	if dest == "" {
		dest = a.cfg.Prompt.Source
	}
	dst := filepath.Join(a.outputDir(), dest)

	if err := fsutil.CopyFile(src, dst); err != nil {
		rep.Fail("prompt", a.display(src), err)
		return
	}
	rep.OK("prompt", a.display(dst), "copied")
}

// BuildTemplates reads every template, renders the aggregate and writes it once.
func (a *Assembler) BuildTemplates(rep *report.Report) {
	var sections []Section
	for _, spec := range a.cfg.Templates {
		path := filepath.Join(a.sourceDir(), spec.Path)
		content, err := fsutil.ReadFile(path)
		switch {
		case kiterrors.HasCode(err, kiterrors.CodeSourceNotFound):
			rep.Warn(spec.TagName(), a.display(path), err)
			continue
		case err != nil:
			rep.Fail(spec.TagName(), a.display(path), err)
			continue
		}
		sections = append(sections, Section{Tag: spec.TagName(), Content: content})
		a.logger.Debug("template read", "tag", spec.TagName(), "bytes", len(content))
	}

	dst := filepath.Join(a.outputDir(), a.cfg.AggregateFile)
	if err := fsutil.WriteFile(dst, Render(sections)); err != nil {
		rep.Fail("aggregate", a.display(dst), err)
		return
	}
	rep.OK("aggregate", a.display(dst), "wrote "+plural(len(sections), "section"))
}

// Section is one tagged block of the aggregate.
type Section struct {
	Tag     string
	Content string
}

// Render concatenates sections as "<tag>\ncontent\n</tag>\n\n" in order.
func Render(sections []Section) string {
	var b strings.Builder
	for _, s := range sections {
		b.WriteString("<" + s.Tag + ">\n")
		b.WriteString(s.Content)
		b.WriteString("\n</" + s.Tag + ">\n\n")
	}
	return b.String()
}

func (a *Assembler) sourceDir() string {
	return config.Resolve(a.root, a.cfg.SourceDir)
}

func (a *Assembler) outputDir() string {
	return config.Resolve(a.root, a.cfg.OutputDir)
}

// display returns path relative to the project root when possible.
func (a *Assembler) display(path string) string {
	return fsutil.Rel(a.root, path)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
