package assembler

import (
	"path/filepath"

	"github.com/ai-rules/rulekit/internal/fsutil"
)

// PlannedSection is one template as the next run would see it.
type PlannedSection struct {
	Tag     string `json:"tag"`
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

// Plan lists the templates in aggregate order and whether each can be found.
func (a *Assembler) Plan() []PlannedSection {
	planned := make([]PlannedSection, 0, len(a.cfg.Templates))
	for _, spec := range a.cfg.Templates {
		path := filepath.Join(a.sourceDir(), spec.Path)
		planned = append(planned, PlannedSection{
			Tag:     spec.TagName(),
			Path:    a.display(path),
			Present: fsutil.Exists(path) && !fsutil.IsDir(path),
		})
	}
	return planned
}

// AggregatePath returns the aggregate file the run writes, relative to the root.
func (a *Assembler) AggregatePath() string {
	return a.display(filepath.Join(a.outputDir(), a.cfg.AggregateFile))
}
