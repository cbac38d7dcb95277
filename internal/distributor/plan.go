package distributor

import (
	"github.com/ai-rules/rulekit/internal/config"
	kiterrors "github.com/ai-rules/rulekit/internal/errors"
	"github.com/ai-rules/rulekit/internal/frontmatter"
	"github.com/ai-rules/rulekit/internal/fsutil"
)

// Action is what a run would do to one destination.
type Action string

const (
	ActionWrite     Action = "write"      // full or prepend
	ActionCreate    Action = "create"     // partial, destination missing
	ActionOverwrite Action = "overwrite"  // partial, no front matter
	ActionKeepFirst Action = "keep-first" // partial, unterminated front matter
	ActionPreserve  Action = "preserve"   // partial, closed front matter
)

// Planned describes one destination without touching it.
type Planned struct {
	Path     string          `json:"path"`
	Strategy config.Strategy `json:"strategy"`
	Action   Action          `json:"action"`
	Lines    int             `json:"lines,omitempty"` // front-matter lines kept
	Keys     []string        `json:"keys,omitempty"`  // front-matter keys, when they parse
	Err      error           `json:"-"`
}

// Plan reports what Run would do for each target. Nothing is written.
// The source is not read, so a missing source only shows up in Run.
func (d *Distributor) Plan(rules config.RulesConfig) []Planned {
	planned := make([]Planned, 0, len(rules.Targets))
	for _, target := range rules.Targets {
		path := config.Resolve(d.root, target.Path)
		p := Planned{
			Path:     fsutil.Rel(d.root, path),
			Strategy: target.Strategy,
			Action:   ActionWrite,
		}
		if target.Strategy == config.StrategyPartial {
			d.planPartial(path, &p)
		}
		planned = append(planned, p)
	}
	return planned
}

func (d *Distributor) planPartial(path string, p *Planned) {
	existing, err := fsutil.ReadFile(path)
	if kiterrors.HasCode(err, kiterrors.CodeSourceNotFound) {
		p.Action = ActionCreate
		return
	}
	if err != nil {
		p.Err = err
		return
	}

	block := frontmatter.Scan(existing)
	p.Lines = block.Lines
	switch block.State {
	case frontmatter.BeforeStart:
		p.Action = ActionOverwrite
	case frontmatter.InFrontMatter:
		p.Action = ActionKeepFirst
	default:
		p.Action = ActionPreserve
		p.Keys, _ = block.Keys()
	}
}
