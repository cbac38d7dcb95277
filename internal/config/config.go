package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	kiterrors "github.com/ai-rules/rulekit/internal/errors"
	"github.com/ai-rules/rulekit/internal/frontmatter"
)

// FileName is the project configuration file, looked up in the project root.
const FileName = "rulekit.toml"

// LogLevel specifies the logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat specifies the log output format.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// Strategy is how the distributor writes a destination.
type Strategy string

const (
	StrategyFull    Strategy = "full"    // Write the rules verbatim
	StrategyPartial Strategy = "partial" // Keep existing front matter, replace the body
	StrategyPrepend Strategy = "prepend" // Write a fixed header, then the rules
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyFull, StrategyPartial, StrategyPrepend:
		return true
	}
	return false
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  LogLevel  `toml:"level"`
	Format LogFormat `toml:"format"`
	File   string    `toml:"file"`
}

// TemplateSpec is one template wrapped into the aggregate file.
type TemplateSpec struct {
	// Path is relative to the assembler source directory.
	Path string `toml:"path"`

	// Tag names the <tag>...</tag> wrapper. Derived from the file name when empty.
	Tag string `toml:"tag,omitempty"`
}

// TagName returns the configured tag, or the file name without its extension.
func (t TemplateSpec) TagName() string {
	if t.Tag != "" {
		return t.Tag
	}
	base := filepath.Base(t.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PromptSpec is the prompt file copied next to the aggregate.
type PromptSpec struct {
	Source string `toml:"source"` // Relative to source_dir
	Dest   string `toml:"dest"`   // Relative to output_dir
}

// AssemblerConfig holds template assembler settings.
type AssemblerConfig struct {
	SourceDir     string         `toml:"source_dir"`
	BuildDir      string         `toml:"build_dir"`
	OutputDir     string         `toml:"output_dir"`
	Clean         bool           `toml:"clean"`
	AggregateFile string         `toml:"aggregate_file"`
	Templates     []TemplateSpec `toml:"templates"`
	Prompt        PromptSpec     `toml:"prompt"`
}

// TargetSpec is one destination of the rule distributor.
type TargetSpec struct {
	Path     string   `toml:"path"`
	Strategy Strategy `toml:"strategy"`
	Header   string   `toml:"header,omitempty"`
}

// RulesConfig is one canonical rules document and where it goes.
type RulesConfig struct {
	Source  string       `toml:"source"`
	Targets []TargetSpec `toml:"targets"`
}

// Config is the main configuration struct for rulekit.
type Config struct {
	Version   string          `toml:"version"`
	Logging   LoggingConfig   `toml:"logging"`
	Assembler AssemblerConfig `toml:"assembler"`
	Build     RulesConfig     `toml:"build"`
	Update    RulesConfig     `toml:"update"`
}

// CursorHeader is the front matter written before the Cursor rule file.
const CursorHeader = `---
description: Apply this rule to the entire repository
globs:
alwaysApply: true
---

`

// WindsurfHeader is the front matter written before the Windsurf rule file.
const WindsurfHeader = `---
trigger: always_on
---

`

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Logging: LoggingConfig{
			Level:  LogLevelError,
			Format: LogFormatText,
			File:   "",
		},
		Assembler: AssemblerConfig{
			SourceDir:     "gem",
			BuildDir:      "build",
			OutputDir:     "build/gem",
			Clean:         true,
			AggregateFile: "templates.txt",
			Templates:     DefaultTemplates(),
			Prompt: PromptSpec{
				Source: "agent-prompt.md",
				Dest:   "agent-prompt.txt",
			},
		},
		Build: RulesConfig{
			Source:  "ide-rules/DEV-RULES.md",
			Targets: DefaultBuildTargets(),
		},
		Update: RulesConfig{
			Source:  "rules/CODE-RULES-CONDENSED.md",
			Targets: DefaultUpdateTargets(),
		},
	}
}

// DefaultTemplates returns the templates merged into templates.txt.
func DefaultTemplates() []TemplateSpec {
	return []TemplateSpec{
		{Path: "FEAT_PRD_TEMPLATE.md", Tag: "FEAT_PRD_TEMPLATE"},
		{Path: "PROD_PRD_TEMPLATE.md", Tag: "PROD_PRD_TEMPLATE"},
		{Path: "PROTO_PRD_TEMPLATE.md", Tag: "PROTO_PRD_TEMPLATE"},
		{Path: "TASKS_TEMPLATE.md", Tag: "TASKS_TEMPLATE"},
		{Path: "OPERATIONAL_GUIDELINES_TEMPLATE.md", Tag: "OPERATIONAL_GUIDELINES_TEMPLATE"},
	}
}

// DefaultBuildTargets returns the IDE rule files generated by `rulekit build`.
func DefaultBuildTargets() []TargetSpec {
	return []TargetSpec{
		{Path: "build/ide-rules/.cursor/rules/global.mdc", Strategy: StrategyPrepend, Header: CursorHeader},
		{Path: "build/ide-rules/.github/copilot-instructions.md", Strategy: StrategyFull},
		{Path: "build/ide-rules/.roo/rules-code/rules.md", Strategy: StrategyFull},
		{Path: "build/ide-rules/.windsurf/rules/rules.md", Strategy: StrategyPrepend, Header: WindsurfHeader},
	}
}

// DefaultUpdateTargets returns the rule files refreshed by `rulekit update`.
func DefaultUpdateTargets() []TargetSpec {
	return []TargetSpec{
		{Path: "rules/github/.github/copilot-instructions.md", Strategy: StrategyFull},
		{Path: "rules/windsurf/.windsurfrules", Strategy: StrategyFull},
		{Path: "rules/roo/.roo/rules-code/rules.md", Strategy: StrategyFull},
		{Path: "rules/cursor/.cursor/global.mdc", Strategy: StrategyPartial},
	}
}

// Load loads configuration from file, merging with defaults.
// Lists defined in the file replace the default lists.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil // Use defaults if no config file
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return Parse(path, string(data))
}

// LoadFromDir loads rulekit.toml from a project root.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Parse decodes TOML content over the defaults. path is used in errors only.
func Parse(path, content string) (*Config, error) {
	cfg := Default()

	// Decode lists into empty slices so entries never inherit default fields.
	cfg.Assembler.Templates = nil
	cfg.Build.Targets = nil
	cfg.Update.Targets = nil

	md, err := toml.Decode(content, cfg)
	if err != nil {
		return nil, kiterrors.ConfigParseError(path, err)
	}

	if !md.IsDefined("assembler", "templates") {
		cfg.Assembler.Templates = DefaultTemplates()
	}
	if !md.IsDefined("build", "targets") {
		cfg.Build.Targets = DefaultBuildTargets()
	}
	if !md.IsDefined("update", "targets") {
		cfg.Update.Targets = DefaultUpdateTargets()
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, kiterrors.ConfigInvalidValue(undecoded[0].String(), nil, "unknown key")
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Version == "" {
		return kiterrors.ConfigMissingField("version")
	}

	switch c.Logging.Level {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return kiterrors.ConfigInvalidValue("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	switch c.Logging.Format {
	case "", LogFormatJSON, LogFormatText:
	default:
		return kiterrors.ConfigInvalidValue("logging.format", c.Logging.Format, "must be json or text")
	}

	if err := c.Assembler.validate(); err != nil {
		return err
	}
	if err := c.Build.validate("build"); err != nil {
		return err
	}
	return c.Update.validate("update")
}

func (a *AssemblerConfig) validate() error {
	if a.SourceDir == "" {
		return kiterrors.ConfigMissingField("assembler.source_dir")
	}
	if a.OutputDir == "" {
		return kiterrors.ConfigMissingField("assembler.output_dir")
	}
	if a.AggregateFile == "" {
		return kiterrors.ConfigMissingField("assembler.aggregate_file")
	}
	if a.Clean && a.BuildDir == "" {
		return kiterrors.ConfigMissingField("assembler.build_dir")
	}

	seen := make(map[string]bool)
	for i, tmpl := range a.Templates {
		field := fmt.Sprintf("assembler.templates[%d]", i)
		if tmpl.Path == "" {
			return kiterrors.ConfigMissingField(field + ".path")
		}
		tag := tmpl.TagName()
		if tag == "" || strings.ContainsAny(tag, "<>/ \t\n") {
			return kiterrors.ConfigInvalidValue(field+".tag", tag, "tag must be a bare name")
		}
		if seen[tag] {
			return kiterrors.ConfigInvalidValue(field+".tag", tag, "duplicate tag")
		}
		seen[tag] = true
	}

	if a.Prompt.Source != "" && a.Prompt.Dest == "" {
		return kiterrors.ConfigMissingField("assembler.prompt.dest")
	}
	return nil
}

func (r *RulesConfig) validate(section string) error {
	if len(r.Targets) > 0 && r.Source == "" {
		return kiterrors.ConfigMissingField(section + ".source")
	}

	seen := make(map[string]bool)
	for i, target := range r.Targets {
		field := fmt.Sprintf("%s.targets[%d]", section, i)
		if target.Path == "" {
			return kiterrors.ConfigMissingField(field + ".path")
		}
		if !target.Strategy.Valid() {
			return kiterrors.ConfigInvalidValue(field+".strategy", target.Strategy, "must be full, partial or prepend")
		}
		if target.Strategy == StrategyPrepend {
			if target.Header == "" {
				return kiterrors.ConfigMissingField(field + ".header")
			}
			if err := frontmatter.ValidateHeader(target.Header); err != nil {
				return kiterrors.ConfigInvalidValue(field+".header", target.Header, err.Error())
			}
		} else if target.Header != "" {
			return kiterrors.ConfigInvalidValue(field+".header", target.Header, "header is only used by the prepend strategy")
		}

		clean := filepath.Clean(target.Path)
		if seen[clean] {
			return kiterrors.ConfigInvalidValue(field+".path", target.Path, "destination listed twice")
		}
		seen[clean] = true
	}
	return nil
}

// Resolve returns path joined to root unless it is already absolute.
func Resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// SourceDir returns the absolute template source directory.
func (c *Config) SourceDir(root string) string {
	return Resolve(root, c.Assembler.SourceDir)
}

// BuildDir returns the absolute build directory.
func (c *Config) BuildDir(root string) string {
	return Resolve(root, c.Assembler.BuildDir)
}

// OutputDir returns the absolute assembler output directory.
func (c *Config) OutputDir(root string) string {
	return Resolve(root, c.Assembler.OutputDir)
}

// LogFile returns the absolute log file path, or "" when logging to stderr only.
func (c *Config) LogFile(root string) string {
	if c.Logging.File == "" {
		return ""
	}
	return Resolve(root, c.Logging.File)
}
