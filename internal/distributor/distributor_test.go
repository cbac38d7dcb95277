package distributor

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ai-rules/rulekit/internal/config"
	kiterrors "github.com/ai-rules/rulekit/internal/errors"
	"github.com/ai-rules/rulekit/internal/logging"
	"github.com/ai-rules/rulekit/internal/report"
	"github.com/ai-rules/rulekit/internal/testutil"
)

const rules = "new body\n"

func runPartial(t *testing.T, existing *string, source string) (string, *report.Report, *testutil.TestLogger) {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{"rules.md": source}
	if existing != nil {
		files["out/global.mdc"] = *existing
	}
	testutil.WriteTree(t, root, files)

	tl := testutil.NewTestLogger(t)
	rep := report.New(nil, tl.Logger, report.FormatOptions{})
	New(root, tl.Logger).Run("update", config.RulesConfig{
		Source:  "rules.md",
		Targets: []config.TargetSpec{{Path: "out/global.mdc", Strategy: config.StrategyPartial}},
	}, rep)

	return testutil.ReadFile(t, root, "out/global.mdc"), rep, tl
}

func ptr(s string) *string { return &s }

func TestPartial(t *testing.T) {
	tests := []struct {
		name     string
		existing *string
		source   string
		want     string
		warnCode string
		message  string
	}{
		{
			name:     "closed block keeps front matter",
			existing: ptr("---\nfoo: 1\n---\nold body\n"),
			source:   rules,
			want:     "---\nfoo: 1\n---\nnew body\n",
			message:  "preserved 3-line front matter",
		},
		{
			name:     "no front matter is a full overwrite",
			existing: ptr("no frontmatter here"),
			source:   "X",
			want:     "X",
			warnCode: kiterrors.CodeFrontMatterMissing,
		},
		{
			name:    "missing destination is created",
			source:  rules,
			want:    rules,
			message: "created",
		},
		{
			name:     "unterminated block keeps the first line",
			existing: ptr("---\ndescription: x\nbody\n"),
			source:   rules,
			want:     "---\n\nnew body\n",
			warnCode: kiterrors.CodeFrontMatterUnterminated,
		},
		{
			name:     "unterminated block with leading newline in source",
			existing: ptr("---\ndescription: x\n"),
			source:   "\nnew body\n",
			want:     "---\n\nnew body\n",
			warnCode: kiterrors.CodeFrontMatterUnterminated,
		},
		{
			name:     "blank line after block belongs to the body",
			existing: ptr("---\na: 1\n---\n\nold\n"),
			source:   "\nnew body\n",
			want:     "---\na: 1\n---\n\nnew body\n",
			message:  "preserved 3-line front matter",
		},
		{
			name:     "block without trailing newline",
			existing: ptr("---\na: 1\n---"),
			source:   "\nnew body\n",
			want:     "---\na: 1\n---\n\nnew body\n",
			message:  "preserved 3-line front matter",
		},
		{
			name:     "invalid yaml is still preserved",
			existing: ptr("---\n: : :\n---\nold\n"),
			source:   rules,
			want:     "---\n: : :\n---\nnew body\n",
			message:  "preserved 3-line front matter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rep, tl := runPartial(t, tt.existing, tt.source)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}
			if rep.Failed() {
				t.Fatalf("run failed: %v", rep.Err())
			}

			steps := rep.Steps()
			if len(steps) != 1 {
				t.Fatalf("got %d steps, want 1", len(steps))
			}
			if tt.warnCode != "" {
				if steps[0].Status != report.StatusWarning {
					t.Errorf("status = %s, want warning", steps[0].Status)
				}
				if !kiterrors.HasCode(steps[0].Err, tt.warnCode) {
					t.Errorf("step error = %v, want %s", steps[0].Err, tt.warnCode)
				}
				tl.AssertAttr(t, "code", tt.warnCode)
				return
			}
			if steps[0].Status != report.StatusOK || steps[0].Message != tt.message {
				t.Errorf("step = %s %q, want ok %q", steps[0].Status, steps[0].Message, tt.message)
			}
			if tl.Count(slog.LevelWarn) != 0 {
				t.Error("unexpected warning logged")
			}
		})
	}
}

func TestPartial_LogsPreservedKeys(t *testing.T) {
	_, _, tl := runPartial(t, ptr("---\ndescription: global\nalwaysApply: true\n---\nold\n"), rules)

	entries := tl.Matching("path", "out/global.mdc")
	for _, e := range entries {
		if e.Message != "front matter preserved" {
			continue
		}
		keys, ok := e.Attrs["keys"].([]string)
		if !ok {
			t.Fatalf("keys attr = %T", e.Attrs["keys"])
		}
		if diff := cmp.Diff([]string{"description", "alwaysApply"}, keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		return
	}
	t.Error("no 'front matter preserved' entry logged")
}

func TestRun_DefaultUpdate(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.DefaultProject())

	rep := report.New(nil, nil, report.FormatOptions{})
	New(root, logging.NewForTest()).Run("update", config.Default().Update, rep)

	if rep.Failed() {
		t.Fatalf("run failed: %v", rep.Err())
	}

	source := "# Code rules\n\n- keep it small\n"
	for _, rel := range []string{
		"rules/github/.github/copilot-instructions.md",
		"rules/windsurf/.windsurfrules",
		"rules/roo/.roo/rules-code/rules.md",
	} {
		if got := testutil.ReadFile(t, root, rel); got != source {
			t.Errorf("%s = %q, want source", rel, got)
		}
	}

	want := "---\ndescription: global\nalwaysApply: true\n---\n" + source
	if diff := cmp.Diff(want, testutil.ReadFile(t, root, "rules/cursor/.cursor/global.mdc")); diff != "" {
		t.Errorf("cursor rules mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_DefaultBuildPrependsHeaders(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, testutil.DefaultProject())

	rep := report.New(nil, nil, report.FormatOptions{})
	New(root, logging.NewForTest()).Run("rules", config.Default().Build, rep)

	if rep.Failed() {
		t.Fatalf("run failed: %v", rep.Err())
	}

	source := "# Dev rules\n\n- write tests\n"
	tests := map[string]string{
		"build/ide-rules/.cursor/rules/global.mdc":        config.CursorHeader + source,
		"build/ide-rules/.github/copilot-instructions.md": source,
		"build/ide-rules/.roo/rules-code/rules.md":        source,
		"build/ide-rules/.windsurf/rules/rules.md":        config.WindsurfHeader + source,
	}
	for rel, want := range tests {
		if diff := cmp.Diff(want, testutil.ReadFile(t, root, rel)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", rel, diff)
		}
	}
}

func TestRun_MissingSourceAborts(t *testing.T) {
	root := t.TempDir()

	rep := report.New(nil, nil, report.FormatOptions{})
	New(root, logging.NewForTest()).Run("update", config.Default().Update, rep)

	if len(rep.Pipelines) != 1 {
		t.Fatalf("got %d pipelines, want 1", len(rep.Pipelines))
	}
	if !kiterrors.HasCode(rep.Pipelines[0].Aborted, kiterrors.CodeSourceNotFound) {
		t.Errorf("abort error = %v, want SRC_001", rep.Pipelines[0].Aborted)
	}
	if len(rep.Steps()) != 0 {
		t.Errorf("no target should be written, got %d steps", len(rep.Steps()))
	}
	testutil.AssertMissing(t, root, "rules/windsurf/.windsurfrules")
}

func TestRun_FailingTargetDoesNotStopOthers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory-as-file semantics differ on windows")
	}
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"rules.md": rules})
	// A directory where a file is expected makes the write fail.
	if err := os.MkdirAll(filepath.Join(root, "blocked.md"), 0755); err != nil {
		t.Fatal(err)
	}

	rep := report.New(nil, nil, report.FormatOptions{})
	New(root, logging.NewForTest()).Run("update", config.RulesConfig{
		Source: "rules.md",
		Targets: []config.TargetSpec{
			{Path: "blocked.md", Strategy: config.StrategyFull},
			{Path: "ok.md", Strategy: config.StrategyFull},
		},
	}, rep)

	c := rep.Counts()
	if c.Failed != 1 || c.OK != 1 {
		t.Errorf("Counts() = %+v, want 1 failed and 1 ok", c)
	}
	if got := testutil.ReadFile(t, root, "ok.md"); got != rules {
		t.Errorf("ok.md = %q", got)
	}
}

func TestRun_UnknownStrategyFailsStep(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"rules.md": rules})

	rep := report.New(nil, nil, report.FormatOptions{})
	New(root, logging.NewForTest()).Run("update", config.RulesConfig{
		Source:  "rules.md",
		Targets: []config.TargetSpec{{Path: "x.md", Strategy: "merge"}},
	}, rep)

	if !kiterrors.HasCode(rep.Steps()[0].Err, kiterrors.CodeConfigInvalidValue) {
		t.Errorf("step error = %v, want CONFIG_002", rep.Steps()[0].Err)
	}
	testutil.AssertMissing(t, root, "x.md")
}

func TestPlan(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"closed.mdc":       "---\ndescription: x\nglobs:\n---\nbody\n",
		"open.mdc":         "---\ndescription: x\n",
		"plain.mdc":        "body\n",
		"full-existing.md": "old\n",
	})

	got := New(root, logging.NewForTest()).Plan(config.RulesConfig{
		Source: "rules.md",
		Targets: []config.TargetSpec{
			{Path: "full-existing.md", Strategy: config.StrategyFull},
			{Path: "missing.mdc", Strategy: config.StrategyPartial},
			{Path: "plain.mdc", Strategy: config.StrategyPartial},
			{Path: "open.mdc", Strategy: config.StrategyPartial},
			{Path: "closed.mdc", Strategy: config.StrategyPartial},
		},
	})

	want := []Planned{
		{Path: "full-existing.md", Strategy: config.StrategyFull, Action: ActionWrite},
		{Path: "missing.mdc", Strategy: config.StrategyPartial, Action: ActionCreate},
		{Path: "plain.mdc", Strategy: config.StrategyPartial, Action: ActionOverwrite},
		{Path: "open.mdc", Strategy: config.StrategyPartial, Action: ActionKeepFirst, Lines: 1},
		{Path: "closed.mdc", Strategy: config.StrategyPartial, Action: ActionPreserve, Lines: 4, Keys: []string{"description", "globs"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan mismatch (-want +got):\n%s", diff)
	}

	if got := testutil.ReadFile(t, root, "plain.mdc"); got != "body\n" {
		t.Errorf("Plan modified plain.mdc: %q", got)
	}
	testutil.AssertMissing(t, root, "missing.mdc")
}
