package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ai-rules/rulekit/internal/testutil"
)

func TestPlan(t *testing.T) {
	root := newProject(t)
	if err := os.Remove(filepath.Join(root, "gem", "TASKS_TEMPLATE.md")); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "plan", "-C", root)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	testutil.AssertContains(t, out,
		"build:",
		"templates -> build/gem/templates.txt",
		"missing, skipped",
		"write header + rules",
		"update:",
		"preserve 4-line front matter [description, alwaysApply]",
	)

	// Nothing was written.
	testutil.AssertMissing(t, root, "build")
	testutil.AssertMissing(t, root, "rules/windsurf/.windsurfrules")
}

func TestPlan_UpdateOnlyJSON(t *testing.T) {
	root := newProject(t)
	testutil.WriteTree(t, root, map[string]string{"rules/roo/.roo/rules-code/rules.md": "no front matter\n"})

	out, err := runCLI(t, "plan", "update", "--json", "-C", root)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	var got struct {
		Build  json.RawMessage `json:"build"`
		Update struct {
			Source  string `json:"source"`
			Targets []struct {
				Path   string   `json:"path"`
				Action string   `json:"action"`
				Keys   []string `json:"keys"`
			} `json:"targets"`
		} `json:"update"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Build != nil {
		t.Errorf("build plan should be omitted: %s", got.Build)
	}
	if len(got.Update.Targets) != 4 {
		t.Fatalf("got %d targets, want 4", len(got.Update.Targets))
	}
	if last := got.Update.Targets[3]; last.Action != "preserve" || len(last.Keys) != 2 {
		t.Errorf("cursor target = %+v", last)
	}
}

func TestPlan_UnknownPipeline(t *testing.T) {
	root := newProject(t)
	if _, err := runCLI(t, "plan", "deploy", "-C", root); err == nil {
		t.Error("expected error for unknown pipeline")
	}
}
