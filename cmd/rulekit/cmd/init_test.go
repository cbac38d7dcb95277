package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ai-rules/rulekit/internal/config"
	"github.com/ai-rules/rulekit/internal/testutil"
)

func TestInitWritesDefaults(t *testing.T) {
	root := t.TempDir()

	out, err := runCLI(t, "init", "-C", root)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote ") {
		t.Errorf("output = %q", out)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		t.Fatalf("starter config does not load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("starter config is invalid: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("starter config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestInitAlreadyExists(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{config.FileName: "version = \"1\"\n"})

	_, err := runCLI(t, "init", "-C", root)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %v, want already exists", err)
	}
	if got := testutil.ReadFile(t, root, config.FileName); got != "version = \"1\"\n" {
		t.Errorf("existing config was modified: %q", got)
	}

	if _, err := runCLI(t, "init", "--force", "-C", root); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	if got := testutil.ReadFile(t, root, config.FileName); !strings.Contains(got, "[[update.targets]]") {
		t.Errorf("config not overwritten: %q", got)
	}
}
