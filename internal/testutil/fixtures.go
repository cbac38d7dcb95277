// Package testutil provides test infrastructure, fixtures, and helpers for rulekit.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates files under root. Keys are slash-separated relative paths.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// ReadFile returns the content of root/rel, failing the test if it is missing.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// DefaultProject returns the source tree the default configuration expects,
// with short placeholder content.
func DefaultProject() map[string]string {
	return map[string]string{
		"gem/FEAT_PRD_TEMPLATE.md":                     "# Feature PRD\n",
		"gem/PROD_PRD_TEMPLATE.md":                     "# Product PRD\n",
		"gem/PROTO_PRD_TEMPLATE.md":                    "# Prototype PRD\n",
		"gem/TASKS_TEMPLATE.md":                        "# Tasks\n",
		"gem/OPERATIONAL_GUIDELINES_TEMPLATE.md":       "# Operational guidelines\n",
		"gem/agent-prompt.md":                          "You are a planning agent.\n",
		"ide-rules/DEV-RULES.md":                       "# Dev rules\n\n- write tests\n",
		"rules/CODE-RULES-CONDENSED.md":                "# Code rules\n\n- keep it small\n",
		"rules/cursor/.cursor/global.mdc":              "---\ndescription: global\nalwaysApply: true\n---\nold rules\n",
		"rules/github/.github/copilot-instructions.md": "stale\n",
	}
}
