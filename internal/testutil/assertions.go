package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// AssertContains asserts that s contains every substring.
func AssertContains(t *testing.T, s string, substrings ...string) {
	t.Helper()
	for _, sub := range substrings {
		if !strings.Contains(s, sub) {
			t.Errorf("Expected output to contain %q\nOutput:\n%s", sub, s)
		}
	}
}

// AssertNotContains asserts that s contains none of the substrings.
func AssertNotContains(t *testing.T, s string, substrings ...string) {
	t.Helper()
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			t.Errorf("Expected output to not contain %q\nOutput:\n%s", sub, s)
		}
	}
}

// AssertFileContent asserts that root/rel holds exactly want.
func AssertFileContent(t *testing.T, root, rel, want string) {
	t.Helper()
	if diff := cmp.Diff(want, ReadFile(t, root, rel)); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", rel, diff)
	}
}

// AssertMissing fails the test if root/rel exists.
func AssertMissing(t *testing.T, root, rel string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
		t.Errorf("Expected %s to not exist", rel)
	}
}

// AssertJSONContainsKey asserts that a JSON object contains a key.
func AssertJSONContainsKey(t *testing.T, jsonStr, key string) {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &m); err != nil {
		t.Errorf("Failed to parse JSON: %v", err)
		return
	}
	if _, exists := m[key]; !exists {
		t.Errorf("Expected JSON to contain key %q", key)
	}
}
