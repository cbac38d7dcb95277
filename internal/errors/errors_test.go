package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestKitError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *KitError
		wantStr string
	}{
		{
			name: "simple error",
			err: &KitError{
				Code:    "TEST_001",
				Message: "test error",
			},
			wantStr: "[TEST_001] test error",
		},
		{
			name: "error with cause",
			err: &KitError{
				Code:    "TEST_002",
				Message: "wrapped error",
				Cause:   errors.New("underlying"),
			},
			wantStr: "[TEST_002] wrapped error: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestKitError_WithDetail(t *testing.T) {
	err := New("TEST_001", "test").
		WithDetail("key1", "value1").
		WithDetail("key2", 42)

	if err.Details["key1"] != "value1" {
		t.Errorf("Details[key1] = %v, want value1", err.Details["key1"])
	}
	if err.Details["key2"] != 42 {
		t.Errorf("Details[key2] = %v, want 42", err.Details["key2"])
	}
}

func TestKitError_MarshalJSON(t *testing.T) {
	err := IOWriteError("build/gem/templates.txt", errors.New("disk on fire"))

	data, jsonErr := json.Marshal(err)
	if jsonErr != nil {
		t.Fatalf("Marshal failed: %v", jsonErr)
	}

	var result map[string]any
	if jsonErr := json.Unmarshal(data, &result); jsonErr != nil {
		t.Fatalf("Unmarshal failed: %v", jsonErr)
	}

	if result["code"] != CodeIOWriteError {
		t.Errorf("code = %v, want %s", result["code"], CodeIOWriteError)
	}
	if result["cause"] != "disk on fire" {
		t.Errorf("cause = %v, want disk on fire", result["cause"])
	}
	details, ok := result["details"].(map[string]any)
	if !ok {
		t.Fatalf("details not a map")
	}
	if details["path"] != "build/gem/templates.txt" {
		t.Errorf("details.path = %v", details["path"])
	}
}

func TestHasCode(t *testing.T) {
	err := SourceNotFound("gem/agent-prompt.md")
	if !HasCode(err, CodeSourceNotFound) {
		t.Error("HasCode(err, SRC_001) = false, want true")
	}
	if HasCode(err, CodeIOReadError) {
		t.Error("HasCode(err, IO_004) = true, want false")
	}
	if HasCode(errors.New("plain"), CodeSourceNotFound) {
		t.Error("HasCode(regular error) = true, want false")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !HasCode(wrapped, CodeSourceNotFound) {
		t.Error("HasCode should find code in wrapped error")
	}
}

func TestCode(t *testing.T) {
	if got := Code(New("TEST_001", "test")); got != "TEST_001" {
		t.Errorf("Code() = %s, want TEST_001", got)
	}
	if got := Code(errors.New("regular")); got != "" {
		t.Errorf("Code(regular) = %s, want empty", got)
	}
}

func TestFactoryFunctions(t *testing.T) {
	tests := []struct {
		name     string
		err      *KitError
		wantCode string
	}{
		{"ConfigMissingField", ConfigMissingField("field"), CodeConfigMissingField},
		{"ConfigInvalidValue", ConfigInvalidValue("field", "val", "reason"), CodeConfigInvalidValue},
		{"ConfigParseError", ConfigParseError("rulekit.toml", errors.New("err")), CodeConfigParseError},
		{"SourceNotFound", SourceNotFound("/path"), CodeSourceNotFound},
		{"SourceDirMissing", SourceDirMissing("gem"), CodeSourceDirMissing},
		{"FrontMatterMissing", FrontMatterMissing("/path"), CodeFrontMatterMissing},
		{"FrontMatterUnterminated", FrontMatterUnterminated("/path"), CodeFrontMatterUnterminated},
		{"IOPermissionDenied", IOPermissionDenied("/path", errors.New("err")), CodeIOPermission},
		{"IOReadError", IOReadError("/path", errors.New("err")), CodeIOReadError},
		{"IOWriteError", IOWriteError("/path", errors.New("err")), CodeIOWriteError},
		{"BuildUnsafeClean", BuildUnsafeClean("/", "is the project root"), CodeBuildUnsafeClean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("%s Code = %s, want %s", tt.name, tt.err.Code, tt.wantCode)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s Error() is empty", tt.name)
			}
		})
	}
}

func TestErrorsUnwrapChain(t *testing.T) {
	wrapped := IOReadError("/path", fs.ErrPermission)

	if !errors.Is(wrapped, fs.ErrPermission) {
		t.Error("errors.Is should find root cause")
	}
}
