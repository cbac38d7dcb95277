// Package fsutil holds the file operations the pipelines are built from.
// Every function opens, reads or writes fully, and closes; no handle outlives
// a call. Failures are returned as coded errors from internal/errors.
package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	kiterrors "github.com/ai-rules/rulekit/internal/errors"
)

// ReadFile returns the content of path.
// A missing file yields SourceNotFound.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", readError(path, err)
	}
	return string(data), nil
}

// WriteFile replaces path with content, creating parent directories.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return writeError(path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return writeError(path, err)
	}
	return nil
}

// CopyFile copies src to dst, creating dst's parent directories and keeping
// src's permission bits.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return readError(src, err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return readError(src, err)
	}
	if srcInfo.IsDir() {
		return kiterrors.IOReadError(src, errors.New("is a directory"))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return writeError(dst, err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return writeError(dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return writeError(dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return writeError(dst, err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDirs creates each directory and its parents.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return writeError(dir, err)
		}
	}
	return nil
}

// RemoveWithin removes dir and everything below it. dir must lie strictly
// inside root; the root itself and paths outside it are refused.
// Removing a directory that does not exist is not an error.
func RemoveWithin(root, dir string) (bool, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, kiterrors.BuildUnsafeClean(dir, err.Error())
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, kiterrors.BuildUnsafeClean(dir, err.Error())
	}

	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil {
		return false, kiterrors.BuildUnsafeClean(dir, err.Error())
	}
	if rel == "." {
		return false, kiterrors.BuildUnsafeClean(dir, "it is the project root")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, kiterrors.BuildUnsafeClean(dir, "it is outside the project root")
	}

	if _, err := os.Lstat(absDir); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := os.RemoveAll(absDir); err != nil {
		return false, writeError(dir, err)
	}
	return true, nil
}

// Rel returns path relative to root, slash-separated, for display.
// Paths outside root are returned unchanged.
func Rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

func readError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return kiterrors.SourceNotFound(path).WithCause(err)
	case errors.Is(err, fs.ErrPermission):
		return kiterrors.IOPermissionDenied(path, err)
	default:
		return kiterrors.IOReadError(path, err)
	}
}

func writeError(path string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return kiterrors.IOPermissionDenied(path, err)
	}
	return kiterrors.IOWriteError(path, err)
}
