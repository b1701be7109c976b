// Package sanitize validates untrusted transcript paths and identifiers
// received over the MCP and HTTP surfaces.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Validation errors for security checks.
var (
	// ErrPathTraversal indicates a path contains directory traversal sequences.
	ErrPathTraversal = errors.New("path contains directory traversal")

	// ErrEmptyPath indicates an empty path was provided.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrNotTranscript indicates the path is not a regular .jsonl file.
	ErrNotTranscript = errors.New("not a transcript file")
)

// TranscriptExt is the extension of session transcript files.
const TranscriptExt = ".jsonl"

// ValidatePath returns the cleaned absolute form of path. It rejects any
// ".." element, and when allowedRoot is set, any path outside it.
func ValidatePath(path, allowedRoot string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: contains '..'", ErrPathTraversal)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if allowedRoot == "" {
		return absPath, nil
	}

	absRoot, err := filepath.Abs(allowedRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve allowed root: %w", err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes allowed root", ErrPathTraversal)
	}
	return absPath, nil
}

// ValidateTranscriptPath checks that path is an existing regular .jsonl
// file, optionally under allowedRoot. Symlinks are resolved before the root
// check so a link cannot point outside it.
func ValidateTranscriptPath(path, allowedRoot string) (string, error) {
	absPath, err := ValidatePath(path, "")
	if err != nil {
		return "", err
	}
	if filepath.Ext(absPath) != TranscriptExt {
		return "", fmt.Errorf("%w: %s must end in %s", ErrNotTranscript, filepath.Base(absPath), TranscriptExt)
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fmt.Errorf("resolving transcript path: %w", err)
	}
	if allowedRoot != "" {
		root := allowedRoot
		if r, err := filepath.EvalSymlinks(allowedRoot); err == nil {
			root = r
		}
		if _, err := ValidatePath(resolved, root); err != nil {
			return "", err
		}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat transcript: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrNotTranscript, filepath.Base(absPath))
	}
	return resolved, nil
}
