// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-psa-smoke.
//
// go-psa-smoke is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package workspace manages the scratch directory holding the
// intermediate artifacts of a smoke run (exported public keys,
// plaintexts, ciphertexts, signatures). The directory lives for one
// run and is removed on every exit path.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is an isolated scratch directory.
type Workspace struct {
	dir string
}

// New creates a fresh scratch directory under the system temp dir.
func New() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "psa-smoke-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the scratch directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path resolves an artifact name inside the scratch directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteFile writes an artifact and returns its full path.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return path, nil
}

// ReadFile reads an artifact by name.
func (w *Workspace) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(w.Path(name))
}

// HasContent reports whether an artifact exists and is non-empty.
// Round-trip tests use this as the guard between a key export and the
// external call that would otherwise crash on an empty key file.
func (w *Workspace) HasContent(name string) bool {
	info, err := os.Stat(w.Path(name))
	return err == nil && info.Size() > 0
}

// RemovePrefix deletes every artifact whose base name starts with
// prefix. Removal is best-effort; the first error is returned after
// all candidates have been attempted.
func (w *Workspace) RemovePrefix(prefix string) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	var firstErr error
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(w.dir, entry.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close removes the scratch directory and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}
