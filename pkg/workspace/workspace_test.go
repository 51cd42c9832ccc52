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

package workspace

import (
	"os"
	"testing"
)

func TestWorkspaceWriteRead(t *testing.T) {
	ws, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ws.Close()

	path, err := ws.WriteFile("artifact.txt", []byte("payload"))
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact not on disk: %v", err)
	}

	data, err := ws.ReadFile("artifact.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("expected 'payload', got %q", string(data))
	}
}

func TestWorkspaceHasContent(t *testing.T) {
	ws, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ws.Close()

	if ws.HasContent("missing.pem") {
		t.Error("missing artifact reported as having content")
	}

	if _, err := ws.WriteFile("empty.pem", nil); err != nil {
		t.Fatal(err)
	}
	if ws.HasContent("empty.pem") {
		t.Error("empty artifact reported as having content")
	}

	if _, err := ws.WriteFile("key.pem", []byte("-----BEGIN PUBLIC KEY-----")); err != nil {
		t.Fatal(err)
	}
	if !ws.HasContent("key.pem") {
		t.Error("non-empty artifact reported as empty")
	}
}

func TestWorkspaceRemovePrefix(t *testing.T) {
	ws, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ws.Close()

	for _, name := range []string{"rsa-key.pem", "rsa-key.enc", "ecc-key.pem"} {
		if _, err := ws.WriteFile(name, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	if err := ws.RemovePrefix("rsa-key"); err != nil {
		t.Fatalf("RemovePrefix failed: %v", err)
	}

	if ws.HasContent("rsa-key.pem") || ws.HasContent("rsa-key.enc") {
		t.Error("prefixed artifacts should be gone")
	}
	if !ws.HasContent("ecc-key.pem") {
		t.Error("unrelated artifact should survive")
	}
}

// The scratch directory must not exist after Close, no matter how the
// run ended.
func TestWorkspaceCloseRemovesDirectory(t *testing.T) {
	ws, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := ws.WriteFile("leftover.bin", []byte("x")); err != nil {
		t.Fatal(err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Errorf("scratch directory still exists after Close: %v", err)
	}
}
