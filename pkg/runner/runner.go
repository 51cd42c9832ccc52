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

// Package runner executes the external tools the smoke suite drives.
// All failure is reported through error returns; callers decide whether
// an error is fatal or just another failed step.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Command describes a single external tool invocation.
type Command struct {
	// Name is the program to execute (absolute path or PATH lookup).
	Name string

	// Args are the program arguments, excluding the program name.
	Args []string

	// Env holds KEY=VALUE pairs appended to the inherited environment.
	Env []string

	// Stdout receives the subprocess standard output. When nil the
	// output is streamed to the harness's own stdout, intermixed with
	// the narrative headers, matching the smoke test's inline style.
	Stdout io.Writer
}

// Runner executes external commands. The production implementation is
// Exec; tests substitute a scripted fake.
type Runner interface {
	// Run executes cmd and blocks until it exits. A non-zero exit
	// status is returned as an error. Stderr is always inherited.
	Run(ctx context.Context, cmd Command) error
}

// Exec runs commands as real subprocesses via os/exec.
type Exec struct{}

// NewExec returns a Runner backed by os/exec.
func NewExec() *Exec {
	return &Exec{}
}

// Run implements Runner. The subprocess inherits the harness
// environment plus cmd.Env, streams stderr to the harness stderr, and
// is killed if ctx is cancelled (operator interrupt).
func (e *Exec) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	} else {
		c.Stdout = os.Stdout
	}
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}

// Output runs cmd with its stdout captured and returns the captured
// bytes. Any streaming destination set on cmd is replaced.
func Output(ctx context.Context, r Runner, cmd Command) ([]byte, error) {
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := r.Run(ctx, cmd); err != nil {
		return buf.Bytes(), err
	}
	return buf.Bytes(), nil
}

// LookTool resolves the path to an external tool. An explicit path
// (typically from configuration) is verified to exist; an empty path
// falls back to a PATH lookup of name.
func LookTool(explicit, name string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("tool %s not found at %s: %w", name, explicit, err)
		}
		return explicit, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("tool %s not found in PATH: %w", name, err)
	}
	return path, nil
}
