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

// Package runnertest provides a scripted Runner for unit tests, so the
// suite and client packages can be exercised without real subprocesses.
package runnertest

import (
	"context"
	"strings"

	"github.com/jeremyhahn/go-psa-smoke/pkg/runner"
)

// Call records one invocation observed by the fake.
type Call struct {
	Name string
	Args []string
	Env  []string
}

// Line renders the call the way it would appear on a shell command line.
func (c Call) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Fake is a Runner whose behavior is driven by a handler function.
// It records every call it receives.
type Fake struct {
	// Handler decides the outcome of each call: the returned string is
	// written to the command's stdout, the error becomes the command's
	// failure. A nil handler makes every command succeed silently.
	Handler func(call Call) (stdout string, err error)

	Calls []Call
}

// Run implements runner.Runner.
func (f *Fake) Run(_ context.Context, cmd runner.Command) error {
	call := Call{Name: cmd.Name, Args: cmd.Args, Env: cmd.Env}
	f.Calls = append(f.Calls, call)

	if f.Handler == nil {
		return nil
	}
	stdout, err := f.Handler(call)
	if stdout != "" && cmd.Stdout != nil {
		if _, werr := cmd.Stdout.Write([]byte(stdout)); werr != nil {
			return werr
		}
	}
	return err
}

// CommandLines returns every recorded call rendered via Line, in order.
func (f *Fake) CommandLines() []string {
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.Line())
	}
	return lines
}

// Saw reports whether any recorded call contains all of the given
// tokens in its argument list (the program name included).
func (f *Fake) Saw(tokens ...string) bool {
	for _, line := range f.CommandLines() {
		match := true
		for _, tok := range tokens {
			if !strings.Contains(line, tok) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
