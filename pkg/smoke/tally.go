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

package smoke

import (
	"github.com/jeremyhahn/go-psa-smoke/pkg/parsec"
)

// Status is the outcome of a single smoke step.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Result records the outcome of one step against one provider.
type Result struct {
	Provider     uint32 `yaml:"provider"`
	ProviderName string `yaml:"provider_name"`
	Step         string `yaml:"step"`
	Status       Status `yaml:"status"`
	Message      string `yaml:"message,omitempty"`
}

// Tally is the explicit accumulator of step outcomes. It replaces the
// shell harness's ambient exit-code variable: tests append to it and
// the driver reads the final failure count as the process exit status.
// A skip is never a failure.
type Tally struct {
	results []Result
}

// NewTally creates an empty accumulator.
func NewTally() *Tally {
	return &Tally{}
}

func (t *Tally) record(p parsec.Provider, step string, status Status, msg string) {
	t.results = append(t.results, Result{
		Provider:     p.ID,
		ProviderName: p.Name,
		Step:         step,
		Status:       status,
		Message:      msg,
	})
}

// Pass records a successful step.
func (t *Tally) Pass(p parsec.Provider, step string) {
	t.record(p, step, StatusPass, "")
}

// Fail records a failed step. Execution always continues; the failure
// only surfaces in the final count.
func (t *Tally) Fail(p parsec.Provider, step, msg string) {
	t.record(p, step, StatusFail, msg)
}

// Skip records a step that did not apply (missing capability).
func (t *Tally) Skip(p parsec.Provider, step, msg string) {
	t.record(p, step, StatusSkip, msg)
}

// Failures returns the number of failed steps. The driver uses this,
// uncapped, as the process exit code.
func (t *Tally) Failures() int {
	n := 0
	for _, r := range t.results {
		if r.Status == StatusFail {
			n++
		}
	}
	return n
}

// Results returns a copy of all recorded step outcomes in order.
func (t *Tally) Results() []Result {
	out := make([]Result, len(t.results))
	copy(out, t.results)
	return out
}
