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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the machine-readable summary of a run, complementing the
// additive exit code.
type Report struct {
	RunID     string   `yaml:"run_id"`
	Timestamp string   `yaml:"timestamp"`
	Failures  int      `yaml:"failures"`
	Results   []Result `yaml:"results"`
}

// NewReport builds a report from the accumulated tally.
func NewReport(runID string, tally *Tally) Report {
	return Report{
		RunID:     runID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Failures:  tally.Failures(),
		Results:   tally.Results(),
	}
}

// WriteReport marshals the report as YAML to path.
func WriteReport(path, runID string, tally *Tally) error {
	data, err := yaml.Marshal(NewReport(runID, tally))
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}
