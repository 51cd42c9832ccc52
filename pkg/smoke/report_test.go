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
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-psa-smoke/pkg/parsec"
)

func TestTallyAdditiveSemantics(t *testing.T) {
	p := parsec.Provider{ID: 1, Name: "Mbed Crypto provider"}
	tally := NewTally()

	if tally.Failures() != 0 {
		t.Fatalf("fresh tally should have 0 failures, got %d", tally.Failures())
	}

	tally.Pass(p, "create-rsa-key")
	tally.Fail(p, "rsa-encrypt", "exit status 1")
	tally.Skip(p, "generate-random", "opcode not advertised")
	tally.Fail(p, "ecc-verify", "exit status 1")

	if got := tally.Failures(); got != 2 {
		t.Errorf("expected 2 failures, got %d", got)
	}
	if got := len(tally.Results()); got != 4 {
		t.Errorf("expected 4 results, got %d", got)
	}
}

func TestWriteReportRoundTrip(t *testing.T) {
	p := parsec.Provider{ID: 2, Name: "PKCS #11 provider"}
	tally := NewTally()
	tally.Pass(p, "create-rsa-key")
	tally.Fail(p, "rsa-decrypt", "exit status 1")

	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := WriteReport(path, "deadbeef", tally); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if report.RunID != "deadbeef" {
		t.Errorf("expected run id deadbeef, got %q", report.RunID)
	}
	if report.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", report.Failures)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[1].Status != StatusFail {
		t.Errorf("expected second result to be a failure, got %s", report.Results[1].Status)
	}
	if report.Results[0].ProviderName != "PKCS #11 provider" {
		t.Errorf("provider name lost: %+v", report.Results[0])
	}
}
