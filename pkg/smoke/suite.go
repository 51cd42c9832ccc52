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

// Package smoke orchestrates the per-provider test rounds: a
// capability-gated random-number check, an RSA encrypt/decrypt round
// trip, and an ECC sign/verify round trip. Steps never abort the run;
// every outcome lands in the Tally and the daemon-side keys are
// cleaned up best-effort at the end of each round trip.
package smoke

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-psa-smoke/pkg/logging"
	"github.com/jeremyhahn/go-psa-smoke/pkg/openssl"
	"github.com/jeremyhahn/go-psa-smoke/pkg/parsec"
	"github.com/jeremyhahn/go-psa-smoke/pkg/workspace"
)

// randomCheckBytes is how much randomness the smoke check requests.
const randomCheckBytes = 10

type keyKind int

const (
	keyRSA keyKind = iota
	keyECC
)

func (k keyKind) String() string {
	if k == keyRSA {
		return "rsa"
	}
	return "ecc"
}

// Suite runs the smoke rounds against one daemon.
type Suite struct {
	client *parsec.Client
	ossl   *openssl.OpenSSL
	ws     *workspace.Workspace
	log    *logging.Logger
	out    io.Writer
	runID  string
}

// New creates a suite. Key names are suffixed with a fresh run id so
// concurrent runs against the same daemon cannot collide.
func New(client *parsec.Client, ossl *openssl.OpenSSL, ws *workspace.Workspace, log *logging.Logger) *Suite {
	return &Suite{
		client: client,
		ossl:   ossl,
		ws:     ws,
		log:    log,
		out:    os.Stdout,
		runID:  uuid.NewString()[:8],
	}
}

// SetOutput redirects the narrative output of the run.
func (s *Suite) SetOutput(w io.Writer) {
	s.out = w
}

// RunID returns the unique per-run key-name suffix.
func (s *Suite) RunID() string {
	return s.runID
}

// Run executes all rounds for each provider, in order, and returns the
// accumulated outcomes. An empty provider list yields an empty tally.
func (s *Suite) Run(ctx context.Context, providers []parsec.Provider) *Tally {
	tally := NewTally()
	for _, p := range providers {
		s.printf("\n===== Provider %s =====\n", p)
		s.testRandom(ctx, p, tally)
		s.testRSA(ctx, p, tally)
		s.testECC(ctx, p, tally)
	}
	return tally
}

func (s *Suite) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Suite) keyName(kind keyKind) string {
	return fmt.Sprintf("smoke-%s-%s", kind, s.runID)
}

// testRandom runs the random-number smoke check when the provider
// advertises PsaGenerateRandom, and records a skip otherwise.
func (s *Suite) testRandom(ctx context.Context, p parsec.Provider, tally *Tally) {
	s.printf("Checking random number generation\n")

	ops, err := s.client.ListOpcodes(ctx, p.ID)
	if err != nil {
		tally.Fail(p, "list-opcodes", err.Error())
		return
	}
	tally.Pass(p, "list-opcodes")

	if !ops[parsec.OpGenerateRandom] {
		s.printf("%s is not supported by the provider, skipped\n", parsec.OpGenerateRandom)
		tally.Skip(p, "generate-random", "opcode not advertised")
		return
	}

	if err := s.client.GenerateRandom(ctx, p.ID, randomCheckBytes); err != nil {
		tally.Fail(p, "generate-random", err.Error())
		return
	}
	tally.Pass(p, "generate-random")
}

// createKey creates a key of the given kind, checks it shows up in the
// daemon's key listing, and exports its public half into the
// workspace. It returns true only when the exported PEM is present and
// non-empty, the guard the round trips require before handing the file
// to the external tool.
func (s *Suite) createKey(ctx context.Context, p parsec.Provider, kind keyKind, name string, tally *Tally) bool {
	createStep := "create-" + kind.String() + "-key"
	s.printf("Creating %s key %q\n", strings.ToUpper(kind.String()), name)

	var err error
	if kind == keyRSA {
		err = s.client.CreateRSAKey(ctx, p.ID, name)
	} else {
		err = s.client.CreateECCKey(ctx, p.ID, name)
	}
	if err != nil {
		tally.Fail(p, createStep, err.Error())
	} else {
		tally.Pass(p, createStep)
	}

	listing, err := s.client.ListKeys(ctx, p.ID)
	switch {
	case err != nil:
		tally.Fail(p, "list-keys-contains", err.Error())
	case !strings.Contains(listing, name):
		tally.Fail(p, "list-keys-contains", fmt.Sprintf("key %q missing from listing", name))
	default:
		tally.Pass(p, "list-keys-contains")
	}

	pem, err := s.client.ExportPublicKey(ctx, p.ID, name)
	if err != nil {
		tally.Fail(p, "export-public-key", err.Error())
		return false
	}
	if _, err := s.ws.WriteFile(name+".pem", pem); err != nil {
		tally.Fail(p, "export-public-key", err.Error())
		return false
	}
	tally.Pass(p, "export-public-key")

	return s.ws.HasContent(name + ".pem")
}

// deleteKey removes the key from the daemon and the key's artifacts
// from the workspace. Always attempted, even after earlier failures;
// workspace removal problems are logged, not counted.
func (s *Suite) deleteKey(ctx context.Context, p parsec.Provider, name string, tally *Tally) {
	s.printf("Deleting key %q\n", name)

	if err := s.client.DeleteKey(ctx, p.ID, name); err != nil {
		tally.Fail(p, "delete-key", err.Error())
	} else {
		tally.Pass(p, "delete-key")
	}

	if err := s.ws.RemovePrefix(name); err != nil {
		s.log.Warnf("failed to remove artifacts for %s: %v", name, err)
	}
}
