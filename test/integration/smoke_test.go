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

//go:build integration

// Package integration exercises the harness against a live daemon.
// The tests skip when the daemon client or the service itself is not
// reachable, so they are safe in any environment and meaningful where
// a daemon is provisioned.
package integration

import (
	"context"
	"io"
	"testing"

	"github.com/jeremyhahn/go-psa-smoke/internal/config"
	"github.com/jeremyhahn/go-psa-smoke/pkg/logging"
	"github.com/jeremyhahn/go-psa-smoke/pkg/openssl"
	"github.com/jeremyhahn/go-psa-smoke/pkg/parsec"
	"github.com/jeremyhahn/go-psa-smoke/pkg/runner"
	"github.com/jeremyhahn/go-psa-smoke/pkg/smoke"
	"github.com/jeremyhahn/go-psa-smoke/pkg/workspace"
)

type liveEnv struct {
	client *parsec.Client
	ossl   *openssl.OpenSSL
	log    *logging.Logger
}

// requireDaemon resolves both external tools and pings the daemon,
// skipping the test when either is unavailable.
func requireDaemon(t *testing.T) *liveEnv {
	t.Helper()

	cfg, err := config.Load("", testing.Verbose())
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}

	toolPath, err := runner.LookTool(cfg.ToolPath, "parsec-tool")
	if err != nil {
		t.Skipf("daemon client not available: %v", err)
	}
	osslPath, err := runner.LookTool(cfg.OpenSSLPath, "openssl")
	if err != nil {
		t.Skipf("crypto tool not available: %v", err)
	}

	log := logging.NewLogger(testing.Verbose())
	exec := runner.NewExec()
	client := parsec.New(toolPath, cfg.ServiceEndpoint, cfg.LogLevel, exec, log)
	if !testing.Verbose() {
		client.SetOutput(io.Discard)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Skipf("daemon not reachable at %s: %v", cfg.ServiceEndpoint, err)
	}

	ossl := openssl.New(osslPath, exec, log)
	if !testing.Verbose() {
		ossl.SetOutput(io.Discard)
	}
	return &liveEnv{client: client, ossl: ossl, log: log}
}

func TestLiveProviderEnumeration(t *testing.T) {
	env := requireDaemon(t)

	providers, err := env.client.ListProviders(context.Background())
	if err != nil {
		t.Fatalf("list-providers failed: %v", err)
	}
	for _, p := range providers {
		if p.ID == parsec.CoreProviderID {
			t.Errorf("core provider leaked into enumeration: %+v", p)
		}
		if p.Name == "" {
			t.Errorf("provider %d has no display name", p.ID)
		}
	}
}

// TestLiveSuite runs the full smoke suite against every provider of
// the live daemon and expects a clean pass.
func TestLiveSuite(t *testing.T) {
	env := requireDaemon(t)
	ctx := context.Background()

	providers, err := env.client.ListProviders(ctx)
	if err != nil {
		t.Fatalf("list-providers failed: %v", err)
	}
	if len(providers) == 0 {
		t.Skip("daemon has no providers registered")
	}

	ws, err := workspace.New()
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	suite := smoke.New(env.client, env.ossl, ws, env.log)
	if !testing.Verbose() {
		suite.SetOutput(io.Discard)
	}

	tally := suite.Run(ctx, providers)
	for _, r := range tally.Results() {
		if r.Status == smoke.StatusFail {
			t.Errorf("provider %d step %s failed: %s", r.Provider, r.Step, r.Message)
		}
	}
}
