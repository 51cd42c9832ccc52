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

// Command psa-smoke runs end-to-end smoke tests against a PSA crypto
// service daemon through its command-line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeremyhahn/go-psa-smoke/internal/cli"
)

func main() {
	// SIGINT/SIGTERM cancel the context, which kills any running
	// subprocess and lets the deferred workspace cleanup run before
	// the process exits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(cli.Execute(ctx))
}
