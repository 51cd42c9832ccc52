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

// Package openssl wraps the external general-purpose crypto tool used
// for the halves of each round trip that must be independent of the
// daemon: RSA public-key encryption and digest-based signature
// verification. Base64 plumbing is done in-process; only the
// cryptographic primitives are delegated.
package openssl

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/jeremyhahn/go-psa-smoke/pkg/logging"
	"github.com/jeremyhahn/go-psa-smoke/pkg/runner"
)

// OpenSSL invokes the external crypto tool.
type OpenSSL struct {
	path   string
	runner runner.Runner
	log    *logging.Logger
	out    io.Writer
}

// New creates a wrapper around the tool at path.
func New(path string, r runner.Runner, log *logging.Logger) *OpenSSL {
	return &OpenSSL{
		path:   path,
		runner: r,
		log:    log,
		out:    os.Stdout,
	}
}

// SetOutput redirects streamed tool output.
func (o *OpenSSL) SetOutput(w io.Writer) {
	o.out = w
}

// Path returns the resolved tool path.
func (o *OpenSSL) Path() string {
	return o.path
}

func (o *OpenSSL) run(ctx context.Context, args ...string) error {
	o.log.Debugf("exec: %s %s", o.path, strings.Join(args, " "))
	return o.runner.Run(ctx, runner.Command{
		Name:   o.path,
		Args:   args,
		Stdout: o.out,
	})
}

// EncryptRSA encrypts plainPath with the PEM public key at pubKeyPath,
// writing the raw ciphertext to cipherPath. PKCS#1 v1.5 padding, the
// daemon's default scheme for RSA encryption keys.
func (o *OpenSSL) EncryptRSA(ctx context.Context, pubKeyPath, plainPath, cipherPath string) error {
	return o.run(ctx,
		"pkeyutl", "-encrypt", "-pubin",
		"-inkey", pubKeyPath,
		"-in", plainPath,
		"-out", cipherPath)
}

// VerifySHA256 verifies the raw signature at sigPath over msgPath
// against the PEM public key at pubKeyPath, using a SHA-256 digest.
// Success is determined solely by the tool's exit status.
func (o *OpenSSL) VerifySHA256(ctx context.Context, pubKeyPath, sigPath, msgPath string) error {
	return o.run(ctx,
		"dgst", "-sha256",
		"-verify", pubKeyPath,
		"-signature", sigPath,
		msgPath)
}
