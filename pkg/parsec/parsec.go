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

// Package parsec is a typed client for the PSA crypto daemon's
// command-line tool. Every daemon operation the smoke suite needs is a
// method here, so the fragile output parsing lives in exactly one
// place and the rest of the harness works with structured values.
package parsec

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jeremyhahn/go-psa-smoke/pkg/logging"
	"github.com/jeremyhahn/go-psa-smoke/pkg/runner"
)

// CoreProviderID is the reserved id of the daemon's core pseudo
// provider. It offers no cryptographic operations and is filtered out
// of every provider enumeration.
const CoreProviderID uint32 = 0

// OpGenerateRandom is the opcode name a provider advertises when it
// supports random-number generation.
const OpGenerateRandom = "PsaGenerateRandom"

// Provider identifies one backend registered with the daemon.
type Provider struct {
	ID   uint32
	Name string
}

// String renders the provider the way run output refers to it.
func (p Provider) String() string {
	return fmt.Sprintf("%s (id %d)", p.Name, p.ID)
}

// Opcodes is the set of operation names a provider advertises.
type Opcodes map[string]bool

// Client drives the daemon's CLI tool. The service endpoint and log
// level are forwarded to every subprocess through its environment.
type Client struct {
	tool     string
	endpoint string
	logLevel string
	runner   runner.Runner
	log      *logging.Logger
	out      io.Writer
}

// New creates a client for the daemon CLI at tool, talking to the
// service at endpoint.
func New(tool, endpoint, logLevel string, r runner.Runner, log *logging.Logger) *Client {
	return &Client{
		tool:     tool,
		endpoint: endpoint,
		logLevel: logLevel,
		runner:   r,
		log:      log,
		out:      os.Stdout,
	}
}

// SetOutput redirects the streamed output of daemon invocations.
// Narrative-style commands (create, delete, random) write there.
func (c *Client) SetOutput(w io.Writer) {
	c.out = w
}

// Tool returns the resolved daemon CLI path.
func (c *Client) Tool() string {
	return c.tool
}

func (c *Client) command(provider uint32, args ...string) runner.Command {
	if provider != CoreProviderID {
		args = append(args, "-p", strconv.FormatUint(uint64(provider), 10))
	}
	c.log.Debugf("exec: %s %s", c.tool, strings.Join(args, " "))
	return runner.Command{
		Name: c.tool,
		Args: args,
		Env: []string{
			"PARSEC_SERVICE_ENDPOINT=" + c.endpoint,
			"RUST_LOG=" + c.logLevel,
		},
		Stdout: c.out,
	}
}

// run streams the command's output inline.
func (c *Client) run(ctx context.Context, provider uint32, args ...string) error {
	return c.runner.Run(ctx, c.command(provider, args...))
}

// capture runs the command with stdout captured.
func (c *Client) capture(ctx context.Context, provider uint32, args ...string) ([]byte, error) {
	return runner.Output(ctx, c.runner, c.command(provider, args...))
}

// Ping probes daemon liveness. Failure here is fatal to the run.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.run(ctx, CoreProviderID, "ping"); err != nil {
		return fmt.Errorf("daemon ping failed: %w", err)
	}
	return nil
}

// ListProviders enumerates the daemon's registered providers, with the
// core pseudo provider filtered out. An empty result is not an error.
func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	out, err := c.capture(ctx, CoreProviderID, "list-providers")
	if err != nil {
		return nil, fmt.Errorf("list-providers failed: %w", err)
	}
	return parseProviders(string(out))
}

// ListOpcodes returns the operation names advertised by a provider.
func (c *Client) ListOpcodes(ctx context.Context, provider uint32) (Opcodes, error) {
	out, err := c.capture(ctx, provider, "list-opcodes")
	if err != nil {
		return nil, fmt.Errorf("list-opcodes failed: %w", err)
	}
	return parseOpcodes(string(out)), nil
}

// ListKeys returns the daemon's key listing as raw text, echoing it to
// the client's output writer so the listing stays visible in the run
// transcript. The suite only checks that a created key name is present.
func (c *Client) ListKeys(ctx context.Context, provider uint32) (string, error) {
	out, err := c.capture(ctx, provider, "list-keys")
	if err != nil {
		return "", fmt.Errorf("list-keys failed: %w", err)
	}
	_, _ = c.out.Write(out)
	return string(out), nil
}

// CreateRSAKey creates a named RSA key pair on the daemon.
func (c *Client) CreateRSAKey(ctx context.Context, provider uint32, name string) error {
	return c.run(ctx, provider, "create-rsa-key", "--key-name", name)
}

// CreateECCKey creates a named ECC signing key pair on the daemon.
func (c *Client) CreateECCKey(ctx context.Context, provider uint32, name string) error {
	return c.run(ctx, provider, "create-ecc-key", "--key-name", name)
}

// ExportPublicKey returns the PEM-encoded public half of a key.
func (c *Client) ExportPublicKey(ctx context.Context, provider uint32, name string) ([]byte, error) {
	out, err := c.capture(ctx, provider, "export-public-key", "--key-name", name)
	if err != nil {
		return nil, fmt.Errorf("export-public-key %s failed: %w", name, err)
	}
	return out, nil
}

// GenerateRandom asks the daemon for nbytes of randomness, streamed to
// the run output.
func (c *Client) GenerateRandom(ctx context.Context, provider uint32, nbytes int) error {
	return c.run(ctx, provider, "generate-random", "--nbytes", strconv.Itoa(nbytes))
}

// Decrypt asks the daemon to decrypt a base64 ciphertext with the
// named private key. The tool prints the recovered plaintext followed
// by a newline; the trailing newline is stripped so callers compare
// against the exact original bytes.
func (c *Client) Decrypt(ctx context.Context, provider uint32, ciphertextB64, name string) ([]byte, error) {
	out, err := c.capture(ctx, provider, "decrypt", ciphertextB64, "--key-name", name)
	if err != nil {
		return nil, fmt.Errorf("decrypt with %s failed: %w", name, err)
	}
	return trimTrailingNewline(out), nil
}

// Sign asks the daemon to sign a message with the named key and
// returns the base64-encoded signature.
func (c *Client) Sign(ctx context.Context, provider uint32, message, name string) (string, error) {
	out, err := c.capture(ctx, provider, "sign", message, "--key-name", name)
	if err != nil {
		return "", fmt.Errorf("sign with %s failed: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// DeleteKey removes a key from the daemon.
func (c *Client) DeleteKey(ctx context.Context, provider uint32, name string) error {
	return c.run(ctx, provider, "delete-key", "--key-name", name)
}

func trimTrailingNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
		if n := len(b); n > 0 && b[n-1] == '\r' {
			b = b[:n-1]
		}
	}
	return b
}
