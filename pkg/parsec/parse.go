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

package parsec

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Provider lines look like:
//
//	ID: 0x01 (Mbed Crypto provider)
//
// The id is hexadecimal; the display name sits between the first '('
// and the last ')' so names containing parentheses survive.
var providerIDRe = regexp.MustCompile(`^ID:\s*(?:0[xX])?([0-9a-fA-F]+)`)

// Opcode names are PSA operation identifiers such as PsaGenerateRandom.
var opcodeRe = regexp.MustCompile(`Psa[A-Za-z0-9]+`)

// parseProviders extracts (id, name) pairs from list-providers output,
// dropping the core pseudo provider.
func parseProviders(output string) ([]Provider, error) {
	var providers []Provider
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "ID:") {
			continue
		}
		p, err := parseProviderLine(line)
		if err != nil {
			return nil, err
		}
		if p.ID == CoreProviderID {
			continue
		}
		providers = append(providers, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan provider listing: %w", err)
	}
	return providers, nil
}

func parseProviderLine(line string) (Provider, error) {
	m := providerIDRe.FindStringSubmatch(line)
	if m == nil {
		return Provider{}, fmt.Errorf("malformed provider line: %q", line)
	}
	id, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return Provider{}, fmt.Errorf("malformed provider id in %q: %w", line, err)
	}

	open := strings.Index(line, "(")
	end := strings.LastIndex(line, ")")
	if open < 0 || end < open {
		return Provider{}, fmt.Errorf("provider line missing display name: %q", line)
	}

	return Provider{
		ID:   uint32(id),
		Name: line[open+1 : end],
	}, nil
}

// parseOpcodes collects every PSA operation name present in
// list-opcodes output.
func parseOpcodes(output string) Opcodes {
	ops := make(Opcodes)
	for _, name := range opcodeRe.FindAllString(output, -1) {
		ops[name] = true
	}
	return ops
}
