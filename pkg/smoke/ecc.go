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
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-psa-smoke/pkg/parsec"
)

// testECC runs the ECC round trip: the daemon signs a fresh message,
// the signature is base64-decoded, and the external tool verifies it
// against the daemon-exported public key with a SHA-256 digest.
func (s *Suite) testECC(ctx context.Context, p parsec.Provider, tally *Tally) {
	s.printf("Checking ECC signing/verification\n")

	name := s.keyName(keyECC)
	defer s.deleteKey(ctx, p, name, tally)

	if !s.createKey(ctx, p, keyECC, name, tally) {
		s.printf("Public key for %q missing or empty, skipping round trip\n", name)
		tally.Skip(p, "ecc-round-trip", "exported public key missing or empty")
		return
	}

	message := fmt.Sprintf("%s PSA signature test (%s)",
		time.Now().Format(time.UnixDate), s.runID)
	msgPath, err := s.ws.WriteFile(name+".msg.txt", []byte(message))
	if err != nil {
		tally.Fail(p, "ecc-sign", err.Error())
		return
	}

	sigB64, err := s.client.Sign(ctx, p.ID, message, name)
	if err != nil {
		tally.Fail(p, "ecc-sign", err.Error())
		return
	}
	tally.Pass(p, "ecc-sign")

	rawSig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		tally.Fail(p, "ecc-signature-decode", err.Error())
		return
	}
	tally.Pass(p, "ecc-signature-decode")

	sigPath, err := s.ws.WriteFile(name+".sig.bin", rawSig)
	if err != nil {
		tally.Fail(p, "ecc-verify", err.Error())
		return
	}

	if err := s.ossl.VerifySHA256(ctx, s.ws.Path(name+".pem"), sigPath, msgPath); err != nil {
		tally.Fail(p, "ecc-verify", err.Error())
		return
	}
	tally.Pass(p, "ecc-verify")
}
