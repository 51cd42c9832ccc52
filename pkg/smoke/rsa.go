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
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-psa-smoke/pkg/parsec"
)

// testRSA runs the RSA round trip: the external tool encrypts a fresh
// plaintext with the daemon-exported public key, the daemon decrypts
// it, and the result must match byte for byte. The key is deleted at
// the end whatever happened in between.
func (s *Suite) testRSA(ctx context.Context, p parsec.Provider, tally *Tally) {
	s.printf("Checking RSA encryption/decryption\n")

	name := s.keyName(keyRSA)
	defer s.deleteKey(ctx, p, name, tally)

	if !s.createKey(ctx, p, keyRSA, name, tally) {
		s.printf("Public key for %q missing or empty, skipping round trip\n", name)
		tally.Skip(p, "rsa-round-trip", "exported public key missing or empty")
		return
	}

	plaintext := fmt.Sprintf("%s PSA decryption test (%s)",
		time.Now().Format(time.UnixDate), s.runID)
	plainPath, err := s.ws.WriteFile(name+".plain.txt", []byte(plaintext))
	if err != nil {
		tally.Fail(p, "rsa-encrypt", err.Error())
		return
	}

	cipherName := name + ".enc"
	if err := s.ossl.EncryptRSA(ctx, s.ws.Path(name+".pem"), plainPath, s.ws.Path(cipherName)); err != nil {
		tally.Fail(p, "rsa-encrypt", err.Error())
		return
	}
	tally.Pass(p, "rsa-encrypt")

	ciphertext, err := s.ws.ReadFile(cipherName)
	if err != nil {
		tally.Fail(p, "rsa-decrypt", fmt.Sprintf("ciphertext artifact unreadable: %v", err))
		return
	}

	decrypted, err := s.client.Decrypt(ctx, p.ID,
		base64.StdEncoding.EncodeToString(ciphertext), name)
	if err != nil {
		tally.Fail(p, "rsa-decrypt", err.Error())
		return
	}
	tally.Pass(p, "rsa-decrypt")

	if !bytes.Equal(decrypted, []byte(plaintext)) {
		tally.Fail(p, "rsa-plaintext-match",
			fmt.Sprintf("decrypted %q, expected %q", decrypted, plaintext))
		return
	}
	tally.Pass(p, "rsa-plaintext-match")
}
