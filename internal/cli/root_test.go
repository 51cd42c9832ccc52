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

package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeremyhahn/go-psa-smoke/pkg/parsec"
)

func discovered() []parsec.Provider {
	return []parsec.Provider{
		{ID: 1, Name: "Mbed Crypto provider"},
		{ID: 2, Name: "PKCS #11 provider"},
	}
}

func TestFilterProvidersAll(t *testing.T) {
	assert.Equal(t, discovered(), filterProviders(discovered(), -1))
}

func TestFilterProvidersSingleMatch(t *testing.T) {
	matched := filterProviders(discovered(), 2)
	assert.Len(t, matched, 1)
	assert.Equal(t, uint32(2), matched[0].ID)
}

// A filter that matches nothing yields zero test rounds; the run then
// exits 0 as a vacuous success.
func TestFilterProvidersNoMatch(t *testing.T) {
	assert.Empty(t, filterProviders(discovered(), 5))
}

func TestFilterProvidersEmptyDiscovery(t *testing.T) {
	assert.Empty(t, filterProviders(nil, -1))
	assert.Empty(t, filterProviders(nil, 1))
}

// Anything the parser does not recognize earns the usage text and exit
// 0; exit 1 stays reserved for preflight failures.
func TestExecuteUnknownFlagExitsZero(t *testing.T) {
	rootCmd.SetArgs([]string{"--definitely-not-a-flag"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Equal(t, 0, Execute(context.Background()))
}

func TestExecuteUnexpectedArgumentExitsZero(t *testing.T) {
	rootCmd.SetArgs([]string{"bogus-argument"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Equal(t, 0, Execute(context.Background()))
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"provider", "debug", "config", "report"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "flag %s must exist", name)
	}
	assert.Equal(t, "p", rootCmd.Flags().Lookup("provider").Shorthand)
	assert.Equal(t, "d", rootCmd.Flags().Lookup("debug").Shorthand)
}
