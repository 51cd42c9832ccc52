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

// Package config loads the harness configuration from an optional YAML
// file and the environment variables the original tooling established:
// PARSEC_SERVICE_ENDPOINT, PARSEC_TOOL, OPENSSL and RUST_LOG.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// DefaultEndpoint is the daemon's well-known local socket.
const DefaultEndpoint = "unix:/run/parsec/parsec.sock"

const (
	// DefaultLogLevel is forwarded to the daemon client subprocess.
	DefaultLogLevel = "info"
	// DebugLogLevel replaces the default under the -d flag.
	DebugLogLevel = "trace"
)

// Config holds the full harness configuration.
type Config struct {
	// ServiceEndpoint is the daemon socket address, forwarded to every
	// daemon client invocation as PARSEC_SERVICE_ENDPOINT.
	ServiceEndpoint string `yaml:"service_endpoint"`

	// ToolPath overrides the PATH lookup of the daemon CLI tool.
	ToolPath string `yaml:"tool_path"`

	// OpenSSLPath overrides the PATH lookup of the crypto tool.
	OpenSSLPath string `yaml:"openssl_path"`

	// LogLevel is forwarded to the daemon client as RUST_LOG.
	LogLevel string `yaml:"log_level"`

	// Debug enables verbose tracing of every executed command.
	Debug bool `yaml:"debug"`
}

// Load builds the configuration. Precedence, highest first: explicit
// config file values, environment variables, defaults. The debug flag
// only moves the *default* log level to trace; an explicit RUST_LOG
// still wins, matching the original harness contract.
func Load(configFile string, debug bool) (*Config, error) {
	v := viper.New()

	logDefault := DefaultLogLevel
	if debug {
		logDefault = DebugLogLevel
	}
	v.SetDefault("service_endpoint", DefaultEndpoint)
	v.SetDefault("tool_path", "")
	v.SetDefault("openssl_path", "")
	v.SetDefault("log_level", logDefault)
	v.SetDefault("debug", debug)

	// Bind the environment variable names the external tools already
	// understand rather than inventing a prefixed scheme.
	for key, env := range map[string]string{
		"service_endpoint": "PARSEC_SERVICE_ENDPOINT",
		"tool_path":        "PARSEC_TOOL",
		"openssl_path":     "OPENSSL",
		"log_level":        "RUST_LOG",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return &Config{
		ServiceEndpoint: v.GetString("service_endpoint"),
		ToolPath:        v.GetString("tool_path"),
		OpenSSLPath:     v.GetString("openssl_path"),
		LogLevel:        v.GetString("log_level"),
		Debug:           v.GetBool("debug"),
	}, nil
}
