// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/gagliardetto/solana-go"

	"github.com/ava-labs/creditvm/pebble"
	"github.com/ava-labs/creditvm/trace"
)

const (
	Name = "creditvm"

	defaultContinuousProfilerFrequency = 1 * time.Minute
	defaultContinuousProfilerMaxFiles  = 10
	defaultDataDir                     = ".creditvm"
	defaultTokenDecimals               = 9
)

// DefaultProgramID is used when no program ID is configured.
var DefaultProgramID = solana.PublicKeyFromBytes(hashing.ComputeHash256([]byte(Name)))

type Config struct {
	// Base58 address the credit program runs under.
	ProgramID string `json:"programID"`

	// Storage
	DataDir string        `json:"dataDir"`
	Pebble  pebble.Config `json:"pebble"`

	// Reward token
	TokenDecimals uint8 `json:"tokenDecimals"`

	// Logging
	LogLevel        logging.Level `json:"logLevel"`
	LogDisplayLevel logging.Level `json:"logDisplayLevel"`
	LogDir          string        `json:"logDir"`

	// Tracing
	TraceEnabled    bool    `json:"traceEnabled"`
	TraceSampleRate float64 `json:"traceSampleRate"`
	TraceEndpoint   string  `json:"traceEndpoint"`

	// Profiling
	ContinuousProfilerDir string `json:"continuousProfilerDir"`

	// Metrics
	MetricsEnabled bool `json:"metricsEnabled"`

	loaded    bool
	programID solana.PublicKey
}

func New(b []byte) (*Config, error) {
	c := &Config{}
	c.setDefault()
	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
		c.loaded = true
	}

	c.programID = DefaultProgramID
	if len(c.ProgramID) > 0 {
		id, err := solana.PublicKeyFromBase58(c.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("invalid program ID %q: %w", c.ProgramID, err)
		}
		c.programID = id
	}
	return c, nil
}

func (c *Config) setDefault() {
	c.DataDir = defaultDataDir
	c.Pebble = pebble.NewDefaultConfig()
	c.TokenDecimals = defaultTokenDecimals
	c.LogLevel = logging.Info
	c.LogDisplayLevel = logging.Info
	c.TraceSampleRate = 1
	c.MetricsEnabled = true
}

func (c *Config) GetProgramID() solana.PublicKey { return c.programID }
func (c *Config) GetLogLevel() logging.Level     { return c.LogLevel }
func (c *Config) GetTraceConfig() *trace.Config {
	return &trace.Config{
		Enabled:         c.TraceEnabled,
		TraceSampleRate: c.TraceSampleRate,
		Endpoint:        c.TraceEndpoint,
		AppName:         Name,
		Agent:           c.programID.String(),
	}
}

func (c *Config) GetContinuousProfilerConfig() *profiler.Config {
	if len(c.ContinuousProfilerDir) == 0 {
		return &profiler.Config{Enabled: false}
	}
	return &profiler.Config{
		Enabled:     true,
		Dir:         c.ContinuousProfilerDir,
		Freq:        defaultContinuousProfilerFrequency,
		MaxNumFiles: defaultContinuousProfilerMaxFiles,
	}
}
func (c *Config) Loaded() bool { return c.loaded }
