// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/creditvm/config"
	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/pebble"
	"github.com/ava-labs/creditvm/program"
	"github.com/ava-labs/creditvm/storage"
	"github.com/ava-labs/creditvm/token"
	"github.com/ava-labs/creditvm/utils"

	ctrace "github.com/ava-labs/creditvm/trace"
)

const (
	logsFolder    = "logs"
	simulatorName = "simulator"
)

type simulator struct {
	// flags
	configPath  string
	logLevel    string
	dataDir     string
	displayLogs bool
	cleanup     bool

	cfg        *config.Config
	logFactory *logFactory
	log        logging.Logger
	gatherer   metrics.MultiGatherer
	db         *pebble.Database
	tracer     trace.Tracer
	profiler   profiler.ContinuousProfiler
	clock      *clockwork.FakeClock
	runtime    *host.Runtime
	program    *program.Program
	tokens     *token.Service
}

func NewRootCmd() *cobra.Command {
	s := &simulator{}
	cmd := &cobra.Command{
		Use:   "credit-simulator",
		Short: "Credit ledger simulator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cobra.EnablePrefixMatching = true
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.PersistentFlags().StringVar(&s.configPath, "config", "", "path to a JSON config file")
	cmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "log level (overrides config)")
	cmd.PersistentFlags().StringVar(&s.dataDir, "data-dir", "", "directory holding the account database (overrides config)")
	cmd.PersistentFlags().BoolVar(&s.displayLogs, "display-logs", false, "write logs to stderr")
	cmd.PersistentFlags().BoolVar(&s.cleanup, "cleanup", false, "remove the data directory on exit")

	cmd.AddCommand(
		newRunCmd(s),
		newRecordCmd(s),
	)
	return cmd
}

// Init opens every resource the simulator needs. [Close] releases them.
func (s *simulator) Init() error {
	var b []byte
	if len(s.configPath) > 0 {
		var err error
		b, err = os.ReadFile(s.configPath)
		if err != nil {
			return err
		}
	}
	cfg, err := config.New(b)
	if err != nil {
		return err
	}
	if len(s.dataDir) > 0 {
		cfg.DataDir = s.dataDir
	}
	if len(s.logLevel) > 0 {
		cfg.LogLevel, err = logging.ToLevel(s.logLevel)
		if err != nil {
			return err
		}
		cfg.LogDisplayLevel = cfg.LogLevel
	}
	if len(cfg.LogDir) == 0 {
		cfg.LogDir = path.Join(cfg.DataDir, logsFolder)
	}
	s.cfg = cfg

	loggingConfig := logging.Config{}
	loggingConfig.LogLevel = cfg.LogLevel
	loggingConfig.DisplayLevel = cfg.LogDisplayLevel
	loggingConfig.Directory = cfg.LogDir
	loggingConfig.LogFormat = logging.JSON
	loggingConfig.DisableWriterDisplaying = !s.displayLogs
	s.logFactory = newLogFactory(loggingConfig)
	s.log, err = s.logFactory.Make(simulatorName)
	if err != nil {
		s.logFactory.Close()
		return err
	}

	s.gatherer = metrics.NewPrefixGatherer()
	s.db, err = storage.Open(cfg.Pebble, cfg.DataDir, storage.AccountsNamespace, s.gatherer)
	if err != nil {
		return err
	}
	s.tracer, err = ctrace.New(cfg.GetTraceConfig())
	if err != nil {
		return err
	}
	if pc := cfg.GetContinuousProfilerConfig(); pc.Enabled {
		s.profiler = profiler.NewContinuous(pc.Dir, pc.Freq, pc.MaxNumFiles)
		go s.profiler.Dispatch() //nolint:errcheck
	}

	s.clock = clockwork.NewFakeClockAt(utils.StartOfDay(0))
	s.runtime = host.NewRuntime(s.log, s.tracer, s.clock, s.db)
	s.tokens = token.New()
	var registry *prometheus.Registry
	s.program, registry, err = program.New(s.log, cfg.GetProgramID(), s.tokens)
	if err != nil {
		return err
	}
	if cfg.MetricsEnabled {
		if err := s.gatherer.Register("credit", registry); err != nil {
			return err
		}
	}
	if err := s.runtime.Register(s.tokens); err != nil {
		return err
	}
	if err := s.runtime.Register(s.program); err != nil {
		return err
	}

	s.log.Info("simulator initialized",
		zap.Stringer("program", cfg.GetProgramID()),
		zap.String("dataDir", cfg.DataDir),
		zap.Stringer("logLevel", cfg.LogLevel),
	)
	return nil
}

func (s *simulator) Close() {
	if s.profiler != nil {
		s.profiler.Shutdown()
	}
	if s.tracer != nil {
		if err := s.tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close tracer: %s\n", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close account db: %s\n", err)
		}
	}
	if s.logFactory != nil {
		s.logFactory.Close()
	}
	if s.cleanup && s.cfg != nil {
		if err := os.RemoveAll(s.cfg.DataDir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove simulator directory: %s\n", err)
		}
	}
}
