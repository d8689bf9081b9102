// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/mychat/cmd/mychat/config"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/credentials"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/endpoint"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/session"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/telemetry"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/transcript"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/transport"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/util"
	"github.com/AleutianAI/mychat/pkg/logging"
	"github.com/AleutianAI/mychat/pkg/ux"
)

const usageLine = "mychat [flags] <message...>   (or pipe the message on stdin)"

// env is everything a run touches outside the process.
type env struct {
	stdin      io.Reader
	stdinPiped bool
	stdout     io.Writer
	stderr     io.Writer
	stderrTTY  bool
	getenv     func(string) string

	// dotEnv is loaded into the process environment first. Empty skips it.
	dotEnv string
}

// flagValues holds the parsed command-line flags.
type flagValues struct {
	configPath string
	endpoint   string
	model      string
	history    string
	logLevel   string
	logJSON    bool
	trace      bool
	metrics    bool
}

// newRootCmd builds the mychat command bound to e.
func newRootCmd(e *env) *cobra.Command {
	var flags flagValues

	cmd := &cobra.Command{
		Use:   "mychat [flags] <message...>",
		Short: "Send a message to a hosted LLM and stream the reply",
		Long: `mychat sends one message, together with the saved conversation, to a
Workers AI endpoint and prints the reply as it streams back. The turn is
appended to the history file when a reply arrives.

Flags are only read before the first word of the message.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, &flags, args)
		},
	}

	f := cmd.Flags()
	f.SetInterspersed(false)
	f.StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultConfigPath+")")
	f.StringVarP(&flags.endpoint, "endpoint", "e", "", "endpoint shape: "+joinNames())
	f.StringVarP(&flags.model, "model", "m", "", "model identifier (default depends on endpoint)")
	f.StringVar(&flags.history, "history", "", "history file (default "+config.DefaultHistoryPath+")")
	f.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&flags.logJSON, "log-json", false, "write logs as JSON")
	f.BoolVar(&flags.trace, "trace", false, "print trace spans to stderr")
	f.BoolVar(&flags.metrics, "metrics", false, "print session metrics to stderr")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return util.NewUsageError(err.Error())
	})
	return cmd
}

// run executes one chat turn. Checks happen in order: message, config,
// credentials. Nothing touches the network before all three pass.
func (e *env) run(cmd *cobra.Command, flags *flagValues, args []string) error {
	message, err := resolveMessage(e.stdin, e.stdinPiped, args)
	if err != nil {
		return err
	}

	cfg, err := e.loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Log.Dir,
		Service: "mychat",
		JSON:    cfg.Log.JSON,
		Output:  e.stderr,
	})
	defer logger.Close()

	creds, err := credentials.Load(credentials.Source{
		AccountIDEnv: cfg.Credentials.AccountIDEnv,
		APITokenEnv:  cfg.Credentials.APITokenEnv,
	}, e.getenv)
	if err != nil {
		return err
	}

	shape, err := endpoint.ByName(cfg.Endpoint)
	if err != nil {
		return util.NewConfigurationError("unknown endpoint", err)
	}

	tracerProvider, shutdown, err := telemetry.SetupTracing(cfg.Telemetry.Trace, e.stderr)
	if err != nil {
		return util.NewConfigurationError("cannot set up tracing", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Metrics {
		metrics = telemetry.NewMetrics()
		defer e.dumpMetrics(metrics, logger)
	}

	logger.Debug("configuration resolved",
		"endpoint", shape.Name(),
		"model", cfg.Model,
		"history", cfg.HistoryPath,
		"timeout", cfg.Timeout.String(),
	)

	var output session.Output = ux.NewWriterSink(e.stdout)
	if e.stderrTTY {
		spinner := ux.NewSpinner(e.stderr, "waiting for reply")
		spinner.Start()
		defer spinner.Stop()
		output = ux.NewSpinnerSink(ux.NewWriterSink(e.stdout), spinner)
	}

	controller := session.New(
		session.Settings{
			Shape:       shape,
			Base:        endpoint.ResolveBase(cfg.APIBase, creds.AccountID()),
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		},
		session.Deps{
			Store:       transcript.NewStore(cfg.HistoryPath, logger),
			Client:      transport.NewClient(cfg.Timeout, logger),
			Credentials: creds,
			Output:      output,
			Metrics:     metrics,
			Tracer:      tracerProvider,
			Log:         logger,
		},
	)

	_, err = controller.Run(cmd.Context(), message)
	return err
}

// loadConfig merges .env, file, environment and flags, then validates.
func (e *env) loadConfig(cmd *cobra.Command, flags *flagValues) (config.MychatConfig, error) {
	if e.dotEnv != "" {
		if err := config.LoadDotEnv(e.dotEnv); err != nil {
			return config.MychatConfig{}, err
		}
	}

	cfg, err := config.Load(config.LoadOptions{Path: flags.configPath, Getenv: e.getenv})
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("endpoint") {
		cfg.Endpoint = flags.endpoint
	}
	if changed("model") {
		cfg.Model = flags.model
	}
	if changed("history") {
		cfg.HistoryPath = config.ExpandHome(flags.history)
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-json") {
		cfg.Log.JSON = flags.logJSON
	}
	if changed("trace") {
		cfg.Telemetry.Trace = flags.trace
	}
	if changed("metrics") {
		cfg.Telemetry.Metrics = flags.metrics
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (e *env) dumpMetrics(metrics *telemetry.Metrics, logger *logging.Logger) {
	printer := ux.NewPrinter(e.stderr)
	printer.Title("mychat metrics")
	if err := metrics.WriteText(e.stderr); err != nil {
		logger.Warn("metrics dump failed", "error", err)
	}
}

// execute runs the command with args and returns the process exit code.
func execute(e *env, args []string) int {
	cmd := newRootCmd(e)
	cmd.SetArgs(args)
	cmd.SetIn(e.stdin)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		printer := ux.NewPrinter(e.stderr)
		printer.Error(err)
		if util.IsKind(err, util.KindUsage) {
			printer.Hint("usage: " + usageLine)
		}
	}
	return util.ExitCode(err)
}

func joinNames() string {
	return strings.Join(endpoint.Names(), ", ")
}
