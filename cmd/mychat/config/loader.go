// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the mychat configuration.
//
// Sources, lowest precedence first: built-in defaults, the yaml file,
// MYCHAT_* environment variables, then command-line flags (applied by the
// caller before Validate).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/util"
	"github.com/AleutianAI/mychat/pkg/validation"
)

// Environment overrides.
const (
	EnvEndpoint = "MYCHAT_ENDPOINT"
	EnvModel    = "MYCHAT_MODEL"
	EnvHistory  = "MYCHAT_HISTORY"
	EnvAPIBase  = "MYCHAT_API_BASE"
	EnvLogLevel = "MYCHAT_LOG_LEVEL"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("model_id", func(fl validator.FieldLevel) bool {
		return validation.ValidateModel(fl.Field().String()) == nil
	})
	if err != nil {
		panic(err)
	}
	return v
}

// LoadOptions control where Load looks.
type LoadOptions struct {
	// Path is the yaml file. Empty means DefaultConfigPath, which may be
	// absent. An explicit Path must exist.
	Path string

	// Getenv reads environment overrides. Nil means os.Getenv.
	Getenv func(string) string
}

// Load builds the configuration from defaults, file and environment.
//
// # Description
//
// The result is not yet validated: flags still have to be applied on
// top. Paths are returned with "~" already expanded.
//
// # Outputs
//
//   - MychatConfig: Merged configuration
//   - error: *util.ChatError of KindConfiguration on an unreadable or
//     unparsable file
//
// # Example
//
//	cfg, err := config.Load(config.LoadOptions{Path: flagConfig})
//	if flags.Changed("model") {
//	    cfg.Model = model
//	}
//	err = cfg.Validate()
func Load(opts LoadOptions) (MychatConfig, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := DefaultConfig()

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	if err := readFile(ExpandHome(path), explicit, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg, getenv)
	cfg.HistoryPath = ExpandHome(cfg.HistoryPath)
	cfg.Log.Dir = ExpandHome(cfg.Log.Dir)
	return cfg, nil
}

// LoadDotEnv loads path (usually ".env") into the process environment.
//
// Variables already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return util.NewConfigurationError(fmt.Sprintf("cannot load %s", path), err)
	}
	return nil
}

// Validate checks the configuration once every source has been applied.
func (c *MychatConfig) Validate() error {
	c.Endpoint = strings.ToLower(strings.TrimSpace(c.Endpoint))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Model = strings.TrimSpace(c.Model)

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return util.NewConfigurationError("invalid configuration", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return util.NewConfigurationError("invalid configuration: "+strings.Join(problems, "; "), nil)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func readFile(path string, mustExist bool, cfg *MychatConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return nil
		}
		return util.NewConfigurationError(fmt.Sprintf("cannot read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return util.NewConfigurationError(fmt.Sprintf("cannot parse config file %s", path), err)
	}
	return nil
}

func applyEnv(cfg *MychatConfig, getenv func(string) string) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvEndpoint, &cfg.Endpoint},
		{EnvModel, &cfg.Model},
		{EnvHistory, &cfg.HistoryPath},
		{EnvAPIBase, &cfg.APIBase},
		{EnvLogLevel, &cfg.Log.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(getenv(o.key)); v != "" {
			*o.target = v
		}
	}
}

// describe turns a validator failure into "<yaml key> <problem>".
func describe(fe validator.FieldError) string {
	key := yamlKey(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fmt.Sprint(fe.Value()))
	case "gte", "lte":
		return fmt.Sprintf("%s must be %s %s", key, fe.Tag(), fe.Param())
	case "model_id":
		return fmt.Sprintf("%s %q is not a valid model identifier", key, fmt.Sprint(fe.Value()))
	case "startswith":
		return fmt.Sprintf("%s must start with %q", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", key, fe.Tag())
	}
}

var yamlKeys = map[string]string{
	"Endpoint":     "endpoint",
	"Model":        "model",
	"Temperature":  "temperature",
	"APIBase":      "api_base",
	"HistoryPath":  "history_path",
	"Timeout":      "timeout",
	"Credentials":  "credentials",
	"AccountIDEnv": "account_id_env",
	"APITokenEnv":  "api_token_env",
	"Log":          "log",
	"Level":        "level",
	"Telemetry":    "telemetry",
}

// yamlKey maps "MychatConfig.Log.Level" to "log.level".
func yamlKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if k, ok := yamlKeys[p]; ok {
			parts[i] = k
		}
	}
	return strings.Join(parts, ".")
}
