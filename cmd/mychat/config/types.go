// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"time"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/endpoint"
)

const (
	DefaultAPIBase      = "https://api.cloudflare.com/client/v4/accounts/" + endpoint.AccountPlaceholder
	DefaultHistoryPath  = "~/.mychat_history"
	DefaultConfigPath   = "~/.mychat/config.yaml"
	DefaultAccountIDEnv = "CLOUDFLARE_ACCOUNT_ID"
	DefaultAPITokenEnv  = "CLOUDFLARE_API_TOKEN"
	DefaultLogLevel     = "warn"
)

// MychatConfig is the full client configuration.
type MychatConfig struct {
	// Endpoint selects the request/response shape: "run" or "responses".
	Endpoint string `yaml:"endpoint" validate:"oneof=run responses"`

	// Model overrides the endpoint's default model when set.
	Model string `yaml:"model,omitempty" validate:"omitempty,model_id"`

	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`

	// APIBase may contain {account_id}, replaced with the account identifier.
	APIBase string `yaml:"api_base" validate:"required,startswith=http"`

	HistoryPath string `yaml:"history_path" validate:"required"`

	// Timeout bounds the whole request. Zero means none.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	Credentials CredentialsConfig `yaml:"credentials"`
	Log         LogConfig         `yaml:"log"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// CredentialsConfig names the environment variables holding credentials.
// The values themselves never live in the config file.
type CredentialsConfig struct {
	AccountIDEnv string `yaml:"account_id_env" validate:"required"`
	APITokenEnv  string `yaml:"api_token_env" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"` // e.g. ~/.mychat/logs
}

type TelemetryConfig struct {
	Trace   bool `yaml:"trace"`
	Metrics bool `yaml:"metrics"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() MychatConfig {
	return MychatConfig{
		Endpoint:    endpoint.NameRun,
		Temperature: endpoint.DefaultTemperature,
		APIBase:     DefaultAPIBase,
		HistoryPath: DefaultHistoryPath,
		Credentials: CredentialsConfig{
			AccountIDEnv: DefaultAccountIDEnv,
			APITokenEnv:  DefaultAPITokenEnv,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}
