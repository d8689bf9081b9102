// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package credentials loads the account identifier and API token a chat
// turn needs and keeps the token sealed between load and use.
package credentials

import (
	"fmt"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/util"
)

var (
	validate     = validator.New(validator.WithRequiredStructEnabled())
	interruptSet sync.Once
)

// Credentials holds the two values every request needs.
//
// # Description
//
// The account identifier is not secret and is kept as a plain string.
// The API token is sealed in a memguard Enclave (encrypted, outside the
// Go heap) and only decrypted for the moment the Authorization header
// is built.
//
// # Thread Safety
//
// Safe for concurrent use after construction.
type Credentials struct {
	accountID string
	token     *memguard.Enclave
}

// Source names the environment variables the credentials come from.
type Source struct {
	AccountIDEnv string
	APITokenEnv  string
}

// envValues is validated before anything is sealed.
type envValues struct {
	AccountID string `validate:"required"`
	APIToken  string `validate:"required"`
}

// Load reads both credentials through getenv.
//
// # Description
//
// Values are trimmed of surrounding whitespace. If either is empty the
// result is a configuration error naming the missing variable(s); no
// network call should follow.
//
// # Inputs
//
//   - src: Variable names to read
//   - getenv: Lookup function (os.Getenv in production)
//
// # Outputs
//
//   - *Credentials: Loaded credentials with the token sealed
//   - error: *util.ChatError of KindConfiguration when a value is missing
//
// # Example
//
//	creds, err := credentials.Load(credentials.Source{
//	    AccountIDEnv: "CLOUDFLARE_ACCOUNT_ID",
//	    APITokenEnv:  "CLOUDFLARE_API_TOKEN",
//	}, os.Getenv)
func Load(src Source, getenv func(string) string) (*Credentials, error) {
	values := envValues{
		AccountID: strings.TrimSpace(getenv(src.AccountIDEnv)),
		APIToken:  strings.TrimSpace(getenv(src.APITokenEnv)),
	}

	if err := validate.Struct(values); err != nil {
		var missing []string
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				switch fe.Field() {
				case "AccountID":
					missing = append(missing, src.AccountIDEnv)
				case "APIToken":
					missing = append(missing, src.APITokenEnv)
				}
			}
		}
		if len(missing) == 0 {
			return nil, util.NewConfigurationError("invalid credentials", err)
		}
		return nil, util.NewConfigurationError(
			fmt.Sprintf("missing required environment variable(s): %s", strings.Join(missing, ", ")), nil)
	}

	interruptSet.Do(memguard.CatchInterrupt)

	return &Credentials{
		accountID: values.AccountID,
		token:     memguard.NewEnclave([]byte(values.APIToken)),
	}, nil
}

// AccountID returns the account identifier.
func (c *Credentials) AccountID() string {
	return c.accountID
}

// Authorization returns the "Bearer <token>" header value.
//
// The enclave is opened into a locked buffer, copied into the header
// string and destroyed again before returning.
func (c *Credentials) Authorization() (string, error) {
	buf, err := c.token.Open()
	if err != nil {
		return "", fmt.Errorf("open api token: %w", err)
	}
	defer buf.Destroy()
	return "Bearer " + string(buf.Bytes()), nil
}

// Purge wipes all memguard-managed memory. Called once before exit.
func Purge() {
	memguard.Purge()
}
