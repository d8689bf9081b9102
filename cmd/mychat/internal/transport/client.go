// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transport sends a chat request and hands back the live body.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AleutianAI/mychat/pkg/logging"
)

// Response is the transport's view of a reply: status plus an unread body.
//
// The caller owns Body and must close it.
type Response struct {
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
}

// Client posts JSON requests and asks for an event stream back.
//
// # Description
//
// The underlying http.Client uses an otelhttp transport, so each call
// produces a client span under whatever tracer provider is installed.
// A zero timeout means none: the read blocks until the server closes.
//
// # Thread Safety
//
// Safe for concurrent use.
type Client struct {
	http *http.Client
	log  *logging.Logger
}

// NewClient creates a transport client.
func NewClient(timeout time.Duration, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// Post sends body to url with the chat headers.
//
// # Description
//
// Sets Authorization, Content-Type: application/json and
// Accept: text/event-stream. A non-2xx status is not an error here:
// error replies carry a JSON body the decoders need to see, so the body
// is always returned for the caller to read.
//
// # Inputs
//
//   - ctx: Request context
//   - url: Target endpoint
//   - body: JSON request body
//   - authorization: Full Authorization header value ("Bearer ...")
//
// # Outputs
//
//   - *Response: Status and live body (caller closes)
//   - error: Request construction or transport failure (dial, TLS, reset)
func (c *Client) Post(ctx context.Context, url string, body []byte, authorization string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}

	c.log.Info("response headers received",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}
