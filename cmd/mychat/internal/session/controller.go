// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session runs one chat turn from message to persisted transcript.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/endpoint"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/stream"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/telemetry"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/transcript"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/transport"
	"github.com/AleutianAI/mychat/cmd/mychat/internal/util"
	"github.com/AleutianAI/mychat/pkg/logging"
	"github.com/AleutianAI/mychat/pkg/ux"
)

// =============================================================================
// Collaborators
// =============================================================================

// Poster sends a request body and returns the live reply.
type Poster interface {
	Post(ctx context.Context, url string, body []byte, authorization string) (*transport.Response, error)
}

// Authorizer yields the Authorization header value.
type Authorizer interface {
	Authorization() (string, error)
}

// Output is a sink that can also end a reply.
type Output interface {
	ux.Sink
	Finish() error
}

// =============================================================================
// Controller
// =============================================================================

// Settings fix what a turn talks to.
type Settings struct {
	Shape endpoint.Shape

	// Base is the API root with the account already substituted.
	Base string

	// Model overrides the shape's default when non-empty.
	Model string

	Temperature float64
}

// Deps are the controller's collaborators. Metrics, Tracer and Log may
// be nil.
type Deps struct {
	Store       *transcript.Store
	Client      Poster
	Credentials Authorizer
	Output      Output
	Metrics     *telemetry.Metrics
	Tracer      trace.TracerProvider
	Log         *logging.Logger
}

// Outcome describes a completed turn.
type Outcome struct {
	SessionID string
	Text      string
	Streamed  bool
}

// Controller orchestrates a single chat turn.
//
// # Description
//
// Run loads history, builds the request, sends it, decodes the stream,
// falls back to a buffered parse when nothing streamed, and on success
// appends the user and assistant messages to the transcript. Every
// failure leaves the transcript untouched.
//
// # Thread Safety
//
// Not safe for concurrent use. One controller runs one turn at a time.
type Controller struct {
	settings Settings
	deps     Deps
	tracer   trace.Tracer
}

// New creates a controller.
func New(settings Settings, deps Deps) *Controller {
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	provider := deps.Tracer
	if provider == nil {
		provider = noop.NewTracerProvider()
	}
	return &Controller{
		settings: settings,
		deps:     deps,
		tracer:   provider.Tracer("github.com/AleutianAI/mychat/session"),
	}
}

// Run performs one turn for message.
//
// # Description
//
// Text reaches Output while it streams. A transport failure or a body
// that ends early is logged and treated as end of stream, so a turn that
// produced no text ends with an EmptyResponseError whatever the cause.
//
// # Inputs
//
//   - ctx: Request context
//   - message: The user's message, already resolved and non-empty
//
// # Outputs
//
//   - Outcome: Session id, reply text and whether the reply streamed
//   - error: *util.ChatError (KindEndpoint, KindEmptyResponse,
//     KindConfiguration) or an output/persistence failure
func (c *Controller) Run(ctx context.Context, message string) (Outcome, error) {
	outcome := Outcome{SessionID: uuid.NewString()}
	log := c.deps.Log.With("session_id", outcome.SessionID)

	ctx, span := c.tracer.Start(ctx, "chat.turn", trace.WithAttributes(
		attribute.String("session.id", outcome.SessionID),
		attribute.String("endpoint.shape", c.settings.Shape.Name()),
	))
	defer span.End()

	fail := func(err error) (Outcome, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return outcome, err
	}

	history := c.deps.Store.Load()
	user := transcript.UserMessage(message)
	req := endpoint.Build(c.settings.Shape, c.settings.Base, history, user, c.settings.Model, c.settings.Temperature)
	span.SetAttributes(
		attribute.Int("transcript.lines", len(history)),
		attribute.Int("request.bytes", len(req.Body)),
	)
	log.Info("sending chat request", "url", req.URL, "history_lines", len(history))

	authorization, err := c.deps.Credentials.Authorization()
	if err != nil {
		return fail(util.NewConfigurationError("cannot read API token", err))
	}

	decoder := stream.NewDecoder(c.settings.Shape, c.deps.Output, c.deps.Metrics, log)

	text, err := c.exchange(ctx, log, decoder, req, authorization, &outcome)
	if err != nil {
		return fail(err)
	}
	if text == "" {
		return fail(util.NewEmptyResponseError())
	}
	outcome.Text = text

	if err := c.deps.Output.Finish(); err != nil {
		return fail(fmt.Errorf("write reply: %w", err))
	}

	if err := c.deps.Store.Append(user, transcript.AssistantMessage(text)); err != nil {
		return fail(fmt.Errorf("save transcript: %w", err))
	}

	span.SetAttributes(
		attribute.Bool("reply.streamed", outcome.Streamed),
		attribute.Int("reply.bytes", len(text)),
	)
	log.Info("turn complete", "streamed", outcome.Streamed, "reply_bytes", len(text))
	return outcome, nil
}

// exchange posts the request and decodes the reply into text.
//
// Only endpoint errors and output failures are returned; transport and
// read failures are logged and yield whatever text was decoded.
func (c *Controller) exchange(
	ctx context.Context,
	log *logging.Logger,
	decoder *stream.Decoder,
	req endpoint.Request,
	authorization string,
	outcome *Outcome,
) (string, error) {
	resp, err := c.deps.Client.Post(ctx, req.URL, req.Body, authorization)
	if err != nil {
		log.Warn("request failed", "error", err)
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("endpoint returned non-success status", "status", resp.StatusCode)
	}

	result, err := decoder.Decode(ctx, resp.Body)
	if err != nil {
		if errors.Is(err, stream.ErrOutput) {
			return "", err
		}
		log.Warn("reply ended early", "error", err, "fragments", result.Fragments)
	}
	outcome.Streamed = result.Streamed
	log.Debug("stream decoded",
		"streamed", result.Streamed,
		"data_frames", result.DataFrames,
		"fragments", result.Fragments,
	)

	if result.Streamed {
		return result.Text, nil
	}
	return decoder.Fallback(result.Raw)
}
