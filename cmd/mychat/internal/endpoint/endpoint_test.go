// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package endpoint

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/mychat/cmd/mychat/internal/transcript"
)

const testBase = "https://api.example.test/client/v4/accounts/acct"

// =============================================================================
// Shape Registry Tests
// =============================================================================

func TestByName(t *testing.T) {
	run, err := ByName("run")
	require.NoError(t, err)
	assert.Equal(t, NameRun, run.Name())

	responses, err := ByName(" Responses ")
	require.NoError(t, err)
	assert.Equal(t, NameResponses, responses.Name())

	_, err = ByName("chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "responses, run")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"responses", "run"}, Names())
}

// =============================================================================
// Stream Extraction Tests
// =============================================================================

func TestRunShape_StreamText(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"string response", `{"response":"Hello"}`, "Hello"},
		{"numeric response ignored", `{"response":42}`, ""},
		{"null response", `{"response":null}`, ""},
		{"missing response", `{"usage":{"total_tokens":3}}`, ""},
		{"escaped text", `{"response":"line\nnext \"q\""}`, "line\nnext \"q\""},
		{"invalid json", `{"response":`, ""},
		{"not an object", `"Hello"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Run().StreamText([]byte(tt.payload)))
		})
	}
}

func TestResponsesShape_StreamText(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			"message element only",
			`{"output":[{"type":"message","content":[{"text":"Hi"}]},{"type":"other"}]}`,
			"Hi",
		},
		{
			"flattened across elements and parts",
			`{"output":[{"type":"message","content":[{"text":"a"},{"text":"b"}]},{"type":"reasoning","content":[{"text":"skip"}]},{"type":"message","content":[{"text":"c"}]}]}`,
			"abc",
		},
		{
			"missing text contributes nothing",
			`{"output":[{"type":"message","content":[{"type":"output_text"},{"text":"x"},{"text":7}]}]}`,
			"x",
		},
		{"output not an array", `{"output":{"type":"message"}}`, ""},
		{"content not an array", `{"output":[{"type":"message","content":"text"}]}`, ""},
		{"text delta event", `{"type":"response.output_text.delta","delta":"tok"}`, "tok"},
		{"other event", `{"type":"response.created","response":{"id":"r1"}}`, ""},
		{"garbage", `not json`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Responses().StreamText([]byte(tt.payload)))
		})
	}
}

// =============================================================================
// Final Extraction Tests
// =============================================================================

func TestRunShape_FinalText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"wrapped in result", `{"result":{"response":"wrapped"},"success":true}`, "wrapped"},
		{"flat", `{"response":"flat"}`, "flat"},
		{"result wins when present", `{"result":{"response":"inner"},"response":"outer"}`, "inner"},
		{"non-string result", `{"result":{"response":1},"response":"outer"}`, ""},
		{"result without response", `{"result":{"usage":{}},"response":"outer"}`, "outer"},
		{"nothing", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Run().FinalText([]byte(tt.body)))
		})
	}
}

func TestResponsesShape_FinalText(t *testing.T) {
	body := `{
  "id": "resp_1",
  "output": [
    {"type": "reasoning", "content": [{"text": "thinking"}]},
    {"type": "message", "content": [{"type": "output_text", "text": "Final answer"}]}
  ]
}`
	assert.Equal(t, "Final answer", Responses().FinalText([]byte(body)))
	assert.Equal(t, "", Responses().FinalText([]byte(`{"delta":"x","type":"response.output_text.delta"}`)))
}

// =============================================================================
// Error Extraction Tests
// =============================================================================

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{"object with message", `{"error":{"message":"rate limited"}}`, "rate limited", true},
		{"object without message", `{"error":{"code":7}}`, UnknownErrorMessage, true},
		{"empty message", `{"error":{"message":""}}`, UnknownErrorMessage, true},
		{"string error", `{"error":"bad model"}`, "bad model", true},
		{"null error", `{"error":null,"response":"hi"}`, "", false},
		{"absent error", `{"response":"hi"}`, "", false},
		{"invalid json", `{"error":`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ErrorMessage([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// Request Builder Tests
// =============================================================================

func TestBuild_MessageCount(t *testing.T) {
	user := transcript.UserMessage("new \"question\"\n")

	for n := 0; n < 4; n++ {
		t.Run(fmt.Sprintf("history_%d", n), func(t *testing.T) {
			history := make([]string, n)
			for i := range history {
				history[i] = transcript.AssistantMessage(fmt.Sprintf("turn %d", i)).Line()
			}

			for _, shape := range []Shape{Run(), Responses()} {
				req := Build(shape, testBase, history, user, "", DefaultTemperature)
				require.Len(t, req.Messages, n+1)
				assert.Equal(t, user.Line(), req.Messages[n])
				assert.Equal(t, history, req.Messages[:n])
			}
		})
	}
}

func TestBuild_RunBody(t *testing.T) {
	req := Build(Run(), testBase+"/", nil, transcript.UserMessage("hi"), "", DefaultTemperature)

	assert.Equal(t, testBase+"/ai/run/@cf/meta/llama-3.1-8b-instruct", req.URL)
	assert.Equal(t, `{"messages":[{"role":"user","content":"hi"}],"temperature":0.7,"stream":true}`, string(req.Body))
}

func TestBuild_ResponsesBody(t *testing.T) {
	history := []string{`{"role":"user","content":"a"}`, `{"role":"assistant","content":"b"}`}
	req := Build(Responses(), testBase, history, transcript.UserMessage("c"), "my-model", DefaultTemperature)

	assert.Equal(t, testBase+"/ai/v1/responses", req.URL)

	var body struct {
		Model       string               `json:"model"`
		Input       []transcript.Message `json:"input"`
		Temperature float64              `json:"temperature"`
		Stream      *bool                `json:"stream"`
	}
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "my-model", body.Model)
	assert.Equal(t, 0.7, body.Temperature)
	assert.Nil(t, body.Stream)
	assert.Equal(t, []transcript.Message{
		{Role: transcript.RoleUser, Content: "a"},
		{Role: transcript.RoleAssistant, Content: "b"},
		{Role: transcript.RoleUser, Content: "c"},
	}, body.Input)
}

func TestResolveBase(t *testing.T) {
	assert.Equal(t,
		"https://api.cloudflare.com/client/v4/accounts/abc123",
		ResolveBase("https://api.cloudflare.com/client/v4/accounts/{account_id}/", "abc123"),
	)
	assert.Equal(t, "http://127.0.0.1:9999", ResolveBase("http://127.0.0.1:9999", "ignored"))
}
