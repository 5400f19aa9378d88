// Package router classifies user messages by calling the AI Hub
// chat-completions endpoint and parsing whatever comes back.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/prompts"
)

// maxErrorSnippet bounds how much of an upstream error body is echoed
// into the diagnostic.
const maxErrorSnippet = 400

// Client calls the AI Hub and turns the reply into a RouterResult. It
// never fails outward: every failure mode degrades to an unknown-intent
// result carrying a diagnostic.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates a router client. The timeout bounds the whole completion
// call.
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	Stream         bool           `json:"stream"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// streamFragment covers both delta-style and full-message-style stream
// lines.
type streamFragment struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Route classifies one user message into an intent plus extracted params.
func (c *Client) Route(ctx context.Context, userMessage string) *models.RouterResult {
	if c.apiKey == "" {
		return unknownResult("Missing AIHUB_API_KEY")
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model:          c.model,
		Temperature:    0,
		Stream:         false,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: prompts.SystemPrompt},
			{Role: "user", Content: prompts.UserGuide + "\n\nUser: " + userMessage},
		},
	})
	if err != nil {
		return unknownResult(fmt.Sprintf("LLM request error: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return unknownResult(fmt.Sprintf("LLM request error: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return unknownResult(fmt.Sprintf("LLM network error: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return unknownResult(fmt.Sprintf("LLM network error: %v", err))
	}
	body := string(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unknownResult(fmt.Sprintf("LLM call failed (%d): %s", resp.StatusCode, errorSnippet(body)))
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") {
		var envelope chatCompletionResponse
		if err := json.Unmarshal(raw, &envelope); err == nil {
			return parseRouterJSON(extractText(&envelope))
		}
		// Some gateways declare JSON but stream SSE anyway.
		return parseRouterJSON(parseSSEBody(body))
	}

	return parseRouterJSON(parseSSEBody(body))
}

// extractText pulls the assistant text out of the first choice.
func extractText(envelope *chatCompletionResponse) string {
	if len(envelope.Choices) == 0 {
		return ""
	}
	return envelope.Choices[0].Message.Content
}

// parseSSEBody accumulates content from a server-sent-event stream:
// one JSON fragment per line, optional "data:" prefix, terminated by a
// literal [DONE]. Lines that fail to parse are skipped — accumulation is
// best-effort, never a hard failure.
func parseSSEBody(body string) string {
	var output strings.Builder
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			line = strings.TrimSpace(line[len("data:"):])
		}
		if line == "[DONE]" {
			break
		}

		var fragment streamFragment
		if err := json.Unmarshal([]byte(line), &fragment); err != nil {
			continue
		}
		if len(fragment.Choices) == 0 {
			continue
		}
		if piece := fragment.Choices[0].Delta.Content; piece != "" {
			output.WriteString(piece)
		} else if piece := fragment.Choices[0].Message.Content; piece != "" {
			output.WriteString(piece)
		}
	}
	return strings.TrimSpace(output.String())
}

// parseRouterJSON parses the assistant text into the final RouterResult,
// filling defaults for anything the payload left out.
func parseRouterJSON(content string) *models.RouterResult {
	var payload struct {
		Intent  string          `json:"intent"`
		Params  models.ParamBag `json:"params"`
		Missing []string        `json:"missing"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return unknownResult("Router returned non-JSON")
	}

	result := &models.RouterResult{
		Intent:  models.ParseIntent(payload.Intent),
		Params:  payload.Params,
		Missing: payload.Missing,
	}
	if result.Params == nil {
		result.Params = models.ParamBag{}
	}
	if result.Missing == nil {
		result.Missing = []string{}
	}
	return result
}

func unknownResult(reason string) *models.RouterResult {
	return &models.RouterResult{
		Intent:  models.IntentUnknown,
		Params:  models.ParamBag{},
		Missing: []string{},
		Error:   reason,
	}
}

// errorSnippet flattens and truncates an upstream error body for the
// diagnostic.
func errorSnippet(body string) string {
	snippet := strings.ReplaceAll(body, "\n", " ")
	if len(snippet) > maxErrorSnippet {
		snippet = snippet[:maxErrorSnippet]
	}
	return snippet
}
