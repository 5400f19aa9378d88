package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

func newTestClient(baseURL string) *Client {
	return New(baseURL, "test-key", "gpt-5", 5*time.Second)
}

func TestRouteParsesFullJSONEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-5", req["model"])
		assert.Equal(t, float64(0), req["temperature"])
		assert.Equal(t, false, req["stream"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"intent\":\"tracking\",\"params\":{\"sales_order\":\"1047644\"},\"missing\":[]}"}}]}`))
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Route(context.Background(), "Track sales order 1047644")

	assert.Equal(t, models.IntentTracking, result.Intent)
	assert.Equal(t, "1047644", result.Params.Get("sales_order"))
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Error)
}

func TestRouteParsesEventStream(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"{\\\"intent\\\":\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"\\\"tracking\\\"}\"}}]}\n" +
		"data: [DONE]\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Route(context.Background(), "track it")

	assert.Equal(t, models.IntentTracking, result.Intent)
	assert.Empty(t, result.Error)
}

func TestParseSSEBodyConcatenatesDeltas(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"{\\\"intent\\\":\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"\\\"tracking\\\"}\"}}]}\n" +
		"data: [DONE]\n"

	assert.Equal(t, `{"intent":"tracking"}`, parseSSEBody(body))
}

func TestParseSSEBodySkipsMalformedLines(t *testing.T) {
	body := "data: not-json-at-all\n" +
		"data: {\"choices\":[{\"message\":{\"content\":\"{\\\"intent\\\":\\\"report\\\"}\"}}]}\n"

	assert.Equal(t, `{"intent":"report"}`, parseSSEBody(body))
}

func TestParseSSEBodyStopsAtDone(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"before\"}}]}\n" +
		"data: [DONE]\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"after\"}}]}\n"

	assert.Equal(t, "before", parseSSEBody(body))
}

func TestRouteFallsBackToStreamWhenEnvelopeIsBroken(t *testing.T) {
	// Declared JSON, but the body is an SSE stream.
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"{\\\"intent\\\":\\\"item_details\\\",\\\"params\\\":{\\\"item\\\":\\\"4910\\\"}}\"}}]}\n" +
		"data: [DONE]\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Route(context.Background(), "Find details of item 4910")

	assert.Equal(t, models.IntentItemDetails, result.Intent)
	assert.Equal(t, "4910", result.Params.Get("item"))
}

func TestRouteMissingAPIKeyShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call should be made without a credential")
	}))
	defer srv.Close()

	result := New(srv.URL, "", "gpt-5", time.Second).Route(context.Background(), "hello")

	assert.Equal(t, models.IntentUnknown, result.Intent)
	assert.Contains(t, result.Error, "AIHUB_API_KEY")
	assert.NotNil(t, result.Params)
	assert.NotNil(t, result.Missing)
}

func TestRouteNonSuccessStatusIncludesSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream\nexploded"))
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Route(context.Background(), "hello")

	assert.Equal(t, models.IntentUnknown, result.Intent)
	assert.Contains(t, result.Error, "502")
	assert.Contains(t, result.Error, "upstream exploded", "newlines should be flattened in the snippet")
}

func TestRouteNetworkErrorDegrades(t *testing.T) {
	result := New("http://127.0.0.1:1", "test-key", "gpt-5", time.Second).Route(context.Background(), "hello")

	assert.Equal(t, models.IntentUnknown, result.Intent)
	assert.Contains(t, result.Error, "LLM network error")
}

func TestRouteNonJSONRouterOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"sorry, I cannot help with that"}}]}`))
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).Route(context.Background(), "hello")

	assert.Equal(t, models.IntentUnknown, result.Intent)
	assert.Equal(t, "Router returned non-JSON", result.Error)
}

func TestParseRouterJSONFillsDefaults(t *testing.T) {
	result := parseRouterJSON(`{"intent":"report"}`)

	assert.Equal(t, models.IntentReport, result.Intent)
	assert.NotNil(t, result.Params)
	assert.NotNil(t, result.Missing)
	assert.Empty(t, result.Error)
}

func TestParseRouterJSONUnrecognizedIntent(t *testing.T) {
	result := parseRouterJSON(`{"intent":"weather","params":{}}`)
	assert.Equal(t, models.IntentUnknown, result.Intent)
}

func TestErrorSnippetTruncates(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, errorSnippet(string(long)), maxErrorSnippet)
}
