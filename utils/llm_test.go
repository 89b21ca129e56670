package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracechapel/churchweb/config"
)

func TestChatCompletion(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req llmRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.Len(t, req.Messages, 2)

		fmt.Fprint(w, `{"choices":[{"message":{"content":"Sundays at 9am."}}],"usage":{"total_tokens":42}}`)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.LLMAPIKey = "test-key"
	cfg.LLMBaseURL = stub.URL
	cfg.LLMModel = "gpt-test"
	config.SetForTesting(cfg)

	reply, err := ChatCompletion(context.Background(), []ChatMessage{
		{Role: "system", Content: "You answer questions about the church."},
		{Role: "user", Content: "When are services?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sundays at 9am.", reply)
}

func TestChatCompletionDecodesAPIError(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"rate_limit_error"}}`)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.LLMAPIKey = "test-key"
	cfg.LLMBaseURL = stub.URL
	config.SetForTesting(cfg)

	_, err := ChatCompletion(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit reached")
}

func TestChatCompletionRequiresKeyAndMessages(t *testing.T) {
	config.SetForTesting(testConfig(t))
	_, err := ChatCompletion(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.LLMAPIKey = "k"
	cfg.LLMBaseURL = "http://127.0.0.1:1"
	config.SetForTesting(cfg)
	_, err = ChatCompletion(context.Background(), nil)
	assert.Error(t, err)
}

func TestChatCompletionRejectsEmptyChoice(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer stub.Close()

	cfg := testConfig(t)
	cfg.LLMAPIKey = "test-key"
	cfg.LLMBaseURL = stub.URL
	config.SetForTesting(cfg)

	_, err := ChatCompletion(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}
