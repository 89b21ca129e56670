package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gracechapel/churchweb/config"
)

var llmHTTPClient = &http.Client{Timeout: 45 * time.Second}

// ChatMessage is one turn of an LLM conversation.
type ChatMessage struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

type llmRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type llmError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ChatCompletion sends a conversation to the configured OpenAI-compatible API
// and returns the assistant reply.
func ChatCompletion(ctx context.Context, messages []ChatMessage) (string, error) {
	cfg := config.Get()
	if cfg.LLMAPIKey == "" {
		return "", fmt.Errorf("LLM_API_KEY not set")
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}

	reqBody := llmRequest{
		Model:       cfg.LLMModel,
		Messages:    messages,
		Temperature: 0.4,
		MaxTokens:   512,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.LLMBaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.LLMAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := llmHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr llmError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("llm API error (%s): %s", apiErr.Error.Type, apiErr.Error.Message)
		}
		return "", fmt.Errorf("llm request failed with status %d", resp.StatusCode)
	}

	var out llmResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("llm decode response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("llm returned empty reply")
	}
	return out.Choices[0].Message.Content, nil
}
