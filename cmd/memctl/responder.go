package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Responder answers a free-text prompt. The real LLM integration is kept
// behind this narrow interface — memctl's job is to record the exchange as
// a reflexion, not to own a chat client.
type Responder interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// openAIResponder is a minimal Chat Completions client, just enough to
// exercise the Responder interface end to end; it is not meant to be a
// complete OpenAI SDK.
type openAIResponder struct {
	apiKey string
	model  string
	client *http.Client
}

func newOpenAIResponder(apiKey string) *openAIResponder {
	return &openAIResponder{
		apiKey: apiKey,
		model:  "gpt-4o-mini",
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (r *openAIResponder) Reply(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    r.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("responder: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("responder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("responder: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("responder: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("responder: api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("responder: empty response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// emptyResponder answers every prompt with the empty string, matching the
// spec's requirement that a missing OPENAI_API_KEY produce an empty reply
// rather than a hard failure.
type emptyResponder struct{}

func (emptyResponder) Reply(ctx context.Context, prompt string) (string, error) { return "", nil }

// newResponder builds a Responder from OPENAI_API_KEY, falling back to an
// emptyResponder when it's unset.
func newResponder() (Responder, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return emptyResponder{}, nil
	}
	return newOpenAIResponder(key), nil
}
