package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ibmentor/internal/metrics"
	"ibmentor/models"
)

const (
	embeddingModel = "openai/text-embedding-3-small"

	requestTimeout = 90 * time.Second
)

// ErrNoContent is returned when the gateway answered 2xx but the first choice
// carried no text.
var ErrNoContent = errors.New("openrouter: response contained no content")

// OpenRouter talks to the OpenRouter chat-completions and embeddings
// endpoints. Failures are not retried here; callers decide what a failed
// completion means for them.
type OpenRouter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouter creates a gateway client with the given API key and base URL.
// An empty baseURL falls back to the public OpenRouter endpoint.
func NewOpenRouter(apiKey, baseURL string) *OpenRouter {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &OpenRouter{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

type chatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat posts the message list to the completions endpoint and returns the
// text of the first choice.
func (c *OpenRouter) Chat(ctx context.Context, model string, messages []models.ChatMessage, temperature float64, maxTokens int) (string, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request data: %w", err)
	}

	start := time.Now()
	body, err := c.post(ctx, "/chat/completions", payload)
	metrics.ObserveGatewayCall(model, err == nil, time.Since(start))
	if err != nil {
		return "", err
	}

	var responseData chatCompletionResponse
	if err := json.Unmarshal(body, &responseData); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(responseData.Choices) == 0 || responseData.Choices[0].Message.Content == "" {
		return "", ErrNoContent
	}
	return responseData.Choices[0].Message.Content, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given input text.
func (c *OpenRouter) Embed(ctx context.Context, input string) ([]float64, error) {
	payload, err := json.Marshal(embeddingRequest{Model: embeddingModel, Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	body, err := c.post(ctx, "/embeddings", payload)
	if err != nil {
		return nil, err
	}

	var responseData embeddingResponse
	if err := json.Unmarshal(body, &responseData); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(responseData.Data) == 0 || len(responseData.Data[0].Embedding) == 0 {
		return nil, ErrNoContent
	}
	return responseData.Data[0].Embedding, nil
}

// post sends the payload and returns the response body. A non-2xx status
// becomes an error carrying both the status code and the body text, so quota
// and auth failures from the gateway stay legible upstream.
func (c *OpenRouter) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("openrouter: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response: %w", readErr)
	}
	return body, nil
}
