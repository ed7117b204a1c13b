package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the narrow surface the pipelines depend on. The response is a
// single text blob with no structural guarantee; callers own validation.
type Client interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// HTTPClient talks to an OpenAI-compatible chat completions endpoint
type HTTPClient struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

var _ Client = (*HTTPClient)(nil)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a client for the given endpoint and model
func New(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}
}

// Run sends a single prompt and returns the raw completion text. Exactly
// one attempt is made; callers absorb failure with their own fallbacks.
func (c *HTTPClient) Run(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(reqBody).
		Post(c.baseURL + "/chat/completions")

	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("llm API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(resp.Body(), &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal llm response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("llm API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("llm returned empty response")
	}

	return chatResp.Choices[0].Message.Content, nil
}
