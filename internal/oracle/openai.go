package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/observability"
)

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Complete sends prompt as a single user message and returns the first
// choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	observability.IncrementOracleRequests()

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		observability.IncrementOracleFailures()
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		observability.IncrementOracleFailures()
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		observability.IncrementOracleFailures()
		return "", fmt.Errorf("request chat completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	rawRespBody, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.IncrementOracleFailures()
		return "", fmt.Errorf("read chat response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		observability.IncrementOracleFailures()
		return "", fmt.Errorf("chat completion failed status=%d body=%s", resp.StatusCode, string(rawRespBody))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rawRespBody, &parsed); err != nil {
		observability.IncrementOracleFailures()
		return "", fmt.Errorf("decode chat completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		observability.IncrementOracleFailures()
		return "", fmt.Errorf("empty chat completion choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
