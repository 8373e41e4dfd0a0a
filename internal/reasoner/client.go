// Package reasoner provides the text-in/text-out inference capability the
// decision workflow consumes, backed by an OpenAI-compatible chat API.
package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"underwriter/internal/logger"
)

const systemPrompt = "You are an underwriting assistant for a lending back office. " +
	"Answer only from the provided policy context and application facts. " +
	"When asked for JSON, reply with JSON only."

// ChatClient calls a /v1/chat/completions style endpoint. It works with
// OpenAI, DeepSeek, Qwen and compatible gateways.
type ChatClient struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	// MaxRetries applies to 429/5xx only. The workflow prefers fallback
	// over waiting, so the default is a single attempt.
	MaxRetries int

	httpClient *http.Client
}

func NewChatClient(baseURL, apiKey, model string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		Timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient sets the HTTP client for testing.
func (c *ChatClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *ChatClient) endpoint() string {
	url := strings.TrimSpace(c.BaseURL)
	if url == "" {
		url = "https://api.openai.com/v1"
	}
	url = strings.TrimRight(url, "/")
	// Tolerate configs that already carry the full completions path.
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

// Infer sends the prompt and returns the model's text reply.
func (c *ChatClient) Infer(ctx context.Context, purpose, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": c.Temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	logger.LLMRequest(c.Model, purpose, prompt)

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		out, retryable, err := c.call(ctx, body)
		if err == nil {
			logger.LLMResponse(c.Model, purpose, out)
			return out, nil
		}
		lastErr = err
		if !retryable || attempt == c.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
	return "", lastErr
}

func (c *ChatClient) call(ctx context.Context, body []byte) (out string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		var parsed struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if derr := json.NewDecoder(resp.Body).Decode(&parsed); derr != nil {
			return "", false, fmt.Errorf("decoding chat response failed: %w", derr)
		}
		if len(parsed.Choices) == 0 {
			return "", false, fmt.Errorf("chat response has no choices")
		}
		return parsed.Choices[0].Message.Content, false, nil
	}

	var eresp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&eresp)
	msg := strings.TrimSpace(eresp.Error.Message)
	if msg == "" {
		msg = resp.Status
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		retryable = true
	}
	return "", retryable, fmt.Errorf("chat status=%d: %s", resp.StatusCode, msg)
}

func backoff(attempt int) time.Duration {
	wait := 800 * time.Millisecond << attempt
	if wait > 8*time.Second {
		wait = 8 * time.Second
	}
	return wait
}
