package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/daenny/ai-travel-planner/internal/config"
	"github.com/daenny/ai-travel-planner/internal/metrics"
)

const (
	// DefaultBaseRetryDelay is the base delay for exponential backoff
	DefaultBaseRetryDelay = 2 * time.Second
	// RateLimitBackoffMultiplier is the multiplier for rate limit backoff (3^n)
	RateLimitBackoffMultiplier = 3
)

// Client sends completion requests to model API endpoints. It speaks both
// the OpenAI-compatible chat/completions format and Anthropic's messages
// format, selected per model by config.ProviderKind.
type Client struct {
	httpClient      *http.Client
	rateLimiterPool *RateLimiterPool
	logger          *slog.Logger
	baseRetryDelay  time.Duration
}

// NewClient creates a new API client
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient:      &http.Client{},
		rateLimiterPool: NewRateLimiterPool(),
		logger:          logger,
		baseRetryDelay:  DefaultBaseRetryDelay,
	}
}

// Complete sends a single-turn completion request and returns the model's
// text output. Rate limiting, per-request timeout, and transport-level retry
// with exponential backoff all happen here; callers see only the final
// result or error.
func (c *Client) Complete(
	ctx context.Context,
	modelCfg config.ModelConfig,
	apiKey string,
	systemPrompt string,
	userPrompt string,
) (string, error) {
	modelID := fmt.Sprintf("%s:%s", modelCfg.BaseURL, modelCfg.ModelName)

	var lastErr error
	for attempt := 0; attempt <= modelCfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.baseRetryDelay

			// Rate limit errors get longer delays (3^n: 6s, 18s, 54s)
			if apiErr, ok := lastErr.(*APIError); ok && apiErr.StatusCode == http.StatusTooManyRequests {
				backoff = time.Duration(math.Pow(RateLimitBackoffMultiplier, float64(attempt))) * c.baseRetryDelay
			}

			c.logger.Warn("Retrying API request",
				"attempt", attempt,
				"max_retries", modelCfg.MaxRetries,
				"backoff", backoff,
				"model", modelCfg.ModelName)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.rateLimiterPool.Wait(ctx, modelID, modelCfg.RateLimitPerMinute); err != nil {
			return "", fmt.Errorf("rate limiter wait failed: %w", err)
		}

		start := time.Now()
		text, err := c.doRequest(ctx, modelCfg, apiKey, systemPrompt, userPrompt)
		metrics.RecordAPIRequest(modelCfg.ModelName, time.Since(start), err == nil)
		if err == nil {
			return text, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(
	ctx context.Context,
	modelCfg config.ModelConfig,
	apiKey string,
	systemPrompt string,
	userPrompt string,
) (string, error) {
	if modelCfg.HTTPTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(modelCfg.HTTPTimeoutSeconds)*time.Second)
		defer cancel()
	}

	var (
		endpoint string
		body     []byte
		err      error
	)

	switch modelCfg.Provider {
	case config.ProviderAnthropic:
		endpoint = joinEndpoint(modelCfg.BaseURL, "v1/messages")
		body, err = json.Marshal(messagesRequest{
			Model:       modelCfg.ModelName,
			System:      systemPrompt,
			Messages:    []Message{{Role: "user", Content: userPrompt}},
			Temperature: modelCfg.Temperature,
			TopP:        modelCfg.TopP,
			MaxTokens:   modelCfg.MaxOutputTokens,
		})
	default:
		endpoint = joinEndpoint(modelCfg.BaseURL, "chat/completions")
		messages := []Message{}
		if systemPrompt != "" {
			messages = append(messages, Message{Role: "system", Content: systemPrompt})
		}
		messages = append(messages, Message{Role: "user", Content: userPrompt})
		body, err = json.Marshal(chatCompletionRequest{
			Model:       modelCfg.ModelName,
			Messages:    messages,
			Temperature: modelCfg.Temperature,
			TopP:        modelCfg.TopP,
			MaxTokens:   modelCfg.MaxOutputTokens,
			N:           1,
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if modelCfg.Provider == config.ProviderAnthropic {
		if apiKey != "" {
			httpReq.Header.Set("x-api-key", apiKey)
		}
		httpReq.Header.Set("anthropic-version", modelCfg.AnthropicVersion)
	} else if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}
	if apiKey == "" {
		c.logger.Warn("API request without key", "endpoint", endpoint)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &APIError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
		}
	}
	defer func() {
		if err := httpResp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", parseErrorResponse(modelCfg.Provider, httpResp.StatusCode, respBody)
	}

	return parseTextResponse(modelCfg.Provider, respBody)
}

func parseTextResponse(provider config.ProviderKind, respBody []byte) (string, error) {
	if provider == config.ProviderAnthropic {
		var resp messagesResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", fmt.Errorf("no text content returned in response")
		}
		return sb.String(), nil
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func parseErrorResponse(provider config.ProviderKind, statusCode int, respBody []byte) error {
	retryable := isStatusCodeRetryable(statusCode)

	if provider == config.ProviderAnthropic {
		var errResp anthropicErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return &APIError{
				Message:    errResp.Error.Message,
				StatusCode: statusCode,
				Type:       errResp.Error.Type,
				Retryable:  retryable,
			}
		}
	} else {
		var errResp openAIErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return &APIError{
				Message:    errResp.Error.Message,
				StatusCode: statusCode,
				Type:       errResp.Error.Type,
				Code:       errResp.Error.Code,
				Retryable:  retryable,
			}
		}
	}

	return &APIError{
		Message:    fmt.Sprintf("API request failed with status %d: %s", statusCode, string(respBody)),
		StatusCode: statusCode,
		Retryable:  retryable,
	}
}

func joinEndpoint(baseURL, path string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + path
}

func isRetryable(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Retryable
	}
	return false
}

func isStatusCodeRetryable(statusCode int) bool {
	// Retry on rate limits and server errors
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}
