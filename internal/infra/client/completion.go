// Package client contains the HTTP adapter for the external
// text-completion service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/medicoord/coordinator-go/internal/domain"
	"github.com/medicoord/coordinator-go/internal/infra/observability"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("infra/client")

// CompletionClient calls a Perplexity-compatible chat-completions API.
// Every AI-driven component in the system goes through this one adapter.
//
// The call is guarded by a circuit breaker but is never retried: a failed
// completion is terminal for that call and surfaces as data to the caller.
type CompletionClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
}

// NewCompletionClient creates the completion-service client.
// The API key is not validated here; a missing or bad key surfaces as a
// service-call failure on the first request.
func NewCompletionClient(httpClient *http.Client, baseURL, apiKey, model string, cb *gobreaker.CircuitBreaker, metrics *observability.Metrics) *CompletionClient {
	return &CompletionClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		cb:         cb,
		metrics:    metrics,
	}
}

type completionRequest struct {
	Model     string               `json:"model"`
	Messages  []domain.ChatMessage `json:"messages"`
	MaxTokens int                  `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends the messages to the completion endpoint and returns the
// text of the first choice. All failure modes (transport, auth, rate
// limiting, malformed replies) collapse into *domain.ErrServiceCall,
// except a rejected call while the breaker is open, which is reported as
// *domain.ErrCircuitOpen.
func (c *CompletionClient) Complete(ctx context.Context, messages []domain.ChatMessage, maxTokens int) (string, error) {
	ctx, span := tracer.Start(ctx, "CompletionClient.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("completion.model", c.model),
		attribute.Int("completion.max_tokens", maxTokens),
	)

	result, err := c.cb.Execute(func() (any, error) {
		body, err := json.Marshal(completionRequest{
			Model:     c.model,
			Messages:  messages,
			MaxTokens: maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal completion request: %w", err)
		}

		url := fmt.Sprintf("%s/chat/completions", c.baseURL)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create http request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("http call to completion service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			// Body is dropped; status code is enough detail for the caller.
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("completion service returned status %d", resp.StatusCode)
		}

		var cr completionResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return nil, fmt.Errorf("decode completion response: %w", err)
		}
		if len(cr.Choices) == 0 {
			return nil, fmt.Errorf("completion response contained no choices")
		}

		if c.metrics != nil {
			c.metrics.RecordTokens(cr.Usage.PromptTokens, cr.Usage.CompletionTokens)
		}

		return cr.Choices[0].Message.Content, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &domain.ErrCircuitOpen{Service: "completion"}
		}
		return "", &domain.ErrServiceCall{Service: "completion", Err: err}
	}

	return result.(string), nil
}
