package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/convoplay/convoplay/internal/config"
	"github.com/convoplay/convoplay/internal/domain"
)

const openRouterName = "openrouter"

// OpenAIClient talks to any OpenAI-compatible completions gateway. With
// the default base URL that gateway is OpenRouter.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{
		Transport: &costCaptureTransport{base: http.DefaultTransport},
		Timeout:   config.RequestTimeout,
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

type costSinkKey struct{}

// costCaptureTransport reads usage.total_cost off the wire. OpenRouter
// extends the usage object with that field; the SDK's response type has
// no slot for it, so it must be taken from the raw body.
type costCaptureTransport struct {
	base http.RoundTripper
}

func (t *costCaptureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	sink, ok := req.Context().Value(costSinkKey{}).(*float64)
	if !ok || resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	var usage struct {
		Usage struct {
			TotalCost float64 `json:"total_cost"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &usage); err == nil {
		*sink = usage.Usage.TotalCost
	}
	return resp, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Reply, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	var totalCost float64
	ctx = context.WithValue(ctx, costSinkKey{}, &totalCost)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.ModelID,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w", openRouterName, domain.ErrNoReply)
	}

	return &Reply{
		Text: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalCost:        totalCost,
		},
	}, nil
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Provider: openRouterName,
			Status:   apiErr.HTTPStatusCode,
			Message:  apiErr.Message,
			Err:      err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{
			Provider: openRouterName,
			Status:   reqErr.HTTPStatusCode,
			Message:  reqErr.Error(),
			Err:      err,
		}
	}
	return &Error{Provider: openRouterName, Message: err.Error(), Err: err}
}
