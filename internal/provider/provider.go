// Package provider holds the HTTP clients for the hosted LLM backends.
// Each client implements the same Complete contract; provider selection
// happens one level up in the model manager.
package provider

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request. Messages carry the persona
// system prompt first, then the trimmed history, then the new user turn.
type Request struct {
	ModelID     string
	Temperature float64
	MaxTokens   int
	Messages    []Message
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	// TotalCost is reported by OpenRouter only; zero elsewhere.
	TotalCost float64
}

type Reply struct {
	Text  string
	Usage Usage
}

// Client is one hosted backend. Implementations do not retry; errors
// surface to the caller as *Error where the upstream answered at all.
type Client interface {
	Complete(ctx context.Context, req Request) (*Reply, error)
}
