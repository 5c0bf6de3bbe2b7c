// Package llm provides streaming chat clients for the hosted model providers
// the service can talk to. Every provider is reduced to the same pull-based
// Stream of text chunks.
package llm

import "context"

// Message is one entry of a provider conversation.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// Request is what the service submits to a provider.
type Request struct {
	Messages []Message `json:"messages"`
}

// PromptRequest wraps a fully rendered prompt as a single user message.
func PromptRequest(prompt string) Request {
	return Request{Messages: []Message{{Role: "user", Content: prompt}}}
}

// Stream is a lazy, finite sequence of text chunks. Recv returns io.EOF once the
// provider has finished; any other error is a provider failure. Close releases
// the underlying connection and may be called more than once.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Client opens streaming completions against a provider. Stream returns only
// after the provider accepted the request, so authentication and rate-limit
// failures surface before any output is produced.
type Client interface {
	Stream(ctx context.Context, req Request) (Stream, error)
	Model() string
}
