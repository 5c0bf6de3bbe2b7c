package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient streams chat completions from any OpenAI compatible endpoint.
// Groq is served through it with a different base URL.
type OpenAIClient struct {
	client   *openai.Client
	provider string
	model    string
}

// NewOpenAI creates a client for cfg.
func NewOpenAI(cfg Config) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(oc),
		provider: cfg.Provider,
		model:    cfg.Model,
	}
}

func (c *OpenAIClient) Model() string {
	return c.model
}

// Stream opens a chat completion stream. The HTTP status is checked while
// opening, so a returned stream has already been accepted.
func (c *OpenAIClient) Stream(ctx context.Context, req Request) (Stream, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, c.wrap(err)
	}

	return &openaiStream{stream: stream, wrap: c.wrap}, nil
}

func (c *OpenAIClient) wrap(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrapError(c.provider, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return wrapError(c.provider, reqErr.HTTPStatusCode, err)
	}
	if errors.Is(err, openai.ErrTooManyEmptyStreamMessages) {
		return &Error{Provider: c.provider, Kind: KindMalformed, Err: err}
	}
	return wrapError(c.provider, 0, err)
}

type openaiStream struct {
	stream *openai.ChatCompletionStream
	wrap   func(error) error
	once   sync.Once
}

func (s *openaiStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", s.wrap(err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *openaiStream) Close() error {
	var err error
	s.once.Do(func() {
		err = s.stream.Close()
	})
	return err
}
