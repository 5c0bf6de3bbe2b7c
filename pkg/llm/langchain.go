package llm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LangChainClient adapts a langchaingo model, whose streaming is callback
// based, to the pull based Stream.
type LangChainClient struct {
	model    llms.Model
	provider string
	name     string
}

// NewLangChain wraps an already constructed langchaingo model.
func NewLangChain(provider, name string, model llms.Model) *LangChainClient {
	return &LangChainClient{model: model, provider: provider, name: name}
}

// NewOllama creates a client for a local Ollama server.
func NewOllama(cfg Config) (*LangChainClient, error) {
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	model, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewLangChain("ollama", cfg.Model, model), nil
}

func (c *LangChainClient) Model() string {
	return c.name
}

// Stream runs GenerateContent in a producer goroutine that hands chunks over
// an unbuffered channel. Closing the stream cancels the generation.
func (c *LangChainClient) Stream(ctx context.Context, req Request) (Stream, error) {
	messages := make([]llms.MessageContent, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = llms.TextParts(chatMessageType(m.Role), m.Content)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &langchainStream{
		chunks: make(chan string),
		done:   make(chan error, 1),
		cancel: cancel,
	}

	go func() {
		defer close(s.chunks)

		streamed := false
		resp, err := c.model.GenerateContent(ctx, messages,
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if len(chunk) == 0 {
					return nil
				}
				streamed = true
				select {
				case s.chunks <- string(chunk):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}),
		)
		if err != nil {
			s.done <- wrapError(c.provider, 0, err)
			return
		}

		// Models without streaming support return the whole answer at once.
		if !streamed && resp != nil && len(resp.Choices) > 0 && resp.Choices[0].Content != "" {
			select {
			case s.chunks <- resp.Choices[0].Content:
			case <-ctx.Done():
			}
		}
		s.done <- nil
	}()

	return peek(s)
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case "assistant":
		return llms.ChatMessageTypeAI
	case "system":
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}

type langchainStream struct {
	chunks chan string
	done   chan error
	cancel context.CancelFunc

	err       error
	finished  bool
	closeOnce sync.Once
}

func (s *langchainStream) Recv() (string, error) {
	if s.finished {
		return "", s.err
	}

	chunk, ok := <-s.chunks
	if ok {
		return chunk, nil
	}

	s.finished = true
	s.err = io.EOF
	if err := <-s.done; err != nil {
		s.err = err
	}
	return "", s.err
}

func (s *langchainStream) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}
