package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync"

	"google.golang.org/genai"
)

// GeminiClient streams content from the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API client.
func NewGemini(ctx context.Context, cfg Config) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (c *GeminiClient) Model() string {
	return c.model
}

// Stream starts GenerateContentStream and waits for the first response so a
// rejected request is reported as an error instead of an empty stream.
func (c *GeminiClient) Stream(ctx context.Context, req Request) (Stream, error) {
	var (
		contents []*genai.Content
		config   *genai.GenerateContentConfig
	)
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			config = &genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(m.Content, genai.RoleUser),
			}
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	next, stop := iter.Pull2(c.client.Models.GenerateContentStream(ctx, c.model, contents, config))
	return peek(&geminiStream{next: next, stop: stop})
}

type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	once sync.Once
}

func (s *geminiStream) Recv() (string, error) {
	for {
		resp, err, ok := s.next()
		if !ok {
			return "", io.EOF
		}
		if err != nil {
			return "", wrapGemini(err)
		}
		if text := resp.Text(); text != "" {
			return text, nil
		}
	}
}

func (s *geminiStream) Close() error {
	s.once.Do(s.stop)
	return nil
}

func wrapGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return wrapError("gemini", apiErr.Code, err)
	}
	return wrapError("gemini", 0, err)
}
