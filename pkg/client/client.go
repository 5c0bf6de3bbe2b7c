// Package client talks to a running ragchat server and decodes both response
// stream protocols back into text chunks.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/ragchat/pkg/chat"
)

// ServerError is returned when the server rejects a request before streaming.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client posts conversations to a ragchat server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Send posts messages to endpoint and calls onChunk with every text chunk as
// it arrives. It returns once the stream has finished or failed.
func (c *Client) Send(ctx context.Context, endpoint string, messages []chat.UIMessage, onChunk func(string)) error {
	body, err := json.Marshal(chat.Request{Messages: messages})
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return serverError(resp)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return ReadUIMessageStream(resp.Body, onChunk)
	}
	return ReadDataStream(resp.Body, onChunk)
}

func serverError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var e chat.ErrorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return &ServerError{Status: resp.StatusCode, Message: e.Error}
	}
	return &ServerError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}

// UserMessage builds a single text part user message.
func UserMessage(text string) chat.UIMessage {
	return message("user", text)
}

// AssistantMessage builds a single text part assistant message, used to send
// earlier replies back as history.
func AssistantMessage(text string) chat.UIMessage {
	return message("assistant", text)
}

func message(role, text string) chat.UIMessage {
	return chat.UIMessage{
		ID:    uuid.NewString(),
		Role:  role,
		Parts: []chat.Part{{Type: "text", Text: text}},
	}
}
