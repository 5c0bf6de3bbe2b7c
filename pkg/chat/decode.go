package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyBody is returned when a request carries no body at all.
var ErrEmptyBody = errors.New("empty request body")

// Decode parses a request body into turns, preserving message order.
func Decode(body []byte) ([]Turn, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("decode request: %w", ErrEmptyBody)
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	turns := make([]Turn, 0, len(req.Messages))
	for _, msg := range req.Messages {
		turns = append(turns, Turn{Role: msg.Role, Text: msg.text()})
	}

	return turns, nil
}

// text concatenates the text parts of a message, falling back to the legacy
// content field when the message has no parts.
func (m UIMessage) text() string {
	if len(m.Parts) == 0 {
		return m.Content
	}

	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
