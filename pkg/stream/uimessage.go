package stream

import (
	"io"

	"github.com/google/uuid"
)

// UIMessageStream encodes the UI message stream protocol (v1) as server-sent
// events. A single assistant message carries one text part.
type UIMessageStream struct {
	messageID string
	textID    string
}

type uiEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId,omitempty"`
	ID        string `json:"id,omitempty"`
	Delta     string `json:"delta,omitempty"`
	ErrorText string `json:"errorText,omitempty"`
}

// NewUIMessageStream creates an encoder with fresh message and part ids.
func NewUIMessageStream() *UIMessageStream {
	return &UIMessageStream{
		messageID: "msg-" + uuid.NewString(),
		textID:    uuid.NewString(),
	}
}

func (e *UIMessageStream) Headers() []Header {
	return []Header{
		{Key: "Content-Type", Value: "text/event-stream"},
		{Key: "Cache-Control", Value: "no-cache"},
		{Key: "Connection", Value: "keep-alive"},
		{Key: "X-Accel-Buffering", Value: "no"},
		{Key: "X-Vercel-AI-UI-Message-Stream", Value: "v1"},
	}
}

func (e *UIMessageStream) Open(w io.Writer) error {
	return writeEvents(w,
		uiEvent{Type: "start", MessageID: e.messageID},
		uiEvent{Type: "start-step"},
		uiEvent{Type: "text-start", ID: e.textID},
	)
}

func (e *UIMessageStream) Chunk(w io.Writer, text string) error {
	return writeEvents(w, uiEvent{Type: "text-delta", ID: e.textID, Delta: text})
}

func (e *UIMessageStream) Finish(w io.Writer) error {
	if err := writeEvents(w,
		uiEvent{Type: "text-end", ID: e.textID},
		uiEvent{Type: "finish-step"},
		uiEvent{Type: "finish"},
	); err != nil {
		return err
	}
	return writeDone(w)
}

func (e *UIMessageStream) Fail(w io.Writer, err error) error {
	if werr := writeEvents(w, uiEvent{Type: "error", ErrorText: err.Error()}); werr != nil {
		return werr
	}
	return writeDone(w)
}

func writeEvents(w io.Writer, events ...uiEvent) error {
	for _, ev := range events {
		payload, err := marshal(ev)
		if err != nil {
			return err
		}
		frame := make([]byte, 0, len(payload)+8)
		frame = append(frame, "data: "...)
		frame = append(frame, payload...)
		frame = append(frame, '\n', '\n')
		if _, err := w.Write(frame); err != nil {
			return err
		}
	}
	return nil
}

func writeDone(w io.Writer) error {
	_, err := io.WriteString(w, "data: [DONE]\n\n")
	return err
}
