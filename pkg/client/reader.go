package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxLine = 1024 * 1024

// StreamError carries the message of an error frame or event.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "stream failed: " + e.Message
}

// ErrTruncated is returned when a stream ends before its terminal frame.
var ErrTruncated = errors.New("stream ended before it finished")

// ReadDataStream consumes "0:" text frames until the "d:" finish frame. A "3:"
// frame ends the stream with a StreamError.
func ReadDataStream(r io.Reader, onChunk func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	for scanner.Scan() {
		code, payload, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch code {
		case "0":
			var text string
			if err := json.Unmarshal([]byte(payload), &text); err != nil {
				return fmt.Errorf("could not decode text frame: %w", err)
			}
			onChunk(text)
		case "3":
			var msg string
			if err := json.Unmarshal([]byte(payload), &msg); err != nil {
				msg = payload
			}
			return &StreamError{Message: msg}
		case "d":
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read stream: %w", err)
	}
	return ErrTruncated
}

type uiEvent struct {
	Type      string `json:"type"`
	Delta     string `json:"delta"`
	ErrorText string `json:"errorText"`
}

// ReadUIMessageStream consumes server-sent events until "data: [DONE]". An
// error event makes the stream fail with a StreamError.
func ReadUIMessageStream(r io.Reader, onChunk func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	var (
		failure  error
		finished bool
	)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			switch {
			case failure != nil:
				return failure
			case !finished:
				return ErrTruncated
			default:
				return nil
			}
		}

		var ev uiEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("could not decode event: %w", err)
		}
		switch ev.Type {
		case "text-delta":
			onChunk(ev.Delta)
		case "error":
			failure = &StreamError{Message: ev.ErrorText}
		case "finish":
			finished = true
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read stream: %w", err)
	}
	if failure != nil {
		return failure
	}
	return ErrTruncated
}
