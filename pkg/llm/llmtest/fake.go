// Package llmtest provides scripted llm.Client and llm.Stream fakes.
package llmtest

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/papercomputeco/ragchat/pkg/llm"
)

// Stream replays Chunks and then returns Err, or io.EOF when Err is nil.
type Stream struct {
	Chunks []string
	Err    error

	mu     sync.Mutex
	pos    int
	closes atomic.Int32
	reads  atomic.Int32
}

func (s *Stream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads.Add(1)

	if s.pos < len(s.Chunks) {
		c := s.Chunks[s.pos]
		s.pos++
		return c, nil
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

func (s *Stream) Close() error {
	s.closes.Add(1)
	return nil
}

// Closes reports how many times Close was called.
func (s *Stream) Closes() int {
	return int(s.closes.Load())
}

// Reads reports how many times Recv was called.
func (s *Stream) Reads() int {
	return int(s.reads.Load())
}

// Client hands out Script, or fails with OpenErr, and records every request.
type Client struct {
	Script  *Stream
	OpenErr error
	Name    string

	mu       sync.Mutex
	requests []llm.Request
}

func (c *Client) Stream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	if c.Script == nil {
		return &Stream{}, nil
	}
	return c.Script, nil
}

func (c *Client) Model() string {
	if c.Name == "" {
		return "fake-model"
	}
	return c.Name
}

// Requests returns every request the client received.
func (c *Client) Requests() []llm.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.Request(nil), c.requests...)
}
