package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/ragchat/pkg/llm"
)

var (
	// ErrClosed is returned when a frame is emitted after the stream closed.
	ErrClosed = errors.New("stream closed")

	// ErrClientGone wraps sink failures, which mean the client went away.
	ErrClientGone = errors.New("client disconnected")
)

// Sink receives encoded frames. *bufio.Writer satisfies it.
type Sink interface {
	io.Writer
	Flush() error
}

// State is the translator lifecycle.
type State int

const (
	Streaming State = iota
	Closed
)

func (s State) String() string {
	if s == Closed {
		return "closed"
	}
	return "streaming"
}

// Result summarizes a finished translation.
type Result struct {
	// Chunks is the number of text chunks delivered to the client.
	Chunks int

	// Text is the concatenation of every delivered chunk.
	Text string

	// Err is the model failure that ended the stream, if any.
	Err error

	// Disconnected is set when writing to the client failed.
	Disconnected bool

	// FirstChunk is the delay between Run starting and the first chunk.
	FirstChunk time.Duration
}

// Completed reports whether the stream reached its terminal frame.
func (r Result) Completed() bool {
	return r.Err == nil && !r.Disconnected
}

// Translator pulls chunks from a model stream and writes each one to the sink
// as a frame, flushing after every frame. Once Closed no further frame is
// written and the model stream has been closed exactly once.
type Translator struct {
	src  llm.Stream
	sink Sink
	enc  Encoder

	state     State
	closeOnce sync.Once
	result    Result
	text      strings.Builder
}

// NewTranslator creates a translator in the Streaming state.
func NewTranslator(src llm.Stream, sink Sink, enc Encoder) *Translator {
	return &Translator{src: src, sink: sink, enc: enc}
}

// Pipe translates src into sink until the model finishes, fails, the context
// is cancelled or the client disconnects.
func Pipe(ctx context.Context, src llm.Stream, sink Sink, enc Encoder) Result {
	return NewTranslator(src, sink, enc).Run(ctx)
}

// State returns the current lifecycle state.
func (t *Translator) State() State {
	return t.state
}

// Run drives the state machine to completion.
func (t *Translator) Run(ctx context.Context) Result {
	defer t.close()
	start := time.Now()

	if err := t.emit(t.enc.Open); err != nil {
		return t.finish()
	}

	for {
		if err := ctx.Err(); err != nil {
			return t.fail(err)
		}

		chunk, err := t.src.Recv()
		if errors.Is(err, io.EOF) {
			if err := t.emit(t.enc.Finish); err != nil {
				return t.finish()
			}
			t.close()
			return t.finish()
		}
		if err != nil {
			return t.fail(err)
		}

		if err := t.emit(func(w io.Writer) error { return t.enc.Chunk(w, chunk) }); err != nil {
			return t.finish()
		}

		if t.result.Chunks == 0 {
			t.result.FirstChunk = time.Since(start)
		}
		t.result.Chunks++
		t.text.WriteString(chunk)
	}
}

// emit writes and flushes one frame. A write failure closes the translator.
func (t *Translator) emit(write func(io.Writer) error) error {
	if t.state == Closed {
		return ErrClosed
	}

	err := write(t.sink)
	if err == nil {
		err = t.sink.Flush()
	}
	if err != nil {
		t.result.Disconnected = true
		t.close()
		return fmt.Errorf("%w: %v", ErrClientGone, err)
	}
	return nil
}

// fail writes the error frame and closes without a terminal frame.
func (t *Translator) fail(cause error) Result {
	t.result.Err = cause
	_ = t.emit(func(w io.Writer) error { return t.enc.Fail(w, cause) })
	t.close()
	return t.finish()
}

func (t *Translator) close() {
	t.state = Closed
	t.closeOnce.Do(func() {
		_ = t.src.Close()
	})
}

func (t *Translator) finish() Result {
	t.result.Text = t.text.String()
	return t.result
}
