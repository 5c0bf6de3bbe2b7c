// Package stream translates a model's chunk stream into one of the wire
// protocols the browser chat client understands.
package stream

import (
	"bytes"
	"encoding/json"
	"io"
)

// Header is a response header an encoder requires.
type Header struct {
	Key   string
	Value string
}

// Encoder writes protocol frames. Open is written before the first chunk,
// Finish after the last one, and Fail instead of Finish when the model fails.
type Encoder interface {
	Headers() []Header
	Open(w io.Writer) error
	Chunk(w io.Writer, text string) error
	Finish(w io.Writer) error
	Fail(w io.Writer, err error) error
}

// marshal encodes v as compact JSON without HTML escaping and without the
// trailing newline json.Encoder appends.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
