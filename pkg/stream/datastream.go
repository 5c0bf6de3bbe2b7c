package stream

import (
	"io"
)

// DataStream encodes the line based data stream protocol (v1): text parts are
// "0:<json string>", errors "3:<json string>" and the finish message
// "d:<json object>", each terminated by a newline.
type DataStream struct{}

func (DataStream) Headers() []Header {
	return []Header{
		{Key: "Content-Type", Value: "text/plain; charset=utf-8"},
		{Key: "X-Vercel-AI-Data-Stream", Value: "v1"},
	}
}

func (DataStream) Open(io.Writer) error {
	return nil
}

func (DataStream) Chunk(w io.Writer, text string) error {
	return writeLine(w, "0:", text)
}

func (DataStream) Finish(w io.Writer) error {
	return writeLine(w, "d:", map[string]string{"finishReason": "stop"})
}

func (DataStream) Fail(w io.Writer, err error) error {
	return writeLine(w, "3:", err.Error())
}

func writeLine(w io.Writer, code string, v any) error {
	payload, err := marshal(v)
	if err != nil {
		return err
	}
	line := make([]byte, 0, len(code)+len(payload)+1)
	line = append(line, code...)
	line = append(line, payload...)
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}
