package llm

import "io"

// peek reads the first chunk of s so that failures to start generating are
// returned from Client.Stream rather than from the first Recv.
func peek(s Stream) (Stream, error) {
	first, err := s.Recv()
	if err != nil && err != io.EOF {
		s.Close()
		return nil, err
	}
	return &peekedStream{Stream: s, first: first, firstErr: err, pending: true}, nil
}

type peekedStream struct {
	Stream
	first    string
	firstErr error
	pending  bool
}

func (p *peekedStream) Recv() (string, error) {
	if p.pending {
		p.pending = false
		if p.firstErr != nil {
			return "", p.firstErr
		}
		return p.first, nil
	}
	return p.Stream.Recv()
}
