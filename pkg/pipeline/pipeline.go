// Package pipeline runs the request stages shared by every chat endpoint:
// decode, history formatting, optional document context and prompt rendering.
// Opening the model stream and translating it are left to the caller.
package pipeline

import (
	"context"
	"fmt"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/docs"
	"github.com/papercomputeco/ragchat/pkg/prompt"
	"github.com/papercomputeco/ragchat/pkg/stream"
)

// Protocol selects the response wire format.
type Protocol int

const (
	DataStream Protocol = iota
	UIMessageStream
)

// Variant describes one chat endpoint.
type Variant struct {
	Path     string
	Template prompt.Template
	RAG      bool
	Protocol Protocol
}

// Encoder returns a fresh encoder for the variant's protocol.
func (v Variant) Encoder() stream.Encoder {
	if v.Protocol == UIMessageStream {
		return stream.NewUIMessageStream()
	}
	return stream.DataStream{}
}

// Variants served by the HTTP server.
var (
	Chat          = Variant{Path: "/api/chat", Template: prompt.Chat, Protocol: DataStream}
	ChatLangchain = Variant{Path: "/api/chat-langchain", Template: prompt.Chat, Protocol: DataStream}
	ChatUI        = Variant{Path: "/api/chat-ui", Template: prompt.Chat, Protocol: UIMessageStream}
	RAG           = Variant{Path: "/api/chat-rag", Template: prompt.RAG, RAG: true, Protocol: UIMessageStream}
)

// Variants lists every served variant in route registration order.
func Variants() []Variant {
	return []Variant{Chat, ChatLangchain, ChatUI, RAG}
}

// Lookup returns the variant served at path.
func Lookup(path string) (Variant, bool) {
	for _, v := range Variants() {
		if v.Path == path {
			return v, true
		}
	}
	return Variant{}, false
}

// Stage names, also used as error codes.
const (
	StageDecode    = "decode"
	StageDocuments = "documents"
	StagePrompt    = "prompt"
)

// StageError records which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Prepared is a request ready to be sent to the model.
type Prepared struct {
	Turns   []chat.Turn
	History string
	Input   string

	// Documents is the number of records assembled into the context.
	Documents int

	Prompt string
}

// Prepare runs every stage up to and including prompt rendering. Documents are
// only loaded for RAG variants; src may be nil otherwise.
func Prepare(ctx context.Context, v Variant, body []byte, src docs.Source) (*Prepared, error) {
	turns, err := chat.Decode(body)
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Err: err}
	}

	p := &Prepared{Turns: turns}
	p.History, p.Input = chat.FormatHistory(turns)
	values := prompt.Values{History: p.History, Input: p.Input}

	if v.RAG {
		if src == nil {
			return nil, &StageError{Stage: StageDocuments, Err: fmt.Errorf("no document source configured")}
		}
		records, err := src.Load(ctx)
		if err != nil {
			return nil, &StageError{Stage: StageDocuments, Err: err}
		}
		assembled, err := docs.Assemble(records)
		if err != nil {
			return nil, &StageError{Stage: StageDocuments, Err: err}
		}
		p.Documents = len(records)
		values.Context = assembled
	}

	p.Prompt, err = v.Template.Render(values)
	if err != nil {
		return nil, &StageError{Stage: StagePrompt, Err: err}
	}
	return p, nil
}
