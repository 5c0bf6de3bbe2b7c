// Package mcpserver exposes the chat pipeline as Model Context Protocol tools,
// so agents can render prompts, read the document context and ask the model
// without going through the HTTP endpoints.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/docs"
	"github.com/papercomputeco/ragchat/pkg/llm"
	"github.com/papercomputeco/ragchat/pkg/pipeline"
)

// Tool names.
const (
	ToolRenderPrompt = "render_prompt"
	ToolDocuments    = "document_context"
	ToolChat         = "chat"
)

// Options carries the server's collaborators. Client may be nil, in which case
// the chat tool is not registered.
type Options struct {
	Client    llm.Client
	Documents docs.Source
	Logger    *zap.Logger
	Version   string
}

// Message is one conversation turn as sent by a tool caller.
type Message struct {
	Role string `json:"role" jsonschema:"user or assistant"`
	Text string `json:"text" jsonschema:"the message text"`
}

// ConversationInput selects an endpoint variant and carries the conversation.
type ConversationInput struct {
	Endpoint string    `json:"endpoint,omitempty" jsonschema:"endpoint whose prompt is used, e.g. /api/chat or /api/chat-rag; defaults to /api/chat"`
	Messages []Message `json:"messages" jsonschema:"the conversation, oldest first; the last message is the question"`
}

type PromptOutput struct {
	Prompt    string `json:"prompt"`
	Documents int    `json:"documents"`
}

type DocumentsInput struct{}

type DocumentsOutput struct {
	Count   int    `json:"count"`
	Context string `json:"context"`
}

type ChatOutput struct {
	Reply  string `json:"reply"`
	Model  string `json:"model"`
	Chunks int    `json:"chunks"`
}

type tools struct {
	client llm.Client
	docs   docs.Source
	logger *zap.Logger
}

// New creates the MCP server with its tools registered.
func New(opts Options) *mcp.Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	t := &tools{client: opts.Client, docs: opts.Documents, logger: opts.Logger}
	s := mcp.NewServer(&mcp.Implementation{Name: "ragchat", Version: opts.Version}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolRenderPrompt,
		Description: "Render the exact prompt a chat endpoint would send to the model for a conversation.",
	}, t.renderPrompt)

	mcp.AddTool(s, &mcp.Tool{
		Name:        ToolDocuments,
		Description: "Return every document of the collection as the context block used by the RAG endpoint.",
	}, t.documentContext)

	if opts.Client != nil {
		mcp.AddTool(s, &mcp.Tool{
			Name:        ToolChat,
			Description: "Answer the last message of a conversation with the configured model.",
		}, t.chat)
	}

	return s
}

func (t *tools) renderPrompt(ctx context.Context, _ *mcp.CallToolRequest, in ConversationInput) (*mcp.CallToolResult, PromptOutput, error) {
	prepared, err := t.prepare(ctx, in)
	if err != nil {
		return nil, PromptOutput{}, err
	}
	return nil, PromptOutput{Prompt: prepared.Prompt, Documents: prepared.Documents}, nil
}

func (t *tools) documentContext(ctx context.Context, _ *mcp.CallToolRequest, _ DocumentsInput) (*mcp.CallToolResult, DocumentsOutput, error) {
	if t.docs == nil {
		return nil, DocumentsOutput{}, errors.New("no document source configured")
	}

	records, err := t.docs.Load(ctx)
	if err != nil {
		return nil, DocumentsOutput{}, err
	}
	assembled, err := docs.Assemble(records)
	if err != nil {
		return nil, DocumentsOutput{}, err
	}
	return nil, DocumentsOutput{Count: len(records), Context: assembled}, nil
}

func (t *tools) chat(ctx context.Context, _ *mcp.CallToolRequest, in ConversationInput) (*mcp.CallToolResult, ChatOutput, error) {
	prepared, err := t.prepare(ctx, in)
	if err != nil {
		return nil, ChatOutput{}, err
	}

	src, err := t.client.Stream(ctx, llm.PromptRequest(prepared.Prompt))
	if err != nil {
		t.logger.Error("failed to open model stream", zap.String("tool", ToolChat), zap.Error(err))
		return nil, ChatOutput{}, err
	}
	defer src.Close()

	out := ChatOutput{Model: t.client.Model()}
	var reply strings.Builder
	for {
		chunk, err := src.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.logger.Error("model stream failed", zap.String("tool", ToolChat), zap.Int("chunks", out.Chunks), zap.Error(err))
			return nil, ChatOutput{}, err
		}
		out.Chunks++
		reply.WriteString(chunk)
	}
	out.Reply = reply.String()

	t.logger.Debug("tool answered",
		zap.String("tool", ToolChat),
		zap.Int("chunks", out.Chunks),
		zap.Int("reply_len", len(out.Reply)),
	)
	return nil, out, nil
}

// prepare runs the shared request stages on a tool conversation by encoding it
// as the body an HTTP client would send.
func (t *tools) prepare(ctx context.Context, in ConversationInput) (*pipeline.Prepared, error) {
	endpoint := in.Endpoint
	if endpoint == "" {
		endpoint = pipeline.Chat.Path
	}
	variant, ok := pipeline.Lookup(endpoint)
	if !ok {
		return nil, fmt.Errorf("unknown endpoint %q", endpoint)
	}

	req := chat.Request{Messages: make([]chat.UIMessage, len(in.Messages))}
	for i, m := range in.Messages {
		req.Messages[i] = chat.UIMessage{Role: m.Role, Parts: []chat.Part{{Type: "text", Text: m.Text}}}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	return pipeline.Prepare(ctx, variant, body, t.docs)
}
