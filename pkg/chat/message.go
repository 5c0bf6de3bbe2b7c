package chat

// Part is one typed piece of a UI message. Only "text" parts carry prompt content;
// every other part type (files, reasoning, tool calls) is ignored.
type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// UIMessage is a message as sent by the chat front end.
type UIMessage struct {
	ID    string `json:"id,omitempty"`
	Role  string `json:"role"` // "user", "assistant", "system"
	Parts []Part `json:"parts,omitempty"`

	// Content is the flat text field sent by older clients that predate parts.
	Content string `json:"content,omitempty"`
}

// Request is the body of every chat endpoint.
type Request struct {
	Messages []UIMessage `json:"messages"`
}

// Turn is a decoded message reduced to its role and text.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
