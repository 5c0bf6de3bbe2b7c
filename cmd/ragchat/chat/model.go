package chatcmder

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/client"
	"github.com/papercomputeco/ragchat/pkg/termui"
)

// inputHeight is the number of rows below the viewport: status and input.
const inputHeight = 2

type chunkMsg string

type replyDoneMsg struct {
	err error
}

// entry is one rendered line of the conversation.
type entry struct {
	role string // "user", "assistant", "error"
	text string
}

// model is the bubbletea model of the chat screen. Only the model's Update
// touches its state; the request goroutine talks to it over stream.
type model struct {
	ctx      context.Context
	client   *client.Client
	endpoint string
	style    string
	styles   termui.Styles

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int

	// messages is the history sent with every request.
	messages []chat.UIMessage
	entries  []entry

	streaming bool
	partial   string
	stream    chan tea.Msg
}

func newModel(ctx context.Context, c *client.Client, endpoint, style string, styles termui.Styles) model {
	ti := textinput.New()
	ti.Placeholder = "Ask something..."
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Focus()

	return model{
		ctx:      ctx,
		client:   c,
		endpoint: endpoint,
		style:    style,
		styles:   styles,
		input:    ti,
		viewport: viewport.New(termui.DefaultWidth, 20),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:    termui.DefaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-inputHeight, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case chunkMsg:
		m.partial += termui.Sanitize(string(msg))
		m.refresh()
		return m, waitFor(m.stream)

	case replyDoneMsg:
		m.finish(msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed question with the conversation so far.
func (m model) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.streaming {
		return m, nil
	}
	m.input.Reset()

	m.messages = append(m.messages, client.UserMessage(question))
	m.entries = append(m.entries, entry{role: "user", text: question})
	m.streaming = true
	m.partial = ""
	m.stream = make(chan tea.Msg)
	m.refresh()

	go send(m.ctx, m.client, m.endpoint, append([]chat.UIMessage(nil), m.messages...), m.stream)

	return m, tea.Batch(waitFor(m.stream), m.spinner.Tick)
}

// finish records the streamed reply. A failed exchange is dropped from the
// history so the next request does not carry an unanswered question.
func (m *model) finish(err error) {
	m.streaming = false
	m.stream = nil

	if err != nil {
		m.messages = m.messages[:len(m.messages)-1]
		if m.partial != "" {
			m.entries = append(m.entries, entry{role: "assistant", text: m.partial})
		}
		m.entries = append(m.entries, entry{role: "error", text: termui.Sanitize(err.Error())})
	} else {
		m.messages = append(m.messages, client.AssistantMessage(m.partial))
		m.entries = append(m.entries, entry{role: "assistant", text: m.partial})
	}
	m.partial = ""
	m.refresh()
}

func (m *model) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m model) render() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch e.role {
		case "user":
			b.WriteString(m.styles.User.Render("you") + "\n" + e.text + "\n\n")
		case "assistant":
			b.WriteString(m.styles.Assistant.Render("assistant") + "\n" + m.markdown(e.text) + "\n")
		default:
			b.WriteString(m.styles.Error.Render("error: ") + e.text + "\n\n")
		}
	}
	if m.streaming {
		b.WriteString(m.styles.Assistant.Render("assistant") + "\n" + m.partial + "\n")
	}
	return b.String()
}

func (m model) markdown(text string) string {
	out, err := termui.Render(text, m.style, m.width)
	if err != nil {
		return text + "\n"
	}
	return out
}

func (m model) View() string {
	status := m.styles.Muted.Render("enter to send, esc to quit")
	if m.streaming {
		status = m.spinner.View() + m.styles.Muted.Render(" streaming...")
	}
	return m.viewport.View() + "\n" + status + "\n" + m.input.View()
}

// send runs one request and reports chunks and the outcome on out. It stops
// delivering once ctx is done so it never outlives the program.
func send(ctx context.Context, c *client.Client, endpoint string, messages []chat.UIMessage, out chan<- tea.Msg) {
	deliver := func(msg tea.Msg) bool {
		select {
		case out <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	err := c.Send(ctx, endpoint, messages, func(text string) {
		deliver(chunkMsg(text))
	})
	deliver(replyDoneMsg{err: err})
}

// waitFor turns the next message from the request goroutine into a command.
func waitFor(stream <-chan tea.Msg) tea.Cmd {
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		return <-stream
	}
}
