package chatcmder

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/ragchat/pkg/client"
	"github.com/papercomputeco/ragchat/pkg/termui"
)

const chatLongDesc string = `Chat with a running ragchat server in the terminal.

Every question is sent together with the conversation so far, so the server
sees the full history. Answers stream in as they are generated and are
rendered as markdown once complete.

Keys: enter sends, esc or ctrl+c quits.

Examples:
  ragchat chat http://localhost:8080
  ragchat chat --endpoint /api/chat-rag http://localhost:8080`

const chatShortDesc string = "Interactive chat with a running server"

type chatCommander struct {
	endpoint string
	style    string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat <server-url>",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), args[0])
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&cmder.endpoint, "endpoint", "e", "/api/chat", "Chat endpoint to post to")
	cmd.Flags().StringVar(&cmder.style, "style", "auto", "Markdown style (auto, dark, light, notty)")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, serverURL string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("chat needs an interactive terminal, use ask instead")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, client.New(serverURL, nil), c.endpoint, c.style, termui.NewStyles(os.Stdout, true))
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
