package askcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/client"
	"github.com/papercomputeco/ragchat/pkg/termui"
)

const askLongDesc string = `Ask a running ragchat server a question.

Posts the question as a single user message and prints the answer as it
streams. Both the data stream endpoints (/api/chat, /api/chat-langchain) and
the UI message stream endpoints (/api/chat-ui, /api/chat-rag) are understood.
On a terminal the finished answer is rendered as markdown.

Examples:
  ragchat ask http://localhost:8080 "Why is the sky blue?"
  ragchat ask --endpoint /api/chat-rag http://localhost:8080 "Apa ibu kota Jawa Barat?"`

const askShortDesc string = "Ask a running server a question"

type askCommander struct {
	endpoint string
	raw      bool
	style    string
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <server-url> <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0], args[1])
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&cmder.endpoint, "endpoint", "e", "/api/chat", "Chat endpoint to post to")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print chunks as they arrive, never render markdown")
	cmd.Flags().StringVar(&cmder.style, "style", "auto", "Markdown style (auto, dark, light, notty)")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, serverURL, question string) error {
	out := cmd.OutOrStdout()
	width, tty := termui.Width(out)
	live := c.raw || !tty
	styles := termui.NewStyles(out, tty)

	var answer strings.Builder
	onChunk := func(text string) {
		if tty {
			text = termui.Sanitize(text)
		}
		answer.WriteString(text)
		if live {
			fmt.Fprint(out, text)
		}
	}

	messages := []chat.UIMessage{client.UserMessage(question)}
	err := client.New(serverURL, nil).Send(ctx, c.endpoint, messages, onChunk)

	switch {
	case answer.Len() == 0:
	case live:
		fmt.Fprintln(out)
	default:
		rendered, rerr := termui.Render(answer.String(), c.style, width)
		if rerr != nil {
			rendered = answer.String()
		}
		fmt.Fprintln(out, styles.Assistant.Render("assistant"))
		fmt.Fprint(out, rendered)
	}

	if err != nil {
		if tty {
			fmt.Fprintln(cmd.ErrOrStderr(), styles.Error.Render("error: ")+termui.Sanitize(err.Error()))
		}
		return err
	}
	return nil
}
