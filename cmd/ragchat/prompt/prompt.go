package promptcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/pkg/docs"
	"github.com/papercomputeco/ragchat/pkg/pipeline"
)

const promptLongDesc string = `Render the prompt an endpoint would send to the model.

Reads a chat request body (JSON with a "messages" array) from a file, or from
stdin when no file is given, and prints the rendered prompt. Nothing is sent
to the model.

Examples:
  ragchat prompt request.json
  echo '{"messages":[{"role":"user","parts":[{"type":"text","text":"Hi"}]}]}' | ragchat prompt
  ragchat prompt --endpoint /api/chat-rag --documents data/data.json request.json`

const promptShortDesc string = "Render a prompt without calling the model"

type promptCommander struct {
	endpoint  string
	documents string
	fields    []string
}

func NewPromptCmd() *cobra.Command {
	cmder := &promptCommander{}

	cmd := &cobra.Command{
		Use:   "prompt [request-file]",
		Short: promptShortDesc,
		Long:  promptLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return cmder.run(cmd.Context(), cmd, path)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&cmder.endpoint, "endpoint", "e", pipeline.Chat.Path, "Endpoint whose prompt is rendered")
	cmd.Flags().StringVarP(&cmder.documents, "documents", "d", "data/data.json", "Document collection for the RAG endpoint")
	cmd.Flags().StringSliceVar(&cmder.fields, "field", nil, "JSON pointer to keep from each document (repeatable, default: built-in list)")

	return cmd
}

func (c *promptCommander) run(ctx context.Context, cmd *cobra.Command, path string) error {
	variant, ok := lookup(c.endpoint)
	if !ok {
		return fmt.Errorf("unknown endpoint %q", c.endpoint)
	}

	body, err := readBody(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	var src docs.Source
	if variant.RAG {
		src = docs.NewFileSource(c.documents, c.fields)
	}

	prepared, err := pipeline.Prepare(ctx, variant, body, src)
	if err != nil {
		return fmt.Errorf("could not render prompt: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), prepared.Prompt)
	if variant.RAG {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d documents in context\n", prepared.Documents)
	}
	return nil
}

func lookup(endpoint string) (pipeline.Variant, bool) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/api/" + endpoint
	}
	return pipeline.Lookup(endpoint)
}

func readBody(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("could not read stdin: %w", err)
		}
		return body, nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return body, nil
}
