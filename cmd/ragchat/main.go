package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/ragchat/cmd/ragchat/ask"
	chatcmder "github.com/papercomputeco/ragchat/cmd/ragchat/chat"
	mcpcmder "github.com/papercomputeco/ragchat/cmd/ragchat/mcp"
	mergecmder "github.com/papercomputeco/ragchat/cmd/ragchat/merge"
	promptcmder "github.com/papercomputeco/ragchat/cmd/ragchat/prompt"
	servecmder "github.com/papercomputeco/ragchat/cmd/ragchat/serve"
)

const rootLongDesc string = `ragchat streams chat completions from a hosted model to browser clients.

The plain chat endpoints forward the conversation through a persona prompt.
The RAG endpoint injects every document of a static JSON collection as context.`

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cobra.Command{
		Use:          "ragchat",
		Short:        "Streaming chat and RAG server",
		Long:         rootLongDesc,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		servecmder.NewServeCmd(),
		promptcmder.NewPromptCmd(),
		askcmder.NewAskCmd(),
		chatcmder.NewChatCmd(),
		mergecmder.NewMergeCmd(),
		mcpcmder.NewMCPCmd(),
	)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
