package mcpcmder

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/mcpserver"
	"github.com/papercomputeco/ragchat/pkg/bootstrap"
	"github.com/papercomputeco/ragchat/pkg/config"
	"github.com/papercomputeco/ragchat/pkg/logger"
)

const mcpLongDesc string = `Serve the chat pipeline as Model Context Protocol tools over stdio.

Tools:
  render_prompt     the prompt an endpoint would send for a conversation
  document_context  every document of the collection as a context block
  chat              the model's answer to the last message of a conversation

Logs go to stderr since stdout carries the protocol.

Examples:
  ragchat mcp
  ragchat mcp --config ragchat.toml`

const mcpShortDesc string = "Serve MCP tools over stdio"

type mcpCommander struct {
	configPath string
	envFile    string
	debug      bool
	version    string
}

func NewMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmder.version = cmd.Root().Version
			return cmder.run(ctx, &mcp.StdioTransport{})
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file (defaults to $RAGCHAT_CONFIG)")
	cmd.Flags().StringVar(&cmder.envFile, "env-file", ".env", "Path to .env file (ignored when missing)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *mcpCommander) run(ctx context.Context, transport mcp.Transport) error {
	cfg, err := config.Load(c.configPath, c.envFile)
	if err != nil {
		return err
	}
	if c.debug {
		cfg.Server.Debug = true
	}

	log := logger.NewLoggerTo(os.Stderr, cfg.Server.Debug, cfg.Server.LogFormat)
	defer log.Sync()

	client, err := bootstrap.Client(ctx, cfg, log)
	if err != nil {
		return err
	}

	src, closeDocs, err := bootstrap.Documents(ctx, cfg.Documents, log)
	if err != nil {
		return err
	}
	defer closeDocs()

	log.Info("ragchat mcp server starting",
		zap.String("provider", cfg.Model.Provider),
		zap.String("model", cfg.Model.Model),
		zap.String("documents", cfg.Documents.Path),
	)

	srv := mcpserver.New(mcpserver.Options{
		Client:    client,
		Documents: src,
		Logger:    log,
		Version:   c.version,
	})
	if err := srv.Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
