package servecmder

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/ragchat/pkg/bootstrap"
	"github.com/papercomputeco/ragchat/pkg/config"
	"github.com/papercomputeco/ragchat/pkg/logger"
	"github.com/papercomputeco/ragchat/server"
)

const serveLongDesc string = `Run the chat server.

Configuration is read from an optional TOML file, then a .env file, then
RAGCHAT_* environment variables. The model API key is read from the variable
named by model.api_key_env (GROQ_API_KEY by default).

Examples:
  ragchat serve
  ragchat serve --config ragchat.toml --listen :3000 --debug`

const serveShortDesc string = "Run the chat server"

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	configPath string
	envFile    string
	listen     string
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cmder.run(ctx)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file (defaults to $RAGCHAT_CONFIG)")
	cmd.Flags().StringVar(&cmder.envFile, "env-file", ".env", "Path to .env file (ignored when missing)")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	cfg, err := config.Load(c.configPath, c.envFile)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Server.Listen = c.listen
	}
	if c.debug {
		cfg.Server.Debug = true
	}

	log := logger.NewLogger(cfg.Server.Debug, cfg.Server.LogFormat)
	defer log.Sync()

	log.Info("ragchat starting",
		zap.String("listen", cfg.Server.Listen),
		zap.String("provider", cfg.Model.Provider),
		zap.String("model", cfg.Model.Model),
		zap.String("documents", cfg.Documents.Path),
		zap.Bool("debug", cfg.Server.Debug),
	)

	client, err := bootstrap.Client(ctx, cfg, log)
	if err != nil {
		return err
	}

	src, closeDocs, err := bootstrap.Documents(ctx, cfg.Documents, log)
	if err != nil {
		return err
	}
	defer closeDocs()

	recorder, closeStore, err := bootstrap.Recorder(cfg.Transcripts, log)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := server.New(server.Options{
		Config: server.Config{
			ListenAddr:  cfg.Server.Listen,
			CORSOrigins: cfg.Server.CORSOrigins,
		},
		Client:    client,
		Documents: src,
		Recorder:  recorder,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	return serve(ctx, srv, ln, log)
}

// serve runs srv until ctx is done or the server fails, then drains open
// streams.
func serve(ctx context.Context, srv *server.Server, ln net.Listener, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.RunWithListener(ln)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
