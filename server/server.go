// Package server exposes the chat pipeline over HTTP and streams model output
// back to browser clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/docs"
	"github.com/papercomputeco/ragchat/pkg/llm"
	"github.com/papercomputeco/ragchat/pkg/metrics"
	"github.com/papercomputeco/ragchat/pkg/pipeline"
	"github.com/papercomputeco/ragchat/pkg/transcript"
)

// Options carries the server's collaborators.
type Options struct {
	Config    Config
	Client    llm.Client
	Documents docs.Source

	// Recorder is optional; nil disables transcript recording and its routes.
	Recorder *transcript.Recorder

	// Metrics is optional; nil creates a private set.
	Metrics *metrics.Metrics

	Logger *zap.Logger
}

// Server handles the chat endpoints. It holds no per-request state: every
// request runs its own pipeline and model stream.
type Server struct {
	config   Config
	client   llm.Client
	docs     docs.Source
	recorder *transcript.Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
	app      *fiber.App
}

// New creates a Server and registers its routes.
func New(opts Options) (*Server, error) {
	if opts.Client == nil {
		return nil, errors.New("server requires a model client")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s := &Server{
		config:   opts.Config,
		client:   opts.Client,
		docs:     opts.Documents,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		app:      app,
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(opts.Config.CORSOrigins),
		AllowMethods: "GET,POST,OPTIONS",
	}))

	for _, v := range pipeline.Variants() {
		app.Post(v.Path, s.handleChat(v))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	if s.recorder != nil {
		app.Get("/transcripts", s.handleListTranscripts)
		app.Get("/transcripts/:hash", s.handleGetTranscript)
	}

	return s, nil
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen binds the configured listening address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", s.config.ListenAddr, err)
	}
	return ln, nil
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting chat server",
		zap.String("listen", ln.Addr().String()),
		zap.String("model", s.client.Model()),
	)
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for open streams.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func corsOrigins(origins string) string {
	if origins == "" {
		return "*"
	}
	return origins
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(chat.ErrorResponse{Error: err.Error()})
}
