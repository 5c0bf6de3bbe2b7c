package server

import (
	"bufio"
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/llm"
	"github.com/papercomputeco/ragchat/pkg/metrics"
	"github.com/papercomputeco/ragchat/pkg/pipeline"
	"github.com/papercomputeco/ragchat/pkg/stream"
)

// handleChat builds the handler for one endpoint variant. Everything that can
// fail before the model starts answering is reported as a 500 JSON error;
// once streaming has begun failures travel through the stream protocol.
func (s *Server) handleChat(v pipeline.Variant) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger := s.logger.With(
			zap.String("request_id", requestID(c)),
			zap.String("endpoint", v.Path),
		)

		prepared, err := pipeline.Prepare(c.UserContext(), v, c.Body(), s.docs)
		if v.RAG {
			s.countDocumentLoad(err)
		}
		if err != nil {
			code := pipeline.StageDecode
			var stageErr *pipeline.StageError
			if errors.As(err, &stageErr) {
				code = stageErr.Stage
			}
			logger.Error("failed to prepare prompt", zap.String("stage", code), zap.Error(err))
			s.metrics.Failed(v.Path, code)
			return c.Status(fiber.StatusInternalServerError).JSON(chat.ErrorResponse{Error: err.Error()})
		}

		if len(prepared.Turns) == 0 {
			logger.Warn("request has no messages, sending empty input")
		}
		logger.Debug("prompt rendered",
			zap.Int("turns", len(prepared.Turns)),
			zap.Int("documents", prepared.Documents),
			zap.String("input_preview", truncate(prepared.Input, 100)),
			zap.Int("prompt_len", len(prepared.Prompt)),
		)

		// The stream outlives this handler, so it gets its own cancelable
		// context which the stream writer releases. fasthttp does not tell the
		// stream writer that the client left: a disconnect surfaces as the next
		// failed write, after which Pipe closes the model stream and cancel
		// aborts the provider request. A provider that stalls without sending
		// is bounded by the model client timeout.
		ctx, cancel := context.WithCancel(context.Background())

		src, err := s.client.Stream(ctx, llm.PromptRequest(prepared.Prompt))
		if err != nil {
			cancel()
			logger.Error("failed to open model stream", zap.Error(err))
			s.metrics.Failed(v.Path, "model_"+string(llm.KindOf(err)))
			return c.Status(fiber.StatusInternalServerError).JSON(chat.ErrorResponse{Error: err.Error()})
		}

		enc := v.Encoder()
		for _, h := range enc.Headers() {
			c.Set(h.Key, h.Value)
		}

		done := s.metrics.StreamStarted(v.Path)
		turns := prepared.Turns

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cancel()

			res := stream.Pipe(ctx, src, w, enc)

			status := metrics.StatusSuccess
			switch {
			case res.Disconnected:
				status = metrics.StatusDisconnected
				logger.Info("client disconnected mid-stream", zap.Int("chunks", res.Chunks))
			case res.Err != nil:
				status = metrics.StatusError
				s.metrics.ErrorsTotal.WithLabelValues(v.Path, "stream").Inc()
				logger.Error("model stream failed", zap.Int("chunks", res.Chunks), zap.Error(res.Err))
			default:
				logger.Debug("streaming complete",
					zap.Int("chunks", res.Chunks),
					zap.String("reply_preview", truncate(res.Text, 200)),
				)
			}
			done(status, res.Chunks, res.FirstChunk)

			if res.Completed() && s.recorder != nil {
				head, err := s.recorder.Record(context.Background(), v.Path, s.client.Model(), turns, res.Text)
				if err != nil {
					logger.Error("failed to record transcript", zap.Error(err))
					return
				}
				logger.Info("transcript recorded", zap.String("head_hash", truncate(head, 16)))
			}
		}))

		return nil
	}
}

func (s *Server) countDocumentLoad(err error) {
	var stageErr *pipeline.StageError
	switch {
	case err == nil:
		s.metrics.DocumentLoadsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	case errors.As(err, &stageErr) && stageErr.Stage == pipeline.StageDocuments:
		s.metrics.DocumentLoadsTotal.WithLabelValues(metrics.StatusError).Inc()
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
