package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/transcript"
)

// handleListTranscripts returns every recorded conversation, one per leaf.
func (s *Server) handleListTranscripts(c *fiber.Ctx) error {
	histories, err := s.recorder.Histories(c.UserContext())
	if err != nil {
		s.logger.Error("failed to list transcripts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(chat.ErrorResponse{Error: "failed to list transcripts"})
	}

	return c.JSON(map[string]any{
		"count":     len(histories),
		"histories": histories,
	})
}

// handleGetTranscript returns the conversation ending at the given node.
func (s *Server) handleGetTranscript(c *fiber.Ctx) error {
	history, err := s.recorder.History(c.UserContext(), c.Params("hash"))
	if err != nil {
		var notFound transcript.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(chat.ErrorResponse{Error: notFound.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(chat.ErrorResponse{Error: "failed to load transcript"})
	}

	return c.JSON(history)
}
