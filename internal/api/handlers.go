package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// ClassifyRequest is the request body for POST /api/v1/classify
type ClassifyRequest struct {
	Messages []core.Message `json:"messages"`
}

// ClassifyResponse is the response body for classification endpoints
type ClassifyResponse struct {
	Messages []core.Message `json:"messages"`
}

// ReclassifyRequest is the request body for POST /api/v1/reclassify
type ReclassifyRequest struct {
	Message  core.Message  `json:"message"`
	Category core.Category `json:"category"`
}

// ReclassifyResponse is the response body for POST /api/v1/reclassify
type ReclassifyResponse struct {
	Message core.Message `json:"message"`
}

// FeedbackResponse is the response body for GET /api/v1/feedback
type FeedbackResponse struct {
	Entries []core.FeedbackEntry `json:"entries"`
}

// ReplyRequest is the request body for POST /api/v1/reply
type ReplyRequest struct {
	Message core.Message `json:"message"`
	Body    string       `json:"body"`
}

// ArchiveRequest is the request body for POST /api/v1/archive
type ArchiveRequest struct {
	IDs []string `json:"ids"`
}

// HealthResponse is the response body for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleClassify classifies a batch of messages supplied by the caller
func (s *Server) handleClassify(c echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	enriched := s.svc.ClassifyBatch(c.Request().Context(), req.Messages, s.userID(c))

	return c.JSON(http.StatusOK, ClassifyResponse{Messages: enriched})
}

// handleTriage fetches unread messages from the mail provider and
// classifies them in one call
func (s *Server) handleTriage(c echo.Context) error {
	limit := s.fetchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	enriched, err := s.svc.FetchAndClassify(c.Request().Context(), limit, s.userID(c))
	if err != nil {
		s.logger.Error("Triage failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "failed to fetch messages")
	}

	return c.JSON(http.StatusOK, ClassifyResponse{Messages: enriched})
}

// handleReclassify applies a user override and records it as feedback
func (s *Server) handleReclassify(c echo.Context) error {
	var req ReclassifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.Category.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "category must be Personal or NotPersonal")
	}

	updated, err := s.svc.Reclassify(c.Request().Context(), req.Message, req.Category, s.userID(c))
	if err != nil {
		// The optimistic update already happened; report the learning
		// failure but still return the updated message
		s.logger.Error("Failed to record feedback", zap.Error(err))
	}

	return c.JSON(http.StatusOK, ReclassifyResponse{Message: updated})
}

// handleGetFeedback returns the caller's correction history
func (s *Server) handleGetFeedback(c echo.Context) error {
	entries := s.svc.GetFeedbackLog(c.Request().Context(), s.userID(c))
	if entries == nil {
		entries = []core.FeedbackEntry{}
	}
	return c.JSON(http.StatusOK, FeedbackResponse{Entries: entries})
}

// handleDeleteFeedback removes a single correction by timestamp
func (s *Server) handleDeleteFeedback(c echo.Context) error {
	timestamp, err := strconv.ParseInt(c.Param("timestamp"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid timestamp")
	}

	if err := s.svc.DeleteFeedbackEntry(c.Request().Context(), timestamp, s.userID(c)); err != nil {
		s.logger.Error("Failed to delete feedback entry", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete feedback entry")
	}

	return c.NoContent(http.StatusNoContent)
}

// handleReply sends a reply to a message
func (s *Server) handleReply(c echo.Context) error {
	var req ReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Body == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reply body is required")
	}

	if err := s.svc.Reply(c.Request().Context(), &req.Message, req.Body); err != nil {
		s.logger.Error("Failed to send reply", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "failed to send reply")
	}

	return c.NoContent(http.StatusNoContent)
}

// handleArchive archives the given messages and marks them read
func (s *Server) handleArchive(c echo.Context) error {
	var req ArchiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "message ids are required")
	}

	if err := s.svc.Archive(c.Request().Context(), req.IDs); err != nil {
		s.logger.Error("Failed to archive messages", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "failed to archive messages")
	}

	return c.NoContent(http.StatusNoContent)
}
