package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hr-agent/backend/internal/router"
	"github.com/hr-agent/backend/internal/session"
	"github.com/hr-agent/backend/internal/storage/models"
	"github.com/hr-agent/backend/internal/storage/sqlite"
	"github.com/hr-agent/backend/pkg/logger"
)

type ChatHandler struct {
	router   *router.Router
	sessions *session.Manager
	db       *sqlite.Client
}

func NewChatHandler(r *router.Router, sessions *session.Manager, db *sqlite.Client) *ChatHandler {
	return &ChatHandler{
		router:   r,
		sessions: sessions,
		db:       db,
	}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req struct {
		Query     string `json:"query"`
		Language  string `json:"language"`
		SessionID string `json:"session_id"`
	}

	// The validation middleware leaves a sanitized copy of the body.
	if body, ok := c.Locals("sanitized_body").(map[string]interface{}); ok {
		req.Query, _ = body["query"].(string)
		req.Language, _ = body["language"].(string)
		req.SessionID, _ = body["session_id"].(string)
	} else if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	conv := h.sessions.Get(req.SessionID)
	response := h.router.ProcessQuery(c.Context(), conv, req.Query, strings.ToLower(req.Language))

	return c.JSON(fiber.Map{
		"id":          response.ID,
		"session_id":  conv.ID,
		"kind":        response.Kind,
		"text":        response.Text,
		"table":       response.Table,
		"chart":       response.Chart,
		"predictions": response.Predictions,
		"latency_ms":  response.LatencyMS,
	})
}

func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	limit := c.QueryInt("limit", 50)

	if h.db == nil {
		return c.JSON(fiber.Map{"history": []models.QueryRecord{}})
	}

	history, err := h.db.GetQueryHistory(sessionID, limit)
	if err != nil {
		logger.Error("Failed to fetch chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch chat history",
		})
	}

	return c.JSON(fiber.Map{"history": history})
}

// ResetChat drops the server-side conversation so the next request
// starts a fresh one.
func (h *ChatHandler) ResetChat(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
	}

	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	h.sessions.Drop(req.SessionID)

	return c.JSON(fiber.Map{"status": "reset"})
}

func (h *ChatHandler) HandleFeedback(c *fiber.Ctx) error {
	var req struct {
		QueryID       string `json:"query_id"`
		Helpful       bool   `json:"helpful"`
		IssueCategory string `json:"issue_category"`
		Comment       string `json:"comment"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.QueryID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query_id is required",
		})
	}

	if h.db != nil {
		feedback := &models.Feedback{
			QueryID:       req.QueryID,
			Helpful:       req.Helpful,
			IssueCategory: req.IssueCategory,
			Comment:       req.Comment,
		}
		if err := h.db.StoreFeedback(feedback); err != nil {
			logger.Error("Failed to store feedback", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to store feedback",
			})
		}
	}

	return c.JSON(fiber.Map{"status": "recorded"})
}
