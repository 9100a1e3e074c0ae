package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/hr-agent/backend/internal/router"
	"github.com/hr-agent/backend/internal/session"
	"github.com/hr-agent/backend/pkg/logger"
)

type WebSocketHandler struct {
	router   *router.Router
	sessions *session.Manager
}

func NewWebSocketHandler(r *router.Router, sessions *session.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		router:   r,
		sessions: sessions,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type      string `json:"type"`
			Query     string `json:"query"`
			Language  string `json:"language"`
			SessionID string `json:"session_id"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "chat" {
			continue
		}

		logger.Info("Processing WebSocket chat message", zap.String("query", msg.Query))

		err = h.streamResponse(c, msg.Query, msg.Language, msg.SessionID)
		if err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process query")
		}
	}
}

// streamResponse sends text answers word by word, then a complete frame
// carrying the structured payload for non-text answers.
func (h *WebSocketHandler) streamResponse(c *websocket.Conn, query, language, sessionID string) error {
	ctx := context.Background()

	conv := h.sessions.Get(sessionID)

	h.sendChunk(c, "status", "Processing query...")

	response := h.router.ProcessQuery(ctx, conv, query, strings.ToLower(language))

	if response.Kind == router.KindText {
		words := strings.Fields(response.Text)
		for i, word := range words {
			chunk := word
			if i < len(words)-1 {
				chunk += " "
			}
			if err := h.sendChunk(c, "chunk", chunk); err != nil {
				return err
			}
		}
	}

	return h.sendComplete(c, conv.ID, response)
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	msg := map[string]interface{}{
		"type":    msgType,
		"content": content,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendComplete(c *websocket.Conn, sessionID string, response *router.Response) error {
	msg := map[string]interface{}{
		"type":        "complete",
		"message_id":  response.ID,
		"session_id":  sessionID,
		"kind":        response.Kind,
		"table":       response.Table,
		"chart":       response.Chart,
		"predictions": response.Predictions,
		"latency_ms":  response.LatencyMS,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}
