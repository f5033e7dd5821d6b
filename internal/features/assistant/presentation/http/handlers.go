package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"devcraft-studio/backend/internal/features/assistant/application"
)

type ChatHandler struct {
	chat   *application.ChatService
	logger *slog.Logger
}

func NewChatHandler(chat *application.ChatService, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{chat: chat, logger: logger}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ChatHandler answers a chat message and returns the session id to reuse.
func (h *ChatHandler) ChatHandler(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	reply, err := h.chat.Reply(c.Request.Context(), req.SessionID, req.Message)
	switch {
	case errors.Is(err, application.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
	case err != nil:
		h.logger.Error("failed to process chat message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat message"})
	default:
		c.JSON(http.StatusOK, reply)
	}
}
