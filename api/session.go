package api

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/synthpanel/synthpanel/domain"
)

// CreateSessionRequest is the body of POST /api/session/create.
type CreateSessionRequest struct {
	Image        string                      `json:"image"`
	Demographics []domain.DemographicProfile `json:"demographics,omitempty"`
}

// ChatRequest is the body of POST /api/session/:session_id/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// CreateSession creates a session and starts the evaluation batch.
// POST /api/session/create
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Image == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Image is required"})
	}

	sessionID, err := h.svc.CreateSession(ctx, req.Image, req.Demographics)
	if err != nil {
		log.Printf("ERROR: failed to create session: %v", err)
		return c.JSON(statusFor(err), map[string]string{"error": "failed to create session"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"status":     domain.StatusProcessing,
		"message":    "Evaluation started",
	})
}

// GetSession returns the session record without its image payload.
// GET /api/session/:session_id/data
func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	session, err := h.svc.Session(ctx, sessionID)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Printf("ERROR: failed to get session: %v", err)
		}
		return c.JSON(statusFor(err), map[string]string{"error": "Session not found"})
	}

	return c.JSON(http.StatusOK, session)
}

// Chat handles one chat turn for a session.
// POST /api/session/:session_id/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}

	reply, err := h.svc.Chat(ctx, sessionID, req.Message)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("ERROR: chat turn failed for session %s: %v", sessionID, err)
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   reply,
		"timestamp": time.Now().UnixMilli(),
	})
}

// GetChatHistory returns the session's ordered chat turns.
// GET /api/session/:session_id/chat-history
func (h *Handler) GetChatHistory(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	history, err := h.svc.History(ctx, sessionID)
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": "Session not found"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"chat_history": history,
	})
}

// GetEvaluationContext returns the synthesized grounding context.
// GET /api/session/:session_id/evaluation-context
func (h *Handler) GetEvaluationContext(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	return c.JSON(http.StatusOK, map[string]string{
		"context": h.svc.EvaluationContext(ctx, sessionID),
	})
}
