// Package api provides the HTTP handlers for the evaluation backend.
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/synthpanel/synthpanel/domain"
	"github.com/synthpanel/synthpanel/service"
)

// Handler handles HTTP requests.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/session/create", h.CreateSession)
	e.GET("/api/session/:session_id/data", h.GetSession)
	e.POST("/api/session/:session_id/chat", h.Chat)
	e.GET("/api/session/:session_id/chat-history", h.GetChatHistory)
	e.GET("/api/session/:session_id/evaluation-context", h.GetEvaluationContext)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "synthpanel-backend",
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
