// Package server provides the HTTP front end for the conversation engine.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"promptforge/internal/core"
)

// Handler handles HTTP requests.
type Handler struct {
	engine *core.Engine
}

// NewHandler creates a new handler.
func NewHandler(engine *core.Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/generate", h.Generate)
	e.POST("/new_chat", h.NewChat)
	e.GET("/health", h.Health)
}

// NewServer builds the echo server with middleware and routes. CORS is
// restricted to the given origin allow-list.
func NewServer(engine *core.Engine, allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	NewHandler(engine).RegisterRoutes(e)
	return e
}

type generateRequest struct {
	UseCase   string `json:"useCase"`
	SessionID string `json:"session_id,omitempty"`
}

type newChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type turnResponse struct {
	Prompt        string `json:"prompt"`
	SessionID     string `json:"session_id"`
	Status        string `json:"status"`
	IsFinalPrompt bool   `json:"is_final_prompt"`
}

func toTurnResponse(result *core.TurnResult) turnResponse {
	return turnResponse{
		Prompt:        result.Response,
		SessionID:     result.SessionID,
		Status:        string(result.Status),
		IsFinalPrompt: result.Final,
	}
}

// Generate processes one conversational turn. An absent or unknown session_id
// opens a fresh session and returns only the opening greeting.
// POST /generate
func (h *Handler) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.engine.ProcessTurn(c.Request().Context(), req.SessionID, req.UseCase)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toTurnResponse(result))
}

// NewChat discards any existing session for the given id and opens a fresh
// one, returning its greeting.
// POST /new_chat
func (h *Handler) NewChat(c echo.Context) error {
	var req newChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if req.SessionID != "" {
		h.engine.Discard(req.SessionID)
	}

	result, err := h.engine.ProcessTurn(c.Request().Context(), "", "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toTurnResponse(result))
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
