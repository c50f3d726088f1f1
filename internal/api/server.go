// Package api HTTP-доступ к инструментам агента и websocket-канал событий.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/agent"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// ToolCaller вызывает инструмент агента по имени
type ToolCaller interface {
	Call(ctx context.Context, name string, raw json.RawMessage) (any, error)
}

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	tools  ToolCaller
	store  Pinger
	ws     echo.HandlerFunc
	logger *zap.Logger
}

// NewHandler ws может быть nil, тогда /ws не регистрируется
func NewHandler(tools ToolCaller, store Pinger, ws echo.HandlerFunc, logger *zap.Logger) *Handler {
	return &Handler{
		tools:  tools,
		store:  store,
		ws:     ws,
		logger: logger,
	}
}

// NewEcho собирает echo с маршрутами и middleware
func NewEcho(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	h.RegisterRoutes(e)
	return e
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/tools", h.ListTools)
	e.POST("/tools/:name", h.CallTool)
	if h.ws != nil {
		e.GET("/ws", h.ws)
	}
}

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListTools GET /tools
func (h *Handler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"tools": agent.Names()})
}

// CallTool POST /tools/:name, тело - JSON-аргументы инструмента.
// Доменный отказ - 200 с {"success": false}, сбой хранилища - 503.
func (h *Handler) CallTool(c echo.Context) error {
	name := c.Param("name")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(body) > 0 && !json.Valid(body) {
		return echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object")
	}

	result, err := h.tools.Call(c.Request().Context(), name, body)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrUnknownTool):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, agent.ErrBadArguments):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Tool call failed", zap.String("tool", name), zap.Error(err))
			return echo.NewHTTPError(http.StatusServiceUnavailable, "appointment store is unavailable, try again later")
		}
	}

	return c.JSON(http.StatusOK, result)
}

// Start слушает addr до отмены ctx, затем мягко останавливает сервер
func Start(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down HTTP server")
	return e.Shutdown(shutdownCtx)
}
