package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"kubelearn/internal/playground"
)

type Server struct {
	e    *echo.Echo
	game Game
	log  Logger
}

func NewServer(game Game, log Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(logRequests(log))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{Reason: "internal error"})
			if log != nil {
				log.Error("http.internal_error", map[string]any{"path": c.Path(), "error": err.Error()})
			}
		}
		body := he.Message
		if s, ok := body.(string); ok {
			body = ErrorResponse{Reason: s}
		}
		if !c.Response().Committed {
			_ = c.JSON(he.Code, body)
		}
	}

	api := e.Group("/api")
	api.GET("/state", StateHandler(game))
	api.POST("/drag", DragHandler(game))
	api.POST("/reset", ActionHandler(game.Reset))
	api.POST("/advance", ActionHandler(game.Advance))
	api.POST("/restart", ActionHandler(game.Restart))
	api.GET("/manifest", ManifestHandler(game))
	api.GET("/levels", LevelsHandler(game))

	return &Server{e: e, game: game, log: log}
}

func (s *Server) Handler() http.Handler { return s.e }

// Start blocks until the server stops. A graceful Shutdown returns nil.
func (s *Server) Start(addr string) error {
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func StateHandler(game Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap, err := game.Snapshot(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, snap)
	}
}

func DragHandler(game Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if !strings.HasPrefix(strings.ToLower(req.Header.Get(echo.HeaderContentType)), echo.MIMEApplicationJSON) {
			return badRequest("unexpected content type. it should be application/json", "")
		}
		body := new(DragRequest)
		if err := json.NewDecoder(req.Body).Decode(body); err != nil {
			return badRequest("can not understand the requested json", "")
		}
		if strings.TrimSpace(body.Source) == "" {
			return badRequest("source is required", `send {"source": "<id>", "target": "<id>"|null}`)
		}
		target := ""
		if body.Target != nil {
			target = *body.Target
		}
		snap, err := game.Drag(req.Context(), body.Source, target)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, snap)
	}
}

func ActionHandler(action func(context.Context) (playground.Snapshot, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		snap, err := action(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, snap)
	}
}

func ManifestHandler(game Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		view, err := game.Manifest(c.Request().Context())
		if err != nil {
			return err
		}
		if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), "application/yaml") {
			return c.Blob(http.StatusOK, "application/yaml", []byte(view.Text))
		}
		return c.JSON(http.StatusOK, view)
	}
}

func LevelsHandler(game Game) echo.HandlerFunc {
	return func(c echo.Context) error {
		infos, err := game.Levels(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, infos)
	}
}

func badRequest(reason, advice string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Reason: reason, Advice: advice})
}

// logRequests hands handler errors to the error handler itself so the
// logged status is the one sent, then reports them as handled.
func logRequests(log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if log == nil {
				return next(c)
			}
			begin := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			fields := map[string]any{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status":      c.Response().Status,
				"duration_ms": time.Since(begin).Milliseconds(),
			}
			if err != nil {
				fields["error"] = err.Error()
			}
			log.Info("http.request", fields)
			return nil
		}
	}
}
