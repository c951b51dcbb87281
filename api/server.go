// Package api serves the query endpoints of the landing zone. The routes are
// reserved and answer 501 until the queries behind them exist.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/wirvsvirus/landingzone/frame"
)

const (
	MessageNotImplemented = "not implemented"
	MessageNotFound       = "endpoint does not exist"
)

// Querier runs SQL against the landing zone tables
type Querier interface {
	Query(ctx context.Context, sql string) (*frame.Frame, error)
}

type Server struct {
	echo    *echo.Echo
	// queries backs the reserved routes once they stop answering 501
	queries Querier
}

func New(queries Querier) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, queries: queries}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	e.GET("/:kind", s.latest)
	e.GET("/:kind/timeseries", s.timeseries)
	e.GET("/:kind/by/:grouping", s.latestGrouped)
	e.GET("/:kind/by/:grouping/timeseries", s.timeseriesGrouped)
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on address until Shutdown is called
func (s *Server) Start(address string) error {
	slog.Info("api server starting", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) latest(c echo.Context) error {
	return notImplemented(c)
}

func (s *Server) timeseries(c echo.Context) error {
	return notImplemented(c)
}

func (s *Server) latestGrouped(c echo.Context) error {
	return notImplemented(c)
}

func (s *Server) timeseriesGrouped(c echo.Context) error {
	return notImplemented(c)
}

func notImplemented(c echo.Context) error {
	slog.Debug("endpoint not implemented", "kind", c.Param("kind"), "grouping", c.Param("grouping"))
	return c.JSON(http.StatusNotImplemented, MessageNotImplemented)
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && (he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed) {
		if err := c.JSON(http.StatusNotFound, MessageNotFound); err != nil {
			slog.Error("failed to write response", "error", err)
		}
		return
	}
	s.echo.DefaultHTTPErrorHandler(err, c)
}
