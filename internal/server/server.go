// Package server wires the HTTP surface: JSON dataset, CSV export, rating
// submissions, snapshot passthrough, rendered views and the realtime
// websocket channel.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cbrevik/cbc-menu/internal/config"
	"github.com/cbrevik/cbc-menu/internal/domain"
	apperrors "github.com/cbrevik/cbc-menu/internal/errors"
	"github.com/cbrevik/cbc-menu/internal/logging"
	"github.com/cbrevik/cbc-menu/internal/view"
	"github.com/cbrevik/cbc-menu/web"
)

// DatasetService supplies the memoized festival menu.
type DatasetService interface {
	Dataset(ctx context.Context) (*domain.Dataset, error)
}

// RatingService accepts rating submissions.
type RatingService interface {
	Submit(beerID int, value float64, newVoter bool) (domain.RatingEntry, error)
}

// SnapshotStore passes opaque snapshot blobs through to the backing store.
type SnapshotStore interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, blob string) error
}

// Subscriptions is the broadcaster surface the websocket handler needs.
type Subscriptions interface {
	Register(conn *websocket.Conn) error
	Unregister(conn *websocket.Conn)
}

// HealthCheck is a named readiness probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps bundles the collaborators the server routes to.
type Deps struct {
	Dataset     DatasetService
	Ratings     RatingService
	Snapshots   SnapshotStore
	Broadcaster Subscriptions
	Checks      []HealthCheck
	Clock       clockwork.Clock
}

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	deps     Deps
	renderer *view.Renderer
	csv      *csvCache

	startTime time.Time
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	renderer, err := view.NewRenderer(web.Templates)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestIDMiddleware())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		deps:      deps,
		renderer:  renderer,
		csv:       newCSVCache(deps.Clock, cfg.DatasetTTL),
		startTime: deps.Clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestIDMiddleware stamps every request's context with a fresh ID so log
// lines emitted while handling it can be correlated.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := logging.WithRequestID(req.Context(), logging.NewRequestID())
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
