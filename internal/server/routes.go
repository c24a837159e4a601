package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Rendered views
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/view/:name", s.handleView)

	// Dataset
	s.echo.GET("/latest.json", s.handleLatest)
	s.echo.GET("/"+s.config.ExportName, s.handleExportCSV)

	// Ratings: POST appends a new vote, PUT amends the submitter's last one.
	s.echo.POST("/rate/:id", s.handleRate)
	s.echo.PUT("/rate/:id", s.handleRate)

	// Snapshot passthrough
	s.echo.POST("/snapshot/:id", s.handleSaveSnapshot)
	s.echo.GET("/snapshot/:id", s.handleLoadSnapshot)

	// Realtime channel
	s.echo.GET("/ws", s.handleWebSocket)
}
