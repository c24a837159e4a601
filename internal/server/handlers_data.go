package server

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	apperrors "github.com/cbrevik/cbc-menu/internal/errors"
	"github.com/cbrevik/cbc-menu/internal/export"
	"github.com/cbrevik/cbc-menu/internal/metrics"
)

func (s *Server) handleLatest(c echo.Context) error {
	ds, err := s.deps.Dataset.Dataset(c.Request().Context())
	if err != nil {
		return apperrors.BackingStoreError("failed to load beer data", err)
	}

	if err := c.JSON(200, ds); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleExportCSV(c echo.Context) error {
	if data, ok := s.csv.get(); ok {
		metrics.CSVExportsTotal.WithLabelValues("hit").Inc()
		return c.Blob(200, "text/csv", data)
	}

	ds, err := s.deps.Dataset.Dataset(c.Request().Context())
	if err != nil {
		return apperrors.BackingStoreError("failed to load beer data", err)
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, ds); err != nil {
		return apperrors.InternalError("failed to build csv export", err)
	}

	s.csv.set(buf.Bytes())
	metrics.CSVExportsTotal.WithLabelValues("miss").Inc()
	return c.Blob(200, "text/csv", buf.Bytes())
}

// csvCache memoizes the rendered CSV bytes with an explicit timestamp and
// TTL, mirroring the dataset memo window.
type csvCache struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu   sync.Mutex
	data []byte
	at   time.Time
}

func newCSVCache(clock clockwork.Clock, ttl time.Duration) *csvCache {
	return &csvCache{clock: clock, ttl: ttl}
}

func (c *csvCache) get() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil || c.clock.Since(c.at) >= c.ttl {
		return nil, false
	}
	return c.data, true
}

func (c *csvCache) set(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.at = c.clock.Now()
}
