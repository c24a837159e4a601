package server

import (
	"errors"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/cbrevik/cbc-menu/internal/domain"
	apperrors "github.com/cbrevik/cbc-menu/internal/errors"
)

// Snapshots are opaque blobs of a user's saved/tasted selections; the server
// stores and returns them verbatim.

const maxSnapshotBytes = 64 * 1024

func (s *Server) handleSaveSnapshot(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return apperrors.ValidationError("snapshot id is required")
	}

	blob, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSnapshotBytes))
	if err != nil {
		return apperrors.InternalError("failed to read snapshot body", err)
	}

	if err := s.deps.Snapshots.Set(c.Request().Context(), userID, string(blob)); err != nil {
		return apperrors.BackingStoreError("failed to store snapshot", err).WithField("snapshot_id", userID)
	}
	return c.NoContent(200)
}

func (s *Server) handleLoadSnapshot(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return apperrors.ValidationError("snapshot id is required")
	}

	blob, err := s.deps.Snapshots.Get(c.Request().Context(), userID)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return apperrors.NotFoundError("snapshot not found").WithField("snapshot_id", userID)
	}
	if err != nil {
		return apperrors.BackingStoreError("failed to load snapshot", err).WithField("snapshot_id", userID)
	}

	if err := c.String(200, blob); err != nil {
		return fmt.Errorf("failed to send snapshot response: %w", err)
	}
	return nil
}
