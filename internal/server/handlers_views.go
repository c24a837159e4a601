package server

import (
	"bytes"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/cbrevik/cbc-menu/internal/domain"
	apperrors "github.com/cbrevik/cbc-menu/internal/errors"
	"github.com/cbrevik/cbc-menu/internal/view"
)

func (s *Server) handleIndex(c echo.Context) error {
	return s.renderView(c, view.VariantIndex)
}

func (s *Server) handleView(c echo.Context) error {
	return s.renderView(c, view.Variant(c.Param("name")))
}

// renderView renders a view variant to a buffer first so a template failure
// never sends partial HTML.
func (s *Server) renderView(c echo.Context, name view.Variant) error {
	ds, err := s.deps.Dataset.Dataset(c.Request().Context())
	if err != nil {
		return apperrors.BackingStoreError("failed to load beer data", err)
	}

	state := view.StateFromValues(c.QueryParams())

	var buf bytes.Buffer
	err = s.renderer.Render(&buf, name, ds, state, "")
	switch {
	case errors.Is(err, domain.ErrUnknownView):
		return apperrors.NotFoundError("unknown view").WithField("view", string(name))
	case errors.Is(err, view.ErrMissingColour):
		return apperrors.ValidationError(err.Error()).WithField("view", string(name))
	case err != nil:
		return apperrors.InternalError("failed to render view", err).WithField("view", string(name))
	}

	return c.HTMLBlob(200, buf.Bytes())
}
