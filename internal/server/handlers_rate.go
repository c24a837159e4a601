package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cbrevik/cbc-menu/internal/domain"
	apperrors "github.com/cbrevik/cbc-menu/internal/errors"
)

const maxRatingBodyBytes = 64

// handleRate serves both rating verbs: POST appends a new vote, PUT amends
// the submitter's most recent vote without changing the vote count. The body
// is the raw numeric rating text.
func (s *Server) handleRate(c echo.Context) error {
	beerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("beer id must be an integer").WithField("id", c.Param("id"))
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRatingBodyBytes))
	if err != nil {
		return apperrors.InternalError("failed to read request body", err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(body)), 64)
	if err != nil {
		return apperrors.ValidationError("rating must be numeric").WithField("beer_id", beerID)
	}

	newVoter := c.Request().Method == http.MethodPost

	entry, err := s.deps.Ratings.Submit(beerID, value, newVoter)
	if errors.Is(err, domain.ErrInvalidRating) {
		return apperrors.ValidationError(err.Error()).WithField("beer_id", beerID)
	}
	if err != nil {
		return apperrors.InternalError("failed to record rating", err).WithField("beer_id", beerID)
	}

	if err := c.JSON(200, entry); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
