package handlers

import (
	"net/http"

	"github.com/anonto42/civic-connect/backend/internal/apperrors"
	"github.com/anonto42/civic-connect/backend/internal/middleware"
	"github.com/anonto42/civic-connect/backend/internal/models"
	"github.com/anonto42/civic-connect/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// httpError maps a service or repository error onto the response the caller
// sees. Unknown errors become a 500 without leaking their text.
func httpError(err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, apperrors.ErrAuthenticationRequired):
		return echo.NewHTTPError(http.StatusUnauthorized, messageOr(err, apperrors.ErrAuthenticationRequired, "Authentication required"))
	case errors.Is(err, apperrors.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, messageOr(err, apperrors.ErrForbidden, "You do not have permission to perform this action"))
	case errors.Is(err, apperrors.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, apperrors.Message(err)+" not found")
	case errors.Is(err, apperrors.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.Message(err))
	case errors.Is(err, apperrors.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, apperrors.Message(err))
	case errors.Is(err, apperrors.ErrTransientConflict):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Your vote could not be recorded. Please try again.")
	case errors.Is(err, apperrors.ErrUpstream):
		return echo.NewHTTPError(http.StatusBadGateway, "An upstream service failed. Please try again.")
	case errors.Is(err, services.ErrWriterDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Description drafting is not available")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong").SetInternal(err)
}

// messageOr returns the context wrapped around sentinel, or fallback when err
// is the bare sentinel.
func messageOr(err, sentinel error, fallback string) string {
	if msg := apperrors.Message(err); msg != sentinel.Error() {
		return msg
	}
	return fallback
}

// requireSession returns the caller's session or a 401.
func requireSession(c echo.Context) (*models.Session, error) {
	session := middleware.SessionFrom(c)
	if session == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return session, nil
}

// bindAndValidate binds the request body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}
