package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/emberwok/takeout/internal/application/services"
	"github.com/emberwok/takeout/internal/core/ports"
)

// userID reads the authenticated user's id from the X-User-ID header. The
// gateway in front of this service resolves sessions; this core trusts it.
func userID(c echo.Context) (int64, error) {
	raw := c.Request().Header.Get("X-User-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid user identity")
	}
	return id, nil
}

// toHTTPError maps the error taxonomy onto status codes. Lock contention
// and fill-lock exhaustion become 409 "please try again" — the user-visible
// outcome for a double submit must never be a duplicate order or a silent
// success.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ports.ErrLockNotAcquired), errors.Is(err, ports.ErrCacheBusy):
		return echo.NewHTTPError(http.StatusConflict, "operation in progress, please try again")
	case errors.Is(err, ports.ErrDishNotFound), errors.Is(err, ports.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ports.ErrDishOnSale), errors.Is(err, services.ErrCartEmpty):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrOrderNotOwned):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ports.ErrAccountNotFound), errors.Is(err, ports.ErrPasswordMismatch):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, ports.ErrAccountLocked):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
