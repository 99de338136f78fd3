// Package handler exposes the HTTP surface of the booking core:
// seat-map browsing, hold and session management, checkout and the
// payment gateway callback.  Handlers bind and validate input, call
// the service layer and translate its errors into JSON responses;
// they never touch the database directly except through services and
// repositories.
package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-core/internal/repository"
    "github.com/iliyamo/cinema-booking-core/internal/service"
)

// getUserID extracts the user_id claim injected by the JWT middleware
// and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// writeServiceError maps service and repository errors onto the JSON
// error responses shared by all session endpoints.
func writeServiceError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrSlotNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
    case errors.Is(err, repository.ErrSessionNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
    case errors.Is(err, repository.ErrPromotionNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "promotion not found"})
    case errors.Is(err, repository.ErrSeatUnavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are unavailable"})
    case errors.Is(err, repository.ErrSessionExpired), errors.Is(err, repository.ErrHoldExpired):
        return c.JSON(http.StatusGone, echo.Map{"error": "session expired"})
    case errors.Is(err, repository.ErrProductNotFound):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown product in selection"})
    case errors.Is(err, service.ErrInvalidState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "operation not allowed in current session state"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
