package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-core/internal/service"
)

// BookingHandler serves hold creation, extension and cancellation.
// All routes require JWT authentication; the middleware injects the
// user id read by getUserID.
type BookingHandler struct {
    Checkout *service.CheckoutService
}

// NewBookingHandler constructs a BookingHandler.  The checkout
// service must be non-nil.
func NewBookingHandler(checkout *service.CheckoutService) *BookingHandler {
    if checkout == nil {
        panic("nil checkout service passed to NewBookingHandler")
    }
    return &BookingHandler{Checkout: checkout}
}

// HoldSeats handles POST /v1/slots/:id/hold.  The request body holds
// a "seat_ids" array; the claim is all-or-nothing.  On success it
// returns 201 with the new session token and the hold deadline.
func (h *BookingHandler) HoldSeats(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || slotID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }
    var body struct {
        SeatIDs []uint64 `json:"seat_ids"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.SeatIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
    }
    // Deduplicate so a repeated id cannot make the all-or-nothing
    // count check fail spuriously.
    unique := make([]uint64, 0, len(body.SeatIDs))
    seen := make(map[uint64]struct{})
    for _, id := range body.SeatIDs {
        if id == 0 {
            continue
        }
        if _, ok := seen[id]; !ok {
            seen[id] = struct{}{}
            unique = append(unique, id)
        }
    }
    if len(unique) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid seat IDs provided"})
    }

    res, err := h.Checkout.CreateHold(c.Request().Context(), slotID, userID, unique)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "session_token": res.SessionToken,
        "seat_ids":      res.SeatIDs,
        "expires_at":    res.ExpiresAt.Format(time.RFC3339),
    })
}

// ExtendHold handles PUT /v1/sessions/:token/hold.  Extension never
// lengthens the window; the response simply restates the original
// deadline while it has not passed.
func (h *BookingHandler) ExtendHold(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session token"})
    }
    deadline, err := h.Checkout.ExtendHold(c.Request().Context(), token)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "expires_at": deadline.Format(time.RFC3339),
    })
}

// CancelSession handles DELETE /v1/sessions/:token.  The cancel is
// idempotent: repeating it, or racing it against a callback or the
// sweeper, returns 204 either way.
func (h *BookingHandler) CancelSession(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session token"})
    }
    if err := h.Checkout.Cancel(c.Request().Context(), token); err != nil {
        return writeServiceError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
