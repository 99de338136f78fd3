package handler

import (
    "log"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-core/internal/gateway"
    "github.com/iliyamo/cinema-booking-core/internal/service"
)

// CallbackHandler receives the payment gateway's server-to-server
// notification.  The route is unauthenticated: the HMAC signature
// over the query parameters is the authentication.
type CallbackHandler struct {
    Gateway    *gateway.Client
    Settlement *service.SettlementService
}

// HandleCallback handles GET /v1/payments/callback.  The response
// body follows the gateway's acknowledgement contract: RspCode "00"
// tells it to stop retrying, anything else triggers a retry.  A
// signature failure is acknowledged with a generic code and logged
// server-side only; the response never explains what was wrong with
// the signature.
func (h *CallbackHandler) HandleCallback(c echo.Context) error {
    res, err := h.Gateway.VerifyCallback(c.QueryParams())
    if err != nil {
        log.Printf("callback: signature verification failed from %s: %v", c.RealIP(), err)
        return c.JSON(http.StatusOK, echo.Map{
            "RspCode": "97",
            "Message": "Invalid signature",
        })
    }
    if err := h.Settlement.Apply(c.Request().Context(), res, c.Request().URL.RawQuery); err != nil {
        log.Printf("callback: settlement failed for order %s: %v", res.OrderID, err)
        return c.JSON(http.StatusOK, echo.Map{
            "RspCode": "99",
            "Message": "Unknown error",
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "RspCode": "00",
        "Message": "Confirm Success",
    })
}
