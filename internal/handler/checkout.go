package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-core/internal/service"
)

// CheckoutHandler serves the selection and payment endpoints of a
// live checkout session: combo items, promotion code, quote and the
// handoff to the payment gateway.
type CheckoutHandler struct {
    Checkout *service.CheckoutService
}

// NewCheckoutHandler constructs a CheckoutHandler.  The checkout
// service must be non-nil.
func NewCheckoutHandler(checkout *service.CheckoutService) *CheckoutHandler {
    if checkout == nil {
        panic("nil checkout service passed to NewCheckoutHandler")
    }
    return &CheckoutHandler{Checkout: checkout}
}

// SetItems handles PUT /v1/sessions/:token/items.  The body carries
// the full combo selection; it replaces whatever was selected before
// and snapshots current catalog prices.
func (h *CheckoutHandler) SetItems(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session token"})
    }
    var body struct {
        Items []service.ItemSelection `json:"items"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    for _, it := range body.Items {
        if it.ProductID == 0 || it.Quantity == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "items require a product_id and a positive quantity"})
        }
    }
    if err := h.Checkout.SetItems(c.Request().Context(), token, body.Items); err != nil {
        return writeServiceError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ApplyPromotion handles PUT /v1/sessions/:token/promotion.  The code
// only has to exist here; whether it actually discounts the order is
// decided at quote and pay time.
func (h *CheckoutHandler) ApplyPromotion(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session token"})
    }
    var body struct {
        Code string `json:"code"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
    }
    if err := h.Checkout.ApplyPromotion(c.Request().Context(), token, body.Code); err != nil {
        return writeServiceError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Quote handles GET /v1/sessions/:token/quote.  It returns the full
// price breakdown including why a promotion was not applied, if one
// was selected and rejected.
func (h *CheckoutHandler) Quote(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session token"})
    }
    breakdown, err := h.Checkout.Quote(c.Request().Context(), token)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, breakdown)
}

// Pay handles POST /v1/sessions/:token/pay.  It freezes the total,
// records the pending payment and returns the signed gateway
// redirect URL.  The optional bank_code preselects a bank at the
// gateway.
func (h *CheckoutHandler) Pay(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session token"})
    }
    var body struct {
        BankCode string `json:"bank_code"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    payURL, err := h.Checkout.Pay(c.Request().Context(), token, c.RealIP(), body.BankCode)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "payment_url": payURL,
    })
}
