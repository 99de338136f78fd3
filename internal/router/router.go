// Package router wires the HTTP surface: public browse and callback
// routes, and the JWT-protected booking and checkout routes.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-core/internal/handler"
    "github.com/iliyamo/cinema-booking-core/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse and callback
// endpoints.  The seat map endpoint optionally sits behind the Redis
// response cache; the callback route must never be cached, its HMAC
// signature is the only authentication it has.
func RegisterPublic(e *echo.Echo, browse *handler.BrowseHandler, callback *handler.CallbackHandler, cache echo.MiddlewareFunc) {
    if cache != nil {
        e.GET("/v1/slots/:id/seats", browse.GetSlotSeats, cache)
    } else {
        e.GET("/v1/slots/:id/seats", browse.GetSlotSeats)
    }
    e.GET("/v1/payments/callback", callback.HandleCallback)
}

// RegisterBooking registers the JWT-protected booking and checkout
// endpoints under /v1.
func RegisterBooking(e *echo.Echo, booking *handler.BookingHandler, checkout *handler.CheckoutHandler, jwtSecret string) {
    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))

    auth.POST("/slots/:id/hold", booking.HoldSeats)
    auth.PUT("/sessions/:token/hold", booking.ExtendHold)
    auth.DELETE("/sessions/:token", booking.CancelSession)

    auth.PUT("/sessions/:token/items", checkout.SetItems)
    auth.PUT("/sessions/:token/promotion", checkout.ApplyPromotion)
    auth.GET("/sessions/:token/quote", checkout.Quote)
    auth.POST("/sessions/:token/pay", checkout.Pay)
}
