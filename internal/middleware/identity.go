package middleware

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user as a string for rate
// limit key building.  Unauthenticated requests share the "anon"
// bucket.
func currentUserID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case nil:
        return "anon"
    case string:
        if v != "" {
            return v
        }
        return "anon"
    default:
        return fmt.Sprint(v)
    }
}
