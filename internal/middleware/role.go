package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware that enforces that the authenticated
// user has one of the specified roles, matching the JWT's "role" claim as
// stored in the context by JWTAuth.  Requests with a missing or
// disallowed role are aborted with 403 Forbidden.  Capability checks
// inside the ledger remain the final authority; this gate only keeps
// obviously unauthorized traffic away from the handlers.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
