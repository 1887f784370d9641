package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/handler"
	"github.com/FraN-onLine/ccis-connect/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. The room directory and equipment catalog are
// intentionally public so guests can browse before signing in.
func RegisterRoutes(e *echo.Echo, b *handler.BrowseHandler) {
	e.GET("/healthz", handler.Health)

	e.GET("/v1/rooms", b.ListRooms)
	e.GET("/v1/rooms/:code", b.GetRoom)
	e.GET("/v1/equipment", b.ListEquipment)
	e.GET("/v1/equipment/:code", b.GetEquipment)
}

// RegisterAuth registers authentication routes. Unauthenticated operations
// live under /v1/auth, while /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh_token body (revoke one), so it is not behind the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
