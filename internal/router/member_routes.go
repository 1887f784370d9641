package router

import (
	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/handler"
	"github.com/FraN-onLine/ccis-connect/internal/middleware"
)

// RegisterMember registers the borrow request endpoints under /v1. All
// routes require a valid JWT; any registered role may file a request, with
// the ledger enforcing the finer capability rules.
func RegisterMember(e *echo.Echo, h *handler.RequestHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STUDENT", "FACULTY", "ADMIN"),
	)

	g.POST("/requests", h.Submit)
	g.GET("/requests/mine", h.Mine)
	g.GET("/requests/:id", h.Get)
}
