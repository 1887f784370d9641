package router

import (
	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/handler"
	"github.com/FraN-onLine/ccis-connect/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1: deciding borrow
// requests, logging returns and moves, rewriting equipment status and
// reading the audit trail.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Requests ----
	g.GET("/requests", h.ListRequests)
	g.POST("/requests/:id/approve", h.Approve)
	g.POST("/requests/:id/reject", h.Reject)
	g.POST("/requests/:id/returned", h.MarkReturned)
	g.POST("/requests/sweep-overdue", h.SweepOverdue)

	// ---- Inventory movement ----
	g.POST("/returns", h.Return)
	g.POST("/moves", h.Move)

	// ---- Catalog maintenance ----
	g.PATCH("/equipment/:code/status", h.UpdateEquipmentStatus)
	g.PATCH("/equipment/status", h.BulkUpdateStatus)
	g.GET("/audit", h.Audit)
}

// RegisterRooms registers the room occupancy endpoints for FACULTY and
// ADMIN. Students and guests can only read the directory.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("FACULTY", "ADMIN"),
	)

	g.PATCH("/rooms/:code/availability", h.SetAvailability)
	g.POST("/rooms/:code/scan", h.Scan)
}
