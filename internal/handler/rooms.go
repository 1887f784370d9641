package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/ledger"
)

// RoomHandler owns the room occupancy endpoints available to faculty and
// admins.
type RoomHandler struct {
	Ledger *ledger.Ledger
}

func NewRoomHandler(l *ledger.Ledger) *RoomHandler {
	if l == nil {
		panic("nil ledger passed to NewRoomHandler")
	}
	return &RoomHandler{Ledger: l}
}

type availabilityReq struct {
	Available *bool `json:"available" validate:"required"`
}

// SetAvailability manually marks a room occupied or free. A manual change
// cancels any pending auto-release from an earlier scan.
func (h *RoomHandler) SetAvailability(c echo.Context) error {
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor := actorFromContext(c)
	return respondOutcome(c, h.Ledger.SetRoomAvailability(c.Param("code"), *req.Available, actor))
}

// Scan toggles a room's occupancy the way the check-in kiosk does: scanning
// a free room occupies it and arms an auto-release timer, scanning an
// occupied room releases it immediately.
func (h *RoomHandler) Scan(c echo.Context) error {
	actor := actorFromContext(c)
	return respondOutcome(c, h.Ledger.ScanRoom(c.Param("code"), actor))
}
