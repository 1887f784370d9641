// Package handler exposes HTTP handlers for both authenticated and public
// endpoints. This file defines the public browsing API: anyone, including
// guests, can list rooms and the equipment catalog without authentication.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/ledger"
	"github.com/FraN-onLine/ccis-connect/internal/model"
)

// BrowseHandler serves read-only views of the inventory ledger.
type BrowseHandler struct {
	Ledger *ledger.Ledger
}

func NewBrowseHandler(l *ledger.Ledger) *BrowseHandler {
	if l == nil {
		panic("nil ledger passed to NewBrowseHandler")
	}
	return &BrowseHandler{Ledger: l}
}

// roomView is the public shape of a room. Assigned counts are included so
// the directory can show what is currently checked out where.
type roomView struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Floor     int            `json:"floor"`
	Capacity  int            `json:"capacity"`
	RoomType  string         `json:"room_type"`
	Available bool           `json:"available"`
	Items     map[string]int `json:"items,omitempty"`
}

func toRoomView(r model.Room) roomView {
	return roomView{
		Code:      r.Code,
		Name:      r.Name,
		Floor:     r.Floor,
		Capacity:  r.Capacity,
		RoomType:  r.RoomType,
		Available: r.Available,
		Items:     r.Items,
	}
}

// ListRooms returns the full room directory.
func (h *BrowseHandler) ListRooms(c echo.Context) error {
	rooms := h.Ledger.Rooms()
	out := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomView(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}

// GetRoom returns a single room by code.
func (h *BrowseHandler) GetRoom(c echo.Context) error {
	room, ok := h.Ledger.Room(c.Param("code"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	return c.JSON(http.StatusOK, toRoomView(room))
}

// ListEquipment returns the equipment catalog with live stock counts. The
// optional ?available=true|false query filters on the administrative flag.
func (h *BrowseHandler) ListEquipment(c echo.Context) error {
	list := h.Ledger.Equipment()
	if q := c.QueryParam("available"); q != "" {
		want := q == "true"
		filtered := list[:0]
		for _, eq := range list {
			if eq.Available == want {
				filtered = append(filtered, eq)
			}
		}
		list = filtered
	}
	return c.JSON(http.StatusOK, echo.Map{"equipment": list})
}

// GetEquipment returns one catalog entry by code.
func (h *BrowseHandler) GetEquipment(c echo.Context) error {
	eq, ok := h.Ledger.EquipmentByCode(c.Param("code"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
	}
	return c.JSON(http.StatusOK, eq)
}
