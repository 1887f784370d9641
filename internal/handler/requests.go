package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/ledger"
)

// RequestHandler owns the member-facing borrow request endpoints.
type RequestHandler struct {
	Ledger *ledger.Ledger
}

func NewRequestHandler(l *ledger.Ledger) *RequestHandler {
	if l == nil {
		panic("nil ledger passed to NewRequestHandler")
	}
	return &RequestHandler{Ledger: l}
}

type submitReq struct {
	EquipmentCode      string `json:"equipment_code" validate:"required"`
	Quantity           int    `json:"quantity" validate:"required,min=1"`
	RoomCode           string `json:"room_code"`
	Purpose            string `json:"purpose" validate:"required"`
	Duration           string `json:"duration" validate:"required"`
	ReturnDate         string `json:"return_date" validate:"required"`
	EducationalPurpose string `json:"educational_purpose"`
}

// Submit files a new borrow request. The request starts pending and holds no
// stock until an admin approves it.
func (h *RequestHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	actor := actorFromContext(c)
	created, out := h.Ledger.Submit(actor, ledger.SubmitInput{
		EquipmentCode:      req.EquipmentCode,
		Quantity:           req.Quantity,
		RoomCode:           req.RoomCode,
		Purpose:            req.Purpose,
		Duration:           req.Duration,
		ReturnDate:         req.ReturnDate,
		EducationalPurpose: req.EducationalPurpose,
	})
	if !out.OK {
		return respondOutcome(c, out)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"ok":      true,
		"message": out.Message,
		"request": created,
	})
}

// Mine lists the calling user's requests, most recent first.
func (h *RequestHandler) Mine(c echo.Context) error {
	actor := actorFromContext(c)
	return c.JSON(http.StatusOK, echo.Map{"requests": h.Ledger.RequestsFor(actor.ID)})
}

// Get returns a single request. Members may only read their own; admins can
// read any.
func (h *RequestHandler) Get(c echo.Context) error {
	req, ok := h.Ledger.Request(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
	}
	actor := actorFromContext(c)
	if req.Requester.ID != actor.ID && !actor.Capabilities().CanAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your request"})
	}
	return c.JSON(http.StatusOK, req)
}
