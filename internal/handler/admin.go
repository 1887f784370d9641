package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/ledger"
	"github.com/FraN-onLine/ccis-connect/internal/model"
	"github.com/FraN-onLine/ccis-connect/internal/queue"
	queuepub "github.com/FraN-onLine/ccis-connect/internal/service"
)

// AdminHandler owns the staff endpoints: deciding requests, logging returns,
// moving equipment between rooms, rewriting equipment status and reading the
// audit trail. Every operation is re-checked against the actor's
// capabilities inside the ledger; the route-level role gate is only a first
// filter.
type AdminHandler struct {
	Ledger *ledger.Ledger
}

func NewAdminHandler(l *ledger.Ledger) *AdminHandler {
	if l == nil {
		panic("nil ledger passed to NewAdminHandler")
	}
	return &AdminHandler{Ledger: l}
}

// ListRequests returns every request in the ledger, most recent first.
func (h *AdminHandler) ListRequests(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"requests": h.Ledger.Requests()})
}

// Approve grants a pending request, debiting stock and assigning it to the
// destination room.
func (h *AdminHandler) Approve(c echo.Context) error {
	id := c.Param("id")
	actor := actorFromContext(c)
	out := h.Ledger.Approve(id, actor)
	if out.OK {
		h.publishDecision(id, actor)
	}
	return respondOutcome(c, out)
}

type rejectReq struct {
	Reason string `json:"reason"`
}

// Reject denies a pending request without touching inventory.
func (h *AdminHandler) Reject(c echo.Context) error {
	id := c.Param("id")
	var req rejectReq
	_ = c.Bind(&req)
	actor := actorFromContext(c)
	out := h.Ledger.Reject(id, actor, req.Reason)
	if out.OK {
		h.publishDecision(id, actor)
	}
	return respondOutcome(c, out)
}

// MarkReturned flags an approved or overdue request as returned. Stock is
// restored separately through the returns endpoint.
func (h *AdminHandler) MarkReturned(c echo.Context) error {
	id := c.Param("id")
	actor := actorFromContext(c)
	out := h.Ledger.MarkRequestReturned(id, actor)
	if out.OK {
		h.publishDecision(id, actor)
	}
	return respondOutcome(c, out)
}

type returnReq struct {
	RoomCode      string `json:"room_code" validate:"required"`
	EquipmentCode string `json:"equipment_code" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
}

// Return moves equipment from a room back into stock. Quantities above what
// the room actually holds are clamped.
func (h *AdminHandler) Return(c echo.Context) error {
	var req returnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor := actorFromContext(c)
	return respondOutcome(c, h.Ledger.ReturnEquipment(req.RoomCode, req.EquipmentCode, req.Quantity, actor))
}

type moveReq struct {
	FromRoom      string `json:"from_room" validate:"required"`
	ToRoom        string `json:"to_room" validate:"required"`
	EquipmentCode string `json:"equipment_code" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
}

// Move transfers assigned equipment between two rooms without changing the
// total checked-out count.
func (h *AdminHandler) Move(c echo.Context) error {
	var req moveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor := actorFromContext(c)
	return respondOutcome(c, h.Ledger.Move(req.FromRoom, req.ToRoom, req.EquipmentCode, req.Quantity, actor))
}

type statusUpdateReq struct {
	Status    string `json:"status" validate:"required"`
	Available *bool  `json:"available" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

// UpdateEquipmentStatus rewrites a catalog entry's status, quantity and
// availability, recording the change in the audit trail.
func (h *AdminHandler) UpdateEquipmentStatus(c echo.Context) error {
	var req statusUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor := actorFromContext(c)
	entry, out := h.Ledger.UpdateEquipmentStatus(ledger.StatusUpdateInput{
		EquipmentCode: c.Param("code"),
		Status:        req.Status,
		Available:     *req.Available,
		Quantity:      *req.Quantity,
		Reason:        req.Reason,
	}, actor)
	if out.OK {
		go publishStatusChange(entry)
	}
	return respondOutcome(c, out)
}

type bulkStatusReq struct {
	EquipmentCodes []string `json:"equipment_codes" validate:"required,min=1"`
	Status         string   `json:"status" validate:"required"`
	Reason         string   `json:"reason"`
}

// BulkUpdateStatus applies one status to a selection of equipment items in
// one atomic step. Availability is derived from the status, quantities stay
// as they are and every item is audited individually.
func (h *AdminHandler) BulkUpdateStatus(c echo.Context) error {
	var req bulkStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	reason := req.Reason
	if reason == "" {
		reason = "Bulk status update"
	}
	actor := actorFromContext(c)
	entries, out := h.Ledger.BulkUpdateEquipmentStatus(req.EquipmentCodes, req.Status, reason, actor)
	if out.OK {
		for _, entry := range entries {
			go publishStatusChange(entry)
		}
	}
	return respondOutcome(c, out)
}

// SweepOverdue flags approved requests past their promised return date.
func (h *AdminHandler) SweepOverdue(c echo.Context) error {
	actor := actorFromContext(c)
	return respondOutcome(c, h.Ledger.SweepOverdue(actor))
}

// Audit returns the equipment status audit trail, most recent first.
func (h *AdminHandler) Audit(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"audit": h.Ledger.Audit()})
}

// publishStatusChange emits the audit entry the ledger wrote, so the event
// always carries the old/new values captured under the ledger's lock.
func publishStatusChange(entry model.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queuepub.PublishStatusChanged(ctx, queue.EquipmentStatusChangedEvent{
		EquipmentCode: entry.EquipmentCode,
		EquipmentName: entry.EquipmentName,
		OldStatus:     entry.OldStatus,
		NewStatus:     entry.NewStatus,
		OldQuantity:   entry.OldQuantity,
		NewQuantity:   entry.NewQuantity,
		ChangedBy:     entry.Actor,
		Reason:        entry.Reason,
		ChangedAt:     entry.Timestamp.UTC().Format(time.RFC3339),
	})
}

// publishDecision emits a RequestDecidedEvent for the request's current
// state. Publishing is fire-and-forget so broker outages never block the
// response.
func (h *AdminHandler) publishDecision(requestID string, actor model.Actor) {
	req, ok := h.Ledger.Request(requestID)
	if !ok {
		return
	}
	decidedAt := time.Now().UTC()
	if req.ActedAt != nil {
		decidedAt = req.ActedAt.UTC()
	}
	evt := queue.RequestDecidedEvent{
		RequestID:     req.ID,
		Decision:      string(req.Status),
		EquipmentCode: req.EquipmentCode,
		EquipmentName: req.EquipmentName,
		Quantity:      req.Quantity,
		RoomCode:      req.RoomCode,
		RequesterID:   req.Requester.ID,
		RequesterName: req.Requester.Name,
		DecidedBy:     actor.Name,
		Reason:        req.Reason,
		DecidedAt:     decidedAt.Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queuepub.PublishRequestDecided(ctx, evt)
	}()
}
