package handler // handler defines http handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/FraN-onLine/ccis-connect/internal/ledger"
	"github.com/FraN-onLine/ccis-connect/internal/model"
)

// actorFromContext assembles the acting user from claims the JWT middleware
// stored on the context. Missing or malformed claims fall back to GUEST, so
// unauthenticated routes can share the same handlers.
func actorFromContext(c echo.Context) model.Actor {
	actor := model.Actor{Role: model.RoleGuest}
	switch t := c.Get("user_id").(type) {
	case uint64:
		actor.ID = t
	case int:
		actor.ID = uint64(t)
	case int64:
		actor.ID = uint64(t)
	case float64:
		actor.ID = uint64(t)
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			actor.ID = n
		}
	}
	if name, ok := c.Get("name").(string); ok {
		actor.Name = name
	}
	if role, ok := c.Get("role").(string); ok {
		if parsed, ok := model.ParseRole(role); ok {
			actor.Role = parsed
		}
	}
	return actor
}

// outcomeStatus maps ledger outcome codes onto HTTP status codes.
func outcomeStatus(out ledger.Outcome) int {
	if out.OK {
		return http.StatusOK
	}
	switch out.Code {
	case ledger.CodeInvalid:
		return http.StatusBadRequest
	case ledger.CodeUnavailable:
		return http.StatusConflict
	case ledger.CodeUnauthorized:
		return http.StatusForbidden
	case ledger.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondOutcome writes the standard outcome envelope used by every
// ledger-backed endpoint.
func respondOutcome(c echo.Context, out ledger.Outcome) error {
	body := echo.Map{"ok": out.OK, "message": out.Message}
	if out.Amount > 0 {
		body["amount"] = out.Amount
	}
	return c.JSON(outcomeStatus(out), body)
}
