package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/FraN-onLine/ccis-connect/internal/ledger"
	"github.com/FraN-onLine/ccis-connect/internal/model"
	"github.com/FraN-onLine/ccis-connect/internal/validation"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New(ledger.DefaultSeed(), time.Minute)
	t.Cleanup(l.Close)
	return l
}

// asUser mimics what the JWT middleware stores on the context.
func asUser(c echo.Context, id uint64, name, role string) {
	c.Set("user_id", id)
	c.Set("name", name)
	c.Set("role", role)
}

func doJSON(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestListRooms(t *testing.T) {
	e := newEcho()
	h := NewBrowseHandler(newLedger(t))

	c, rec := doJSON(e, http.MethodGet, "/v1/rooms", "")
	require.NoError(t, h.ListRooms(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rooms []roomView `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 6)
	require.Equal(t, "100A", body.Rooms[0].Code)
}

func TestGetEquipmentNotFound(t *testing.T) {
	e := newEcho()
	h := NewBrowseHandler(newLedger(t))

	c, rec := doJSON(e, http.MethodGet, "/v1/equipment/telescope", "")
	c.SetParamNames("code")
	c.SetParamValues("telescope")
	require.NoError(t, h.GetEquipment(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	e := newEcho()
	l := newLedger(t)
	h := NewRequestHandler(l)

	returnDate := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	payload := `{"equipment_code":"laptop","quantity":2,"room_code":"100B",` +
		`"purpose":"Thesis defense","duration":"3 days","return_date":"` + returnDate + `"}`
	c, rec := doJSON(e, http.MethodPost, "/v1/requests", payload)
	asUser(c, 7, "Dana Cruz", "STUDENT")

	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		OK      bool                `json:"ok"`
		Request model.BorrowRequest `json:"request"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.OK)
	require.Equal(t, model.StatusPending, body.Request.Status)
	require.Equal(t, uint64(7), body.Request.Requester.ID)

	// Submitting holds no stock.
	eq, ok := l.EquipmentByCode("laptop")
	require.True(t, ok)
	require.Equal(t, 12, eq.Quantity)
}

func TestSubmitRejectsGuests(t *testing.T) {
	e := newEcho()
	h := NewRequestHandler(newLedger(t))

	returnDate := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	payload := `{"equipment_code":"laptop","quantity":1,"purpose":"x",` +
		`"duration":"1 day","return_date":"` + returnDate + `"}`
	c, rec := doJSON(e, http.MethodPost, "/v1/requests", payload)
	// No claims on the context: the actor falls back to GUEST.

	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitValidatesBody(t *testing.T) {
	e := newEcho()
	h := NewRequestHandler(newLedger(t))

	c, rec := doJSON(e, http.MethodPost, "/v1/requests", `{"equipment_code":"laptop"}`)
	asUser(c, 7, "Dana Cruz", "STUDENT")

	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRequestHidesOthersRequests(t *testing.T) {
	e := newEcho()
	l := newLedger(t)
	h := NewRequestHandler(l)

	owner := model.Actor{ID: 7, Name: "Dana Cruz", Role: model.RoleStudent}
	created, out := l.Submit(owner, ledger.SubmitInput{
		EquipmentCode: "projector",
		Quantity:      1,
		Purpose:       "Film showing",
		Duration:      "1 day",
		ReturnDate:    time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
	})
	require.True(t, out.OK)

	c, rec := doJSON(e, http.MethodGet, "/v1/requests/"+created.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	asUser(c, 8, "Someone Else", "STUDENT")
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Admins can read any request.
	c, rec = doJSON(e, http.MethodGet, "/v1/requests/"+created.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	asUser(c, 1, "Registrar", "ADMIN")
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestApproveEndToEnd(t *testing.T) {
	e := newEcho()
	l := newLedger(t)
	admin := NewAdminHandler(l)

	student := model.Actor{ID: 7, Name: "Dana Cruz", Role: model.RoleStudent}
	created, out := l.Submit(student, ledger.SubmitInput{
		EquipmentCode: "laptop",
		Quantity:      5,
		RoomCode:      "100C",
		Purpose:       "Capstone demo",
		Duration:      "2 days",
		ReturnDate:    time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
	})
	require.True(t, out.OK)

	c, rec := doJSON(e, http.MethodPost, "/v1/requests/"+created.ID+"/approve", "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	asUser(c, 1, "Registrar", "ADMIN")
	require.NoError(t, admin.Approve(c))
	require.Equal(t, http.StatusOK, rec.Code)

	eq, _ := l.EquipmentByCode("laptop")
	require.Equal(t, 7, eq.Quantity)
	room, _ := l.Room("100C")
	require.Equal(t, 5, room.Items["laptop"])
}

func TestApproveConflictMapsTo409(t *testing.T) {
	e := newEcho()
	l := newLedger(t)
	admin := NewAdminHandler(l)

	student := model.Actor{ID: 7, Name: "Dana Cruz", Role: model.RoleStudent}
	created, out := l.Submit(student, ledger.SubmitInput{
		EquipmentCode: "tv",
		Quantity:      3,
		Purpose:       "Orientation",
		Duration:      "1 day",
		ReturnDate:    time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
	})
	require.True(t, out.OK)

	// Drain the stock behind the pending request's back.
	registrar := model.Actor{ID: 1, Name: "Registrar", Role: model.RoleAdmin}
	other, out := l.Submit(model.Actor{ID: 9, Name: "B", Role: model.RoleStudent}, ledger.SubmitInput{
		EquipmentCode: "tv",
		Quantity:      2,
		Purpose:       "Seminar",
		Duration:      "1 day",
		ReturnDate:    time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
	})
	require.True(t, out.OK)
	require.True(t, l.Approve(other.ID, registrar).OK)

	c, rec := doJSON(e, http.MethodPost, "/v1/requests/"+created.ID+"/approve", "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	asUser(c, 1, "Registrar", "ADMIN")
	require.NoError(t, admin.Approve(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestReturnClampsAndReportsAmount(t *testing.T) {
	e := newEcho()
	l := newLedger(t)
	admin := NewAdminHandler(l)

	registrar := model.Actor{ID: 1, Name: "Registrar", Role: model.RoleAdmin}
	created, out := l.Submit(model.Actor{ID: 7, Name: "Dana Cruz", Role: model.RoleStudent}, ledger.SubmitInput{
		EquipmentCode: "hdmi-cable",
		Quantity:      4,
		RoomCode:      "100A",
		Purpose:       "Lab setup",
		Duration:      "1 day",
		ReturnDate:    time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
	})
	require.True(t, out.OK)
	require.True(t, l.Approve(created.ID, registrar).OK)

	c, rec := doJSON(e, http.MethodPost, "/v1/returns",
		`{"room_code":"100A","equipment_code":"hdmi-cable","quantity":10}`)
	asUser(c, 1, "Registrar", "ADMIN")
	require.NoError(t, admin.Return(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK     bool `json:"ok"`
		Amount int  `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.OK)
	require.Equal(t, 4, body.Amount)
}

func TestUpdateEquipmentStatusRequiresReason(t *testing.T) {
	e := newEcho()
	admin := NewAdminHandler(newLedger(t))

	c, rec := doJSON(e, http.MethodPatch, "/v1/equipment/tv/status",
		`{"status":"Under Maintenance","available":false,"quantity":3}`)
	c.SetParamNames("code")
	c.SetParamValues("tv")
	asUser(c, 1, "Registrar", "ADMIN")
	require.NoError(t, admin.UpdateEquipmentStatus(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanRequiresRoomCapability(t *testing.T) {
	e := newEcho()
	rooms := NewRoomHandler(newLedger(t))

	c, rec := doJSON(e, http.MethodPost, "/v1/rooms/100A/scan", "")
	c.SetParamNames("code")
	c.SetParamValues("100A")
	asUser(c, 7, "Dana Cruz", "STUDENT")
	require.NoError(t, rooms.Scan(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = doJSON(e, http.MethodPost, "/v1/rooms/100A/scan", "")
	c.SetParamNames("code")
	c.SetParamValues("100A")
	asUser(c, 3, "Prof. Reyes", "FACULTY")
	require.NoError(t, rooms.Scan(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBulkStatusUpdateDefaultsReason(t *testing.T) {
	e := newEcho()
	l := newLedger(t)
	admin := NewAdminHandler(l)

	c, rec := doJSON(e, http.MethodPatch, "/v1/equipment/status",
		`{"equipment_codes":["tv","projector"],"status":"Under Maintenance"}`)
	asUser(c, 1, "Registrar", "ADMIN")
	require.NoError(t, admin.BulkUpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK     bool `json:"ok"`
		Amount int  `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.OK)
	require.Equal(t, 2, body.Amount)

	audit := l.Audit()
	require.Len(t, audit, 2)
	for _, entry := range audit {
		require.Equal(t, "Bulk status update", entry.Reason)
	}

	// an empty selection is rejected before reaching the ledger
	c, rec = doJSON(e, http.MethodPatch, "/v1/equipment/status",
		`{"equipment_codes":[],"status":"Available"}`)
	asUser(c, 1, "Registrar", "ADMIN")
	require.NoError(t, admin.BulkUpdateStatus(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
