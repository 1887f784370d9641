package ledger

import (
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/FraN-onLine/ccis-connect/internal/model"
)

var (
    admin    = model.Actor{ID: 1, Name: "Admin", Role: model.RoleAdmin}
    student  = model.Actor{ID: 2, Name: "Alice", Role: model.RoleStudent}
    student2 = model.Actor{ID: 3, Name: "Bob", Role: model.RoleStudent}
    faculty  = model.Actor{ID: 4, Name: "Prof. Santos", Role: model.RoleFaculty}
    guest    = model.Actor{ID: 0, Name: "Guest", Role: model.RoleGuest}
)

func newTestLedger() *Ledger {
    return New(DefaultSeed(), 0)
}

func futureDate() string {
    return time.Now().UTC().Add(72 * time.Hour).Format("2006-01-02")
}

func laptopRequest(qty int, room string) SubmitInput {
    return SubmitInput{
        EquipmentCode: "laptop",
        Quantity:      qty,
        RoomCode:      room,
        Purpose:       "Programming lab session",
        Duration:      "3 days",
        ReturnDate:    futureDate(),
    }
}

func mustQuantity(t *testing.T, l *Ledger, code string) int {
    t.Helper()
    eq, found := l.EquipmentByCode(code)
    if !found {
        t.Fatalf("equipment %q missing from catalog", code)
    }
    return eq.Quantity
}

func TestSubmitValidationOrder(t *testing.T) {
    l := newTestLedger()

    cases := []struct {
        name  string
        actor model.Actor
        in    SubmitInput
        code  Code
    }{
        {"guest cannot borrow", guest, laptopRequest(1, ""), CodeUnauthorized},
        {"unknown equipment", student, SubmitInput{EquipmentCode: "drone", Quantity: 1, Purpose: "x", Duration: "x", ReturnDate: futureDate()}, CodeNotFound},
        {"zero quantity", student, laptopRequest(0, ""), CodeInvalid},
        {"negative quantity", student, laptopRequest(-3, ""), CodeInvalid},
        {"unknown room", student, laptopRequest(1, "999Z"), CodeNotFound},
        {"excess quantity", student, laptopRequest(13, "100A"), CodeUnavailable},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            _, out := l.Submit(tc.actor, tc.in)
            if out.OK {
                t.Fatalf("expected failure, got success: %+v", out)
            }
            if out.Code != tc.code {
                t.Fatalf("code = %q, want %q (message: %s)", out.Code, tc.code, out.Message)
            }
        })
    }

    // no failure may have appended a request or touched stock
    require.Empty(t, l.Requests())
    require.Equal(t, 12, mustQuantity(t, l, "laptop"))
}

func TestSubmitRequiresDescriptiveFields(t *testing.T) {
    l := newTestLedger()

    in := laptopRequest(1, "")
    in.Purpose = ""
    if _, out := l.Submit(student, in); out.OK || out.Code != CodeInvalid {
        t.Fatalf("missing purpose accepted: %+v", out)
    }

    in = laptopRequest(1, "")
    in.ReturnDate = "2020-01-01"
    if _, out := l.Submit(student, in); out.OK || out.Code != CodeInvalid {
        t.Fatalf("past return date accepted: %+v", out)
    }

    // faculty must state the educational purpose
    if _, out := l.Submit(faculty, laptopRequest(1, "")); out.OK {
        t.Fatalf("faculty request without educational purpose accepted")
    }
    in = laptopRequest(1, "")
    in.EducationalPurpose = "CS101 demonstration"
    _, out := l.Submit(faculty, in)
    require.True(t, out.OK, out.Message)
}

func TestSubmitLeavesInventoryUntouched(t *testing.T) {
    l := newTestLedger()

    req, out := l.Submit(student, laptopRequest(5, "100A"))
    require.True(t, out.OK, out.Message)
    require.Equal(t, model.StatusPending, req.Status)
    require.Equal(t, 12, mustQuantity(t, l, "laptop"))

    // competing pending requests may exceed physical stock
    _, out = l.Submit(student2, laptopRequest(12, "100B"))
    require.True(t, out.OK, out.Message)
    require.Equal(t, 12, mustQuantity(t, l, "laptop"))

    // ledger is most-recent-first
    reqs := l.Requests()
    require.Len(t, reqs, 2)
    require.Equal(t, student2.ID, reqs[0].Requester.ID)
    require.Equal(t, req.ID, reqs[1].ID)
}

func TestApproveDebitsStockAndAssignsRoom(t *testing.T) {
    l := newTestLedger()
    req, _ := l.Submit(student, laptopRequest(5, "100A"))

    out := l.Approve(req.ID, admin)
    require.True(t, out.OK, out.Message)
    require.Equal(t, 7, mustQuantity(t, l, "laptop"))

    room, _ := l.Room("100A")
    require.Equal(t, 5, room.Assigned("laptop"))

    got, _ := l.Request(req.ID)
    require.Equal(t, model.StatusApproved, got.Status)
    require.Equal(t, "Admin", got.ActedBy)
    require.NotNil(t, got.ActedAt)
}

func TestApproveRequiresAdmin(t *testing.T) {
    l := newTestLedger()
    req, _ := l.Submit(student, laptopRequest(1, ""))

    out := l.Approve(req.ID, faculty)
    if out.OK || out.Code != CodeUnauthorized {
        t.Fatalf("faculty approval allowed: %+v", out)
    }
    got, _ := l.Request(req.ID)
    require.Equal(t, model.StatusPending, got.Status)
}

func TestFirstApprovedWins(t *testing.T) {
    l := newTestLedger()
    first, _ := l.Submit(student, laptopRequest(8, "100A"))
    second, _ := l.Submit(student2, laptopRequest(8, "100B"))

    require.True(t, l.Approve(first.ID, admin).OK)
    require.Equal(t, 4, mustQuantity(t, l, "laptop"))

    out := l.Approve(second.ID, admin)
    require.False(t, out.OK)
    require.Equal(t, CodeUnavailable, out.Code)

    // refused approval leaves quantity and status unchanged
    require.Equal(t, 4, mustQuantity(t, l, "laptop"))
    got, _ := l.Request(second.ID)
    require.Equal(t, model.StatusPending, got.Status)
}

func TestRejectOnlyChangesStatus(t *testing.T) {
    l := newTestLedger()
    req, _ := l.Submit(student, laptopRequest(4, "100C"))

    out := l.Reject(req.ID, admin, "end-of-term lockdown")
    require.True(t, out.OK)
    require.Equal(t, 12, mustQuantity(t, l, "laptop"))

    got, _ := l.Request(req.ID)
    require.Equal(t, model.StatusRejected, got.Status)
    require.Equal(t, "end-of-term lockdown", got.Reason)

    // terminal: a rejected request cannot be approved afterwards
    out = l.Approve(req.ID, admin)
    require.False(t, out.OK)
    require.Equal(t, CodeInvalid, out.Code)
}

func TestReturnClampsToAssigned(t *testing.T) {
    l := newTestLedger()
    req, _ := l.Submit(student, laptopRequest(5, "100A"))
    require.True(t, l.Approve(req.ID, admin).OK)

    // over-return clamps silently to the assigned amount
    out := l.ReturnEquipment("100A", "laptop", 9, admin)
    require.True(t, out.OK, out.Message)
    require.Equal(t, 5, out.Amount)
    require.Equal(t, 12, mustQuantity(t, l, "laptop"))

    room, _ := l.Room("100A")
    require.Equal(t, 0, room.Assigned("laptop"))

    // nothing left in the room
    out = l.ReturnEquipment("100A", "laptop", 1, admin)
    require.False(t, out.OK)
    require.Equal(t, CodeUnavailable, out.Code)
}

func TestMoveBetweenRooms(t *testing.T) {
    l := newTestLedger()
    req, _ := l.Submit(student, laptopRequest(6, "100A"))
    require.True(t, l.Approve(req.ID, admin).OK)

    // same source and destination is rejected with no mutation
    out := l.Move("100A", "100A", "laptop", 2, admin)
    require.False(t, out.OK)
    require.Equal(t, CodeInvalid, out.Code)

    // moving more than assigned clamps to the available amount
    out = l.Move("100A", "100B", "laptop", 10, admin)
    require.True(t, out.OK, out.Message)
    require.Equal(t, 6, out.Amount)

    src, _ := l.Room("100A")
    dst, _ := l.Room("100B")
    require.Equal(t, 0, src.Assigned("laptop"))
    require.Equal(t, 6, dst.Assigned("laptop"))

    // submission alone never debits stock
    require.Equal(t, 12, mustQuantity(t, l, "laptop"))
}

func TestStatusUpdateRequiresReasonAndWritesAudit(t *testing.T) {
    l := newTestLedger()

    _, out := l.UpdateEquipmentStatus(StatusUpdateInput{
        EquipmentCode: "tv", Status: "Under Maintenance", Available: false, Quantity: 2,
    }, admin)
    require.False(t, out.OK)
    require.Equal(t, CodeInvalid, out.Code)
    require.Empty(t, l.Audit())

    written, out := l.UpdateEquipmentStatus(StatusUpdateInput{
        EquipmentCode: "tv", Status: "Under Maintenance", Available: false, Quantity: 2,
        Reason: "broken HDMI port on one unit",
    }, admin)
    require.True(t, out.OK, out.Message)

    eq, _ := l.EquipmentByCode("tv")
    require.Equal(t, "Under Maintenance", eq.Status)
    require.False(t, eq.Available)
    require.Equal(t, 2, eq.Quantity)

    audit := l.Audit()
    require.Len(t, audit, 1)
    entry := audit[0]
    require.Equal(t, "Available", entry.OldStatus)
    require.Equal(t, "Under Maintenance", entry.NewStatus)
    require.Equal(t, 3, entry.OldQuantity)
    require.Equal(t, 2, entry.NewQuantity)
    require.Equal(t, "Admin", entry.Actor)
    require.NotEmpty(t, entry.Reason)

    // the entry handed back to the caller is the recorded one, so event
    // payloads built from it can never carry stale old values
    require.Equal(t, entry, written)

    // administratively unavailable equipment rejects new submissions
    _, sub := l.Submit(student, SubmitInput{
        EquipmentCode: "tv", Quantity: 1, Purpose: "film showing", Duration: "1 day", ReturnDate: futureDate(),
    })
    require.False(t, sub.OK)
    require.Equal(t, CodeUnavailable, sub.Code)
}

func TestBulkStatusUpdate(t *testing.T) {
    l := newTestLedger()

    _, out := l.BulkUpdateEquipmentStatus([]string{"tv", "projector"}, "Under Maintenance", "semester-end inspection", student)
    require.False(t, out.OK)
    require.Equal(t, CodeUnauthorized, out.Code)

    _, out = l.BulkUpdateEquipmentStatus(nil, "Under Maintenance", "semester-end inspection", admin)
    require.False(t, out.OK)
    require.Equal(t, CodeInvalid, out.Code)

    entries, out := l.BulkUpdateEquipmentStatus([]string{"tv", "drone", "projector"}, "Under Maintenance", "semester-end inspection", admin)
    require.True(t, out.OK, out.Message)
    require.Equal(t, 2, out.Amount) // unknown codes are skipped
    require.Len(t, entries, 2)

    for _, code := range []string{"tv", "projector"} {
        eq, okFound := l.EquipmentByCode(code)
        require.True(t, okFound)
        require.Equal(t, "Under Maintenance", eq.Status)
        require.False(t, eq.Available) // availability follows the label
    }
    // quantities are untouched by a bulk relabel
    require.Equal(t, 3, mustQuantity(t, l, "tv"))
    require.Equal(t, 5, mustQuantity(t, l, "projector"))

    // one audit entry per item, each carrying the shared reason
    require.Len(t, l.Audit(), 2)
    for _, entry := range l.Audit() {
        require.Equal(t, "semester-end inspection", entry.Reason)
        require.Equal(t, entry.OldQuantity, entry.NewQuantity)
    }

    // relabeling back to Available restores borrowability
    _, out = l.BulkUpdateEquipmentStatus([]string{"tv"}, "Available", "repairs done", admin)
    require.True(t, out.OK)
    eq, _ := l.EquipmentByCode("tv")
    require.True(t, eq.Available)

    _, out = l.BulkUpdateEquipmentStatus([]string{"drone"}, "Available", "repairs done", admin)
    require.False(t, out.OK)
    require.Equal(t, CodeNotFound, out.Code)
}

func TestSubmitBlockedWhileUnreturned(t *testing.T) {
    l := newTestLedger()
    req, _ := l.Submit(student, laptopRequest(2, "100A"))
    require.True(t, l.Approve(req.ID, admin).OK)

    _, out := l.Submit(student, laptopRequest(1, "100B"))
    require.False(t, out.OK)
    require.Equal(t, CodeInvalid, out.Code)

    // marking the request returned unblocks the requester
    require.True(t, l.MarkRequestReturned(req.ID, admin).OK)
    _, out = l.Submit(student, laptopRequest(1, "100B"))
    require.True(t, out.OK, out.Message)
}

func TestSubmitBlockedWhilePending(t *testing.T) {
    l := newTestLedger()
    first, out := l.Submit(student, laptopRequest(2, "100A"))
    require.True(t, out.OK, out.Message)

    // one open request per user: a second submit while the first is
    // still pending is refused
    _, out = l.Submit(student, laptopRequest(1, "100B"))
    require.False(t, out.OK)
    require.Equal(t, CodeInvalid, out.Code)
    require.Contains(t, out.Message, "pending request")
    require.Len(t, l.Requests(), 1)

    // another user is not affected
    _, out = l.Submit(student2, laptopRequest(1, "100B"))
    require.True(t, out.OK, out.Message)

    // a decision on the open request lifts the block; here rejection,
    // so the unreturned rule does not kick in either
    require.True(t, l.Reject(first.ID, admin, "room double-booked").OK)
    _, out = l.Submit(student, laptopRequest(1, "100B"))
    require.True(t, out.OK, out.Message)
}

// TestLaptopLifecycleScenario runs the reference end-to-end flow: approve
// five laptops into 100A, refuse a ten-laptop request against the reduced
// stock, approve seven more, then restock via a room return.
func TestLaptopLifecycleScenario(t *testing.T) {
    l := newTestLedger()

    first, out := l.Submit(student, laptopRequest(5, "100A"))
    require.True(t, out.OK)
    require.Equal(t, 12, mustQuantity(t, l, "laptop"))

    require.True(t, l.Approve(first.ID, admin).OK)
    require.Equal(t, 7, mustQuantity(t, l, "laptop"))

    _, out = l.Submit(student2, laptopRequest(10, "100A"))
    require.False(t, out.OK)
    require.Equal(t, CodeUnavailable, out.Code)
    require.Len(t, l.Requests(), 1)

    second, out := l.Submit(student2, laptopRequest(7, "100A"))
    require.True(t, out.OK)
    require.True(t, l.Approve(second.ID, admin).OK)
    require.Equal(t, 0, mustQuantity(t, l, "laptop"))

    ret := l.ReturnEquipment("100A", "laptop", 7, admin)
    require.True(t, ret.OK, ret.Message)
    require.Equal(t, 7, ret.Amount)
    require.Equal(t, 7, mustQuantity(t, l, "laptop"))
}

func TestQuantityNeverNegative(t *testing.T) {
    l := newTestLedger()

    // drain the TV stock completely, then verify further approvals refuse
    // rather than driving quantity below zero
    req, _ := l.Submit(student, SubmitInput{
        EquipmentCode: "tv", Quantity: 3, RoomCode: "100A",
        Purpose: "orientation", Duration: "1 day", ReturnDate: futureDate(),
    })
    straggler, _ := l.Submit(student2, SubmitInput{
        EquipmentCode: "tv", Quantity: 1, RoomCode: "100B",
        Purpose: "orientation", Duration: "1 day", ReturnDate: futureDate(),
    })
    require.True(t, l.Approve(req.ID, admin).OK)
    require.Equal(t, 0, mustQuantity(t, l, "tv"))

    out := l.Approve(straggler.ID, admin)
    require.False(t, out.OK)
    require.Equal(t, 0, mustQuantity(t, l, "tv"))
}

func TestCommitHookObservesPostTransitionState(t *testing.T) {
    l := newTestLedger()
    var snaps []Snapshot
    l.SetCommitHook(func(s Snapshot) { snaps = append(snaps, s) })

    req, out := l.Submit(student, laptopRequest(5, "100A"))
    require.True(t, out.OK)
    require.True(t, l.Approve(req.ID, admin).OK)

    // failed transitions must not fire the hook
    l.Approve("REQ-0-missing", admin)
    require.Len(t, snaps, 2)

    last := snaps[len(snaps)-1]
    require.Len(t, last.Requests, 1)
    require.Equal(t, model.StatusApproved, last.Requests[0].Status)
    for _, eq := range last.Equipment {
        if eq.Code == "laptop" {
            require.Equal(t, 7, eq.Quantity)
        }
    }
}

func TestFromSnapshotRoundTrip(t *testing.T) {
    l := newTestLedger()
    req, _ := l.Submit(student, laptopRequest(5, "100A"))
    require.True(t, l.Approve(req.ID, admin).OK)
    _, upd := l.UpdateEquipmentStatus(StatusUpdateInput{
        EquipmentCode: "projector", Status: "Unavailable", Available: false, Quantity: 5,
        Reason: "inventory check",
    }, admin)
    require.True(t, upd.OK)

    var captured Snapshot
    l.SetCommitHook(func(s Snapshot) { captured = s })
    require.True(t, l.SetRoomAvailability("100F", false, admin).OK)

    restored := FromSnapshot(captured, 0)
    require.Equal(t, 7, mustQuantity(t, restored, "laptop"))
    require.Len(t, restored.Requests(), 1)
    require.Len(t, restored.Audit(), 1)

    room, found := restored.Room("100F")
    require.True(t, found)
    require.False(t, room.Available)
    assigned, _ := restored.Room("100A")
    require.Equal(t, 5, assigned.Assigned("laptop"))
}

func TestSweepOverdueFlagsPastDueRequests(t *testing.T) {
    l := newTestLedger()
    req, out := l.Submit(student, laptopRequest(2, "100A"))
    require.True(t, out.OK)
    require.True(t, l.Approve(req.ID, admin).OK)

    // Nothing is due yet.
    out = l.SweepOverdue(admin)
    require.True(t, out.OK)
    require.Equal(t, 0, out.Amount)

    // Jump past the promised return date.
    l.now = func() time.Time { return time.Now().UTC().Add(30 * 24 * time.Hour) }
    out = l.SweepOverdue(admin)
    require.True(t, out.OK)
    require.Equal(t, 1, out.Amount)

    got, ok := l.Request(req.ID)
    require.True(t, ok)
    require.Equal(t, model.StatusOverdue, got.Status)

    // Overdue requests can still be closed out as returned.
    require.True(t, l.MarkRequestReturned(req.ID, admin).OK)

    // Sweeping again finds nothing.
    out = l.SweepOverdue(admin)
    require.Equal(t, 0, out.Amount)
}

func TestSweepOverdueRequiresAdmin(t *testing.T) {
    l := newTestLedger()
    out := l.SweepOverdue(faculty)
    require.False(t, out.OK)
    require.Equal(t, CodeUnauthorized, out.Code)
}
