package ledger

import (
    "strings"
    "time"

    "github.com/FraN-onLine/ccis-connect/internal/model"
)

// SubmitInput carries everything a borrow request submission needs.  The
// descriptive fields (purpose, duration, return date) are required to be
// present but are never enforced beyond that.
type SubmitInput struct {
    EquipmentCode      string
    Quantity           int
    RoomCode           string // optional destination room
    Purpose            string
    Duration           string
    ReturnDate         string // YYYY-MM-DD
    EducationalPurpose string // required for faculty requesters
}

// Submit validates a borrow request and, when every precondition holds,
// prepends a new pending request to the ledger.  Inventory is NOT touched
// here: stock is only debited at approval time, so competing pending
// requests may together exceed physical stock and are resolved
// first-approved-wins.  Preconditions are checked in order and the first
// failure wins.
func (l *Ledger) Submit(actor model.Actor, in SubmitInput) (model.BorrowRequest, Outcome) {
    l.mu.Lock()

    if !actor.Capabilities().CanBorrow {
        l.mu.Unlock()
        return model.BorrowRequest{}, fail(CodeUnauthorized, "Your role does not allow borrowing equipment.")
    }
    eq, exists := l.equipment[in.EquipmentCode]
    if !exists {
        l.mu.Unlock()
        return model.BorrowRequest{}, fail(CodeNotFound, "Equipment not found.")
    }
    if !eq.Borrowable() {
        l.mu.Unlock()
        return model.BorrowRequest{}, fail(CodeUnavailable, "Equipment no longer available. Please browse the equipment list again.")
    }
    if in.Quantity <= 0 {
        l.mu.Unlock()
        return model.BorrowRequest{}, fail(CodeInvalid, "Quantity must be a positive integer.")
    }
    if in.RoomCode != "" {
        if _, exists := l.rooms[in.RoomCode]; !exists {
            l.mu.Unlock()
            return model.BorrowRequest{}, fail(CodeNotFound, "Room not found.")
        }
    }
    if out, valid := l.validateDetailsLocked(actor, in); !valid {
        l.mu.Unlock()
        return model.BorrowRequest{}, out
    }
    if names := l.unreturnedEquipmentLocked(actor.ID); len(names) > 0 {
        l.mu.Unlock()
        return model.BorrowRequest{}, fail(CodeInvalid,
            "You have unreturned equipment: %s. Submit is disabled until items are returned.",
            strings.Join(names, ", "))
    }
    if l.hasPendingRequestLocked(actor.ID) {
        l.mu.Unlock()
        return model.BorrowRequest{}, fail(CodeInvalid,
            "You already have pending request(s). Submit is disabled until they are approved or cancelled.")
    }
    if in.Quantity > eq.Quantity {
        l.mu.Unlock()
        return model.BorrowRequest{}, fail(CodeUnavailable,
            "Requested quantity (%d) exceeds available %s (%d).", in.Quantity, eq.Name, eq.Quantity)
    }

    req := &model.BorrowRequest{
        ID:                 l.newRequestID(),
        EquipmentCode:      eq.Code,
        EquipmentName:      eq.Name,
        Quantity:           in.Quantity,
        RoomCode:           in.RoomCode,
        Requester:          actor,
        Status:             model.StatusPending,
        Purpose:            strings.TrimSpace(in.Purpose),
        Duration:           strings.TrimSpace(in.Duration),
        ReturnDate:         in.ReturnDate,
        EducationalPurpose: strings.TrimSpace(in.EducationalPurpose),
        CreatedAt:          l.now(),
    }
    l.requests = append([]*model.BorrowRequest{req}, l.requests...)
    out := *req
    l.commitAndUnlock()
    return out, ok("Request submitted and awaiting approval.")
}

// validateDetailsLocked checks the descriptive submission fields: purpose,
// duration and a return date that parses and is not in the past, plus the
// extra educational-purpose detail faculty requests must carry.
func (l *Ledger) validateDetailsLocked(actor model.Actor, in SubmitInput) (Outcome, bool) {
    if strings.TrimSpace(in.Purpose) == "" {
        return fail(CodeInvalid, "Purpose is required."), false
    }
    if strings.TrimSpace(in.Duration) == "" {
        return fail(CodeInvalid, "Duration is required."), false
    }
    if in.ReturnDate == "" {
        return fail(CodeInvalid, "Return date is required."), false
    }
    due, err := time.Parse("2006-01-02", in.ReturnDate)
    if err != nil {
        return fail(CodeInvalid, "Return date must be in YYYY-MM-DD format."), false
    }
    today := l.now().Truncate(24 * time.Hour)
    if due.Before(today) {
        return fail(CodeInvalid, "Return date cannot be in the past."), false
    }
    if actor.Role == model.RoleFaculty && strings.TrimSpace(in.EducationalPurpose) == "" {
        return fail(CodeInvalid, "Educational purpose details are required for faculty requests."), false
    }
    return Outcome{}, true
}

// unreturnedEquipmentLocked lists equipment names the user was approved
// for and has not yet returned.  Such a user is blocked from submitting
// further requests.
func (l *Ledger) unreturnedEquipmentLocked(userID uint64) []string {
    var names []string
    for _, req := range l.requests {
        if req.Requester.ID != userID {
            continue
        }
        if req.Status == model.StatusApproved || req.Status == model.StatusOverdue {
            names = append(names, req.EquipmentName)
        }
    }
    return names
}

// hasPendingRequestLocked reports whether the user already has a request
// awaiting a decision.  One open request per user at a time; the next one
// can be filed once the current one is approved or rejected.
func (l *Ledger) hasPendingRequestLocked(userID uint64) bool {
    for _, req := range l.requests {
        if req.Requester.ID == userID && req.Status == model.StatusPending {
            return true
        }
    }
    return false
}

// Approve applies a pending request: the requested quantity is re-checked
// against the then-current stock (other approvals may have consumed it
// since submission), the equipment is debited, the destination room's
// assigned count is credited and the request is stamped approved.  When
// stock is insufficient the operation is refused and the request stays
// pending - rejecting or waiting is the admin's call, no rollback of
// other requests happens.
func (l *Ledger) Approve(requestID string, actor model.Actor) Outcome {
    l.mu.Lock()

    if !actor.Capabilities().CanAdmin {
        l.mu.Unlock()
        return fail(CodeUnauthorized, "Only administrators can approve requests.")
    }
    req := l.findRequestLocked(requestID)
    if req == nil {
        l.mu.Unlock()
        return fail(CodeNotFound, "Request not found.")
    }
    if req.Status != model.StatusPending {
        l.mu.Unlock()
        return fail(CodeInvalid, "Only pending requests can be approved.")
    }
    eq, exists := l.equipment[req.EquipmentCode]
    if !exists {
        l.mu.Unlock()
        return fail(CodeNotFound, "Equipment referenced by this request no longer exists.")
    }
    if req.Quantity > eq.Quantity {
        l.mu.Unlock()
        return fail(CodeUnavailable, "Not enough %s in inventory to approve this request.", eq.Name)
    }

    eq.Quantity -= req.Quantity
    if req.RoomCode != "" {
        if room, exists := l.rooms[req.RoomCode]; exists {
            room.Items[req.EquipmentCode] += req.Quantity
        }
    }
    now := l.now()
    req.Status = model.StatusApproved
    req.ActedBy = actor.Name
    req.ActedAt = &now
    l.commitAndUnlock()
    return ok("Request approved.")
}

// Reject marks a pending request rejected.  It has no inventory side
// effect; the optional reason is kept on the record.
func (l *Ledger) Reject(requestID string, actor model.Actor, reason string) Outcome {
    l.mu.Lock()

    if !actor.Capabilities().CanAdmin {
        l.mu.Unlock()
        return fail(CodeUnauthorized, "Only administrators can reject requests.")
    }
    req := l.findRequestLocked(requestID)
    if req == nil {
        l.mu.Unlock()
        return fail(CodeNotFound, "Request not found.")
    }
    if req.Status != model.StatusPending {
        l.mu.Unlock()
        return fail(CodeInvalid, "Only pending requests can be rejected.")
    }

    now := l.now()
    req.Status = model.StatusRejected
    req.ActedBy = actor.Name
    req.ActedAt = &now
    req.Reason = strings.TrimSpace(reason)
    l.commitAndUnlock()
    return ok("Request rejected.")
}

// MarkRequestReturned flips an approved (or overdue) request to returned.
// This is best-effort status tracking only - stock movement is handled
// separately by ReturnEquipment, which operates on rooms rather than
// individual requests.
func (l *Ledger) MarkRequestReturned(requestID string, actor model.Actor) Outcome {
    l.mu.Lock()

    if !actor.Capabilities().CanAdmin {
        l.mu.Unlock()
        return fail(CodeUnauthorized, "Only administrators can mark requests returned.")
    }
    req := l.findRequestLocked(requestID)
    if req == nil {
        l.mu.Unlock()
        return fail(CodeNotFound, "Request not found.")
    }
    if !model.CanTransition(req.Status, model.StatusReturned) {
        l.mu.Unlock()
        return fail(CodeInvalid, "Only approved requests can be marked returned.")
    }

    now := l.now()
    req.Status = model.StatusReturned
    req.ActedBy = actor.Name
    req.ActedAt = &now
    l.commitAndUnlock()
    return ok("Request marked returned.")
}

// SweepOverdue flags every approved request whose promised return date has
// passed as overdue.  The sweep is idempotent; requests already overdue or
// returned are left alone.  Returns the number of requests flagged.
func (l *Ledger) SweepOverdue(actor model.Actor) Outcome {
    l.mu.Lock()

    if !actor.Capabilities().CanAdmin {
        l.mu.Unlock()
        return fail(CodeUnauthorized, "Only administrators can run the overdue sweep.")
    }

    today := l.now().Format("2006-01-02")
    flagged := 0
    for _, req := range l.requests {
        if req.Status != model.StatusApproved || req.ReturnDate == "" {
            continue
        }
        if req.ReturnDate < today && model.CanTransition(req.Status, model.StatusOverdue) {
            req.Status = model.StatusOverdue
            flagged++
        }
    }
    if flagged == 0 {
        l.mu.Unlock()
        return ok("No overdue requests found.")
    }
    out := okAmount(flagged, "%d request(s) flagged overdue.", flagged)
    l.commitAndUnlock()
    return out
}

// ReturnEquipment moves units from a room back into inventory.  Returning
// more than the room currently holds is clamped to the assigned amount
// (clamp-to-available), not rejected; the returned Outcome carries the
// amount actually restocked.
func (l *Ledger) ReturnEquipment(roomCode, equipmentCode string, qty int, actor model.Actor) Outcome {
    l.mu.Lock()

    if !actor.Capabilities().CanAdmin {
        l.mu.Unlock()
        return fail(CodeUnauthorized, "Only administrators can return equipment.")
    }
    room, exists := l.rooms[roomCode]
    if !exists {
        l.mu.Unlock()
        return fail(CodeNotFound, "Room not found.")
    }
    eq, exists := l.equipment[equipmentCode]
    if !exists {
        l.mu.Unlock()
        return fail(CodeNotFound, "Equipment not found.")
    }
    if qty <= 0 {
        l.mu.Unlock()
        return fail(CodeInvalid, "Return qty must be a positive integer.")
    }
    assigned := room.Assigned(equipmentCode)
    if assigned <= 0 {
        l.mu.Unlock()
        return fail(CodeUnavailable, "%s has no %s to return.", roomCode, eq.Name)
    }

    toReturn := min(assigned, qty)
    room.Items[equipmentCode] -= toReturn
    eq.Quantity += toReturn
    out := okAmount(toReturn, "Returned %d %s from %s.", toReturn, eq.Name, roomCode)
    l.commitAndUnlock()
    return out
}

// Move transfers assigned units between two distinct rooms.  The amount is
// clamped to what the source room currently holds; total inventory
// quantity never changes.
func (l *Ledger) Move(fromRoom, toRoom, equipmentCode string, qty int, actor model.Actor) Outcome {
    l.mu.Lock()

    if !actor.Capabilities().CanAdmin {
        l.mu.Unlock()
        return fail(CodeUnauthorized, "Only administrators can move equipment.")
    }
    if fromRoom == toRoom {
        l.mu.Unlock()
        return fail(CodeInvalid, "From and To cannot be the same room.")
    }
    src, exists := l.rooms[fromRoom]
    if !exists {
        l.mu.Unlock()
        return fail(CodeNotFound, "Source room not found.")
    }
    dst, exists := l.rooms[toRoom]
    if !exists {
        l.mu.Unlock()
        return fail(CodeNotFound, "Destination room not found.")
    }
    eq, exists := l.equipment[equipmentCode]
    if !exists {
        l.mu.Unlock()
        return fail(CodeNotFound, "Equipment not found.")
    }
    if qty <= 0 {
        l.mu.Unlock()
        return fail(CodeInvalid, "Move qty must be a positive integer.")
    }
    available := src.Assigned(equipmentCode)
    if available <= 0 {
        l.mu.Unlock()
        return fail(CodeUnavailable, "%s has no %s to move.", fromRoom, eq.Name)
    }

    toMove := min(available, qty)
    src.Items[equipmentCode] -= toMove
    dst.Items[equipmentCode] += toMove
    out := okAmount(toMove, "Moved %d %s from %s to %s.", toMove, eq.Name, fromRoom, toRoom)
    l.commitAndUnlock()
    return out
}

// StatusUpdateInput is the administrative equipment status overwrite.  A
// non-empty reason is mandatory because this is the one operation with an
// explicit audit trail.
type StatusUpdateInput struct {
    EquipmentCode string
    Status        string
    Available     bool
    Quantity      int
    Reason        string
}

// UpdateEquipmentStatus overwrites an equipment type's availability,
// quantity and descriptive status label, and appends an audit entry
// capturing the old and new values, the actor, the reason and a
// timestamp.  The written entry is returned so callers can publish it
// without re-reading state that may have moved on since.
func (l *Ledger) UpdateEquipmentStatus(in StatusUpdateInput, actor model.Actor) (model.AuditEntry, Outcome) {
    l.mu.Lock()

    if !actor.Capabilities().CanAdmin {
        l.mu.Unlock()
        return model.AuditEntry{}, fail(CodeUnauthorized, "Only administrators can update equipment status.")
    }
    if strings.TrimSpace(in.Reason) == "" {
        l.mu.Unlock()
        return model.AuditEntry{}, fail(CodeInvalid, "Please provide a reason for the status update.")
    }
    eq, exists := l.equipment[in.EquipmentCode]
    if !exists {
        l.mu.Unlock()
        return model.AuditEntry{}, fail(CodeNotFound, "Equipment not found.")
    }
    if in.Quantity < 0 {
        l.mu.Unlock()
        return model.AuditEntry{}, fail(CodeInvalid, "Quantity must not be negative.")
    }

    pending := 0
    for _, req := range l.requests {
        if req.EquipmentCode == eq.Code && req.Status == model.StatusPending {
            pending++
        }
    }
    entry := model.AuditEntry{
        EquipmentCode: eq.Code,
        EquipmentName: eq.Name,
        OldStatus:     eq.Status,
        NewStatus:     in.Status,
        OldQuantity:   eq.Quantity,
        NewQuantity:   in.Quantity,
        Actor:         actor.Name,
        Reason:        strings.TrimSpace(in.Reason),
        Timestamp:     l.now(),
    }
    l.audit = append([]model.AuditEntry{entry}, l.audit...)
    eq.Status = in.Status
    eq.Available = in.Available
    eq.Quantity = in.Quantity

    out := ok("Equipment status updated successfully.")
    if pending > 0 {
        out = okAmount(pending, "Equipment status updated. %d pending request(s) reference this equipment.", pending)
    }
    l.commitAndUnlock()
    return entry, out
}

// BulkUpdateEquipmentStatus applies one status label to several equipment
// types in a single atomic step.  Availability follows the label (only
// "Available" keeps items borrowable), quantities are untouched, and each
// updated item gets its own audit entry.  Unknown codes are skipped; the
// Outcome reports how many items were actually updated.
func (l *Ledger) BulkUpdateEquipmentStatus(codes []string, status, reason string, actor model.Actor) ([]model.AuditEntry, Outcome) {
    l.mu.Lock()

    if !actor.Capabilities().CanAdmin {
        l.mu.Unlock()
        return nil, fail(CodeUnauthorized, "Only administrators can update equipment status.")
    }
    if len(codes) == 0 {
        l.mu.Unlock()
        return nil, fail(CodeInvalid, "Please select at least one equipment item.")
    }
    if strings.TrimSpace(status) == "" {
        l.mu.Unlock()
        return nil, fail(CodeInvalid, "Please select a status to apply.")
    }
    if strings.TrimSpace(reason) == "" {
        l.mu.Unlock()
        return nil, fail(CodeInvalid, "Please provide a reason for the status update.")
    }

    var entries []model.AuditEntry
    for _, code := range codes {
        eq, exists := l.equipment[code]
        if !exists {
            continue
        }
        entry := model.AuditEntry{
            EquipmentCode: eq.Code,
            EquipmentName: eq.Name,
            OldStatus:     eq.Status,
            NewStatus:     status,
            OldQuantity:   eq.Quantity,
            NewQuantity:   eq.Quantity,
            Actor:         actor.Name,
            Reason:        strings.TrimSpace(reason),
            Timestamp:     l.now(),
        }
        l.audit = append([]model.AuditEntry{entry}, l.audit...)
        entries = append(entries, entry)
        eq.Status = status
        eq.Available = status == "Available"
    }
    if len(entries) == 0 {
        l.mu.Unlock()
        return nil, fail(CodeNotFound, "None of the selected equipment items were found.")
    }
    out := okAmount(len(entries), "Status applied to %d equipment item(s).", len(entries))
    l.commitAndUnlock()
    return entries, out
}

// SetRoomAvailability toggles a room's occupancy flag.  Any manual change
// cancels a scheduled auto-release for the room so a stale timer can
// never overwrite a newer decision.
func (l *Ledger) SetRoomAvailability(roomCode string, available bool, actor model.Actor) Outcome {
    l.mu.Lock()

    if !actor.Capabilities().CanUpdateRooms {
        l.mu.Unlock()
        return fail(CodeUnauthorized, "Your role does not allow updating rooms.")
    }
    room, exists := l.rooms[roomCode]
    if !exists {
        l.mu.Unlock()
        return fail(CodeNotFound, "Room not found.")
    }

    l.cancelReleaseLocked(roomCode)
    room.Available = available
    state := "occupied"
    if available {
        state = "available"
    }
    out := ok("Room " + roomCode + " marked " + state + ".")
    l.commitAndUnlock()
    return out
}
