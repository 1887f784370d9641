// Package ledger implements the Inventory & Request Ledger: the room
// registry, the equipment catalog, the append-ordered borrow request log
// and the validated transition functions that mutate them.  One Ledger
// value owns all of that state behind a single mutex, so every transition
// is applied as one atomic step with no interleaving - the single-writer
// model the rest of the service is built around.  Persistence and event
// publishing are collaborators: after each successful mutation the ledger
// hands a snapshot to an optional commit hook and otherwise never performs
// I/O of its own.
package ledger

import (
    "fmt"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/FraN-onLine/ccis-connect/internal/model"
)

// Snapshot is a point-in-time copy of the entire ledger state.  It is
// what the commit hook receives after every mutation and what the
// snapshot store persists as independent keyed blobs.
type Snapshot struct {
    Rooms     []model.Room          `json:"rooms"`
    Equipment []model.Equipment     `json:"equipment"`
    Requests  []model.BorrowRequest `json:"requests"`
    Audit     []model.AuditEntry    `json:"audit"`
}

// Ledger owns the in-memory state.  All exported methods are safe for
// concurrent use; internally every transition runs to completion under
// one mutex before any other may start.
type Ledger struct {
    mu sync.Mutex

    rooms      map[string]*model.Room
    roomOrder  []string
    equipment  map[string]*model.Equipment
    equipOrder []string
    requests   []*model.BorrowRequest // most-recent-first
    audit      []model.AuditEntry     // most-recent-first

    // cancellable auto-release of scanned rooms, keyed by room code
    releaseAfter time.Duration
    releaseGen   map[string]uint64
    releaseTimer map[string]*time.Timer

    onCommit  func(Snapshot)
    now       func() time.Time
    afterFunc func(time.Duration, func()) *time.Timer
}

// New builds a ledger from seed data.  releaseAfter controls how long a
// QR-scanned room stays occupied before the scheduled auto-release fires;
// zero disables auto-release entirely.
func New(seed Seed, releaseAfter time.Duration) *Ledger {
    l := &Ledger{
        rooms:        make(map[string]*model.Room, len(seed.Rooms)),
        equipment:    make(map[string]*model.Equipment, len(seed.Equipment)),
        releaseAfter: releaseAfter,
        releaseGen:   make(map[string]uint64),
        releaseTimer: make(map[string]*time.Timer),
        now:          func() time.Time { return time.Now().UTC() },
        afterFunc:    time.AfterFunc,
    }
    for _, r := range seed.Rooms {
        room := r
        if room.Items == nil {
            room.Items = make(map[string]int)
        }
        l.rooms[room.Code] = &room
        l.roomOrder = append(l.roomOrder, room.Code)
    }
    for _, e := range seed.Equipment {
        eq := e
        l.equipment[eq.Code] = &eq
        l.equipOrder = append(l.equipOrder, eq.Code)
    }
    return l
}

// FromSnapshot rebuilds a ledger from a previously persisted snapshot.
// Requests and audit entries are restored verbatim, preserving the
// most-recent-first ordering they were saved in.
func FromSnapshot(snap Snapshot, releaseAfter time.Duration) *Ledger {
    l := New(Seed{Rooms: snap.Rooms, Equipment: snap.Equipment}, releaseAfter)
    for i := range snap.Requests {
        req := snap.Requests[i]
        l.requests = append(l.requests, &req)
    }
    l.audit = append(l.audit, snap.Audit...)
    return l
}

// SetCommitHook registers a function invoked with a fresh snapshot after
// every successful mutation.  The hook runs outside the ledger lock; it
// must not call back into the ledger's transition methods.
func (l *Ledger) SetCommitHook(fn func(Snapshot)) {
    l.mu.Lock()
    l.onCommit = fn
    l.mu.Unlock()
}

// Close cancels any scheduled room auto-releases.  The ledger remains
// usable afterwards; Close only exists so tests and shutdown paths do not
// leak timers.
func (l *Ledger) Close() {
    l.mu.Lock()
    defer l.mu.Unlock()
    for code, t := range l.releaseTimer {
        t.Stop()
        delete(l.releaseTimer, code)
        l.releaseGen[code]++
    }
}

// snapshotLocked deep-copies the current state.  Callers must hold l.mu.
func (l *Ledger) snapshotLocked() Snapshot {
    snap := Snapshot{
        Rooms:     make([]model.Room, 0, len(l.roomOrder)),
        Equipment: make([]model.Equipment, 0, len(l.equipOrder)),
        Requests:  make([]model.BorrowRequest, 0, len(l.requests)),
        Audit:     append([]model.AuditEntry(nil), l.audit...),
    }
    for _, code := range l.roomOrder {
        snap.Rooms = append(snap.Rooms, cloneRoom(l.rooms[code]))
    }
    for _, code := range l.equipOrder {
        snap.Equipment = append(snap.Equipment, *l.equipment[code])
    }
    for _, req := range l.requests {
        snap.Requests = append(snap.Requests, *req)
    }
    return snap
}

// commitAndUnlock captures a snapshot under the lock, releases the lock,
// then fires the commit hook.  Every mutating method funnels through this
// so persistence always observes the post-transition state and the hook
// never runs while the ledger is locked.
func (l *Ledger) commitAndUnlock() {
    hook := l.onCommit
    if hook == nil {
        l.mu.Unlock()
        return
    }
    snap := l.snapshotLocked()
    l.mu.Unlock()
    hook(snap)
}

func cloneRoom(r *model.Room) model.Room {
    out := *r
    out.Items = make(map[string]int, len(r.Items))
    for k, v := range r.Items {
        if v != 0 {
            out.Items[k] = v
        }
    }
    return out
}

// newRequestID builds a unique, time-ordered request token.  The leading
// millisecond timestamp keeps tokens sortable by submission time; the
// uuid fragment guards against two submissions landing on the same
// millisecond.
func (l *Ledger) newRequestID() string {
    return fmt.Sprintf("REQ-%d-%s", l.now().UnixMilli(), uuid.NewString()[:8])
}

// ---- read accessors (all return copies) ----

// Rooms returns the room registry in seed order.
func (l *Ledger) Rooms() []model.Room {
    l.mu.Lock()
    defer l.mu.Unlock()
    out := make([]model.Room, 0, len(l.roomOrder))
    for _, code := range l.roomOrder {
        out = append(out, cloneRoom(l.rooms[code]))
    }
    return out
}

// Room returns a single room by code.
func (l *Ledger) Room(code string) (model.Room, bool) {
    l.mu.Lock()
    defer l.mu.Unlock()
    r, ok := l.rooms[code]
    if !ok {
        return model.Room{}, false
    }
    return cloneRoom(r), true
}

// Equipment returns the equipment catalog in seed order.
func (l *Ledger) Equipment() []model.Equipment {
    l.mu.Lock()
    defer l.mu.Unlock()
    out := make([]model.Equipment, 0, len(l.equipOrder))
    for _, code := range l.equipOrder {
        out = append(out, *l.equipment[code])
    }
    return out
}

// EquipmentByCode returns a single equipment type by code.
func (l *Ledger) EquipmentByCode(code string) (model.Equipment, bool) {
    l.mu.Lock()
    defer l.mu.Unlock()
    e, ok := l.equipment[code]
    if !ok {
        return model.Equipment{}, false
    }
    return *e, true
}

// Requests returns the full request ledger, most recent first.
func (l *Ledger) Requests() []model.BorrowRequest {
    l.mu.Lock()
    defer l.mu.Unlock()
    out := make([]model.BorrowRequest, 0, len(l.requests))
    for _, req := range l.requests {
        out = append(out, *req)
    }
    return out
}

// RequestsFor returns the requests submitted by one user, most recent first.
func (l *Ledger) RequestsFor(userID uint64) []model.BorrowRequest {
    l.mu.Lock()
    defer l.mu.Unlock()
    var out []model.BorrowRequest
    for _, req := range l.requests {
        if req.Requester.ID == userID {
            out = append(out, *req)
        }
    }
    return out
}

// Request returns a single request by its token.
func (l *Ledger) Request(id string) (model.BorrowRequest, bool) {
    l.mu.Lock()
    defer l.mu.Unlock()
    if req := l.findRequestLocked(id); req != nil {
        return *req, true
    }
    return model.BorrowRequest{}, false
}

// Audit returns the equipment status audit trail, most recent first.
func (l *Ledger) Audit() []model.AuditEntry {
    l.mu.Lock()
    defer l.mu.Unlock()
    return append([]model.AuditEntry(nil), l.audit...)
}

func (l *Ledger) findRequestLocked(id string) *model.BorrowRequest {
    for _, req := range l.requests {
        if req.ID == id {
            return req
        }
    }
    return nil
}
