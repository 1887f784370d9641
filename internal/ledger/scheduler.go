package ledger

import (
    "log"

    "github.com/FraN-onLine/ccis-connect/internal/model"
)

// ScanRoom records a QR scan against a room and toggles its occupancy: an
// available room becomes occupied and an occupied room is released.  When
// a scan occupies a room, an auto-release is scheduled so a forgotten
// session does not hold the room forever.  The timer is keyed by room
// code and cancelled whenever the room's availability changes for any
// other reason, so a stale timer can never overwrite a newer manual
// change.
func (l *Ledger) ScanRoom(roomCode string, actor model.Actor) Outcome {
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
    var out Outcome
    if room.Available {
        room.Available = false
        l.scheduleReleaseLocked(roomCode)
        out = ok("Room " + roomCode + " checked in and marked occupied.")
    } else {
        room.Available = true
        out = ok("Room " + roomCode + " checked out and marked available.")
    }
    l.commitAndUnlock()
    return out
}

// scheduleReleaseLocked arms the auto-release timer for a room.  The
// generation counter guards against a timer that already fired but is
// still waiting on the mutex when the room changes underneath it.
// Callers must hold l.mu.
func (l *Ledger) scheduleReleaseLocked(roomCode string) {
    if l.releaseAfter <= 0 {
        return
    }
    l.releaseGen[roomCode]++
    gen := l.releaseGen[roomCode]
    l.releaseTimer[roomCode] = l.afterFunc(l.releaseAfter, func() { l.autoRelease(roomCode, gen) })
}

// cancelReleaseLocked disarms any pending auto-release for the room and
// bumps the generation so an in-flight callback becomes a no-op.  Callers
// must hold l.mu.
func (l *Ledger) cancelReleaseLocked(roomCode string) {
    l.releaseGen[roomCode]++
    if t, armed := l.releaseTimer[roomCode]; armed {
        t.Stop()
        delete(l.releaseTimer, roomCode)
    }
}

// autoRelease is the timer callback that frees a scanned room.  It
// re-checks the generation and the room's state under the lock: a
// superseding change invalidates the pending release.
func (l *Ledger) autoRelease(roomCode string, gen uint64) {
    l.mu.Lock()
    if l.releaseGen[roomCode] != gen {
        l.mu.Unlock()
        return
    }
    delete(l.releaseTimer, roomCode)
    room, exists := l.rooms[roomCode]
    if !exists || room.Available {
        l.mu.Unlock()
        return
    }
    room.Available = true
    log.Printf("ledger: auto-released room %s after scan timeout", roomCode)
    l.commitAndUnlock()
}
