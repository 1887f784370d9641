// Package snapshot persists the ledger to Redis as independent keyed
// blobs - one each for rooms, equipment, requests and the audit trail.
// Every blob is wrapped in a versioned envelope so older shapes
// are migrated explicitly instead of being patched ad hoc at load time.
// Writes are best-effort: the ledger has already committed in memory, so
// a failed write is logged and the next commit simply overwrites.
package snapshot

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/FraN-onLine/ccis-connect/internal/ledger"
)

// SchemaVersion is the envelope version written by this build.  Version 1
// was the raw unversioned shape used before the envelope existed; see
// migrate.go for how each section is upgraded.
const SchemaVersion = 2

const (
    keyRooms     = "ccis:rooms"
    keyEquipment = "ccis:equipment"
    keyRequests  = "ccis:requests"
    keyAudit     = "ccis:audit"
)

// envelope wraps every persisted blob with its schema version.
type envelope struct {
    Version int             `json:"version"`
    Data    json.RawMessage `json:"data"`
}

// Store reads and writes ledger snapshots against a Redis client.  A nil
// client disables persistence entirely; Save becomes a no-op and Load
// reports no snapshot.
type Store struct {
    rdb     *redis.Client
    timeout time.Duration
}

// NewStore wraps a Redis client.  The client may be nil when Redis is
// unreachable at startup; callers then run memory-only.
func NewStore(rdb *redis.Client) *Store {
    return &Store{rdb: rdb, timeout: 3 * time.Second}
}

// CommitHook adapts the store to the ledger's commit hook signature.  It
// fires with its own timeout context because commits happen outside any
// HTTP request.
func (s *Store) CommitHook() func(ledger.Snapshot) {
    return func(snap ledger.Snapshot) {
        ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
        defer cancel()
        s.Save(ctx, snap)
    }
}

// Save writes the four section blobs.  Failures are logged per section;
// there is no retry, the next commit overwrites.
func (s *Store) Save(ctx context.Context, snap ledger.Snapshot) {
    if s.rdb == nil {
        return
    }
    s.saveSection(ctx, keyRooms, snap.Rooms)
    s.saveSection(ctx, keyEquipment, snap.Equipment)
    s.saveSection(ctx, keyRequests, snap.Requests)
    s.saveSection(ctx, keyAudit, snap.Audit)
}

func (s *Store) saveSection(ctx context.Context, key string, section any) {
    data, err := json.Marshal(section)
    if err != nil {
        log.Printf("snapshot: marshal %s failed: %v", key, err)
        return
    }
    blob, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
    if err != nil {
        log.Printf("snapshot: wrap %s failed: %v", key, err)
        return
    }
    if err := s.rdb.Set(ctx, key, blob, 0).Err(); err != nil {
        log.Printf("snapshot: write %s failed: %v", key, err)
    }
}

// Load reads a persisted snapshot.  The second return value reports
// whether any persisted state was found; when it is false the caller
// should seed a fresh ledger.  A section that fails to decode is treated
// as absent rather than aborting the whole load.
func (s *Store) Load(ctx context.Context) (ledger.Snapshot, bool) {
    var snap ledger.Snapshot
    if s.rdb == nil {
        return snap, false
    }
    found := false
    if raw, err := s.read(ctx, keyRooms); err == nil && raw != nil {
        rooms, err := decodeRooms(raw)
        if err != nil {
            log.Printf("snapshot: decode %s failed: %v", keyRooms, err)
        } else {
            snap.Rooms = rooms
            found = true
        }
    }
    if raw, err := s.read(ctx, keyEquipment); err == nil && raw != nil {
        equipment, err := decodeEquipment(raw)
        if err != nil {
            log.Printf("snapshot: decode %s failed: %v", keyEquipment, err)
        } else {
            snap.Equipment = equipment
            found = true
        }
    }
    if raw, err := s.read(ctx, keyRequests); err == nil && raw != nil {
        requests, err := decodeRequests(raw)
        if err != nil {
            log.Printf("snapshot: decode %s failed: %v", keyRequests, err)
        } else {
            snap.Requests = requests
        }
    }
    if raw, err := s.read(ctx, keyAudit); err == nil && raw != nil {
        audit, err := decodeAudit(raw)
        if err != nil {
            log.Printf("snapshot: decode %s failed: %v", keyAudit, err)
        } else {
            snap.Audit = audit
        }
    }
    // a snapshot without both registries is unusable; fall back to seed
    if len(snap.Rooms) == 0 || len(snap.Equipment) == 0 {
        return ledger.Snapshot{}, false
    }
    return snap, found
}

// read fetches one key, mapping redis.Nil to (nil, nil).
func (s *Store) read(ctx context.Context, key string) ([]byte, error) {
    raw, err := s.rdb.Get(ctx, key).Bytes()
    if err == redis.Nil {
        return nil, nil
    }
    if err != nil {
        log.Printf("snapshot: read %s failed: %v", key, err)
        return nil, err
    }
    return raw, nil
}
