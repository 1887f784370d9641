package snapshot

import (
    "encoding/json"
    "fmt"
    "sort"
    "strings"
    "time"

    "github.com/FraN-onLine/ccis-connect/internal/model"
)

// Version 1 is the legacy pre-envelope shape: rooms as
// {id, items-by-display-name}, equipment as a flat name->count
// map, requests with the equipment display name in an "itemType" field
// and no audit trail at all.  Each decodeXxx function below unwraps the
// envelope and upgrades version 1 data to the current model types; an
// unknown version is an error, never a silent guess.

func unwrap(raw []byte) (int, json.RawMessage, error) {
    var env envelope
    if err := json.Unmarshal(raw, &env); err != nil {
        return 0, nil, fmt.Errorf("bad envelope: %w", err)
    }
    if env.Version < 1 || env.Version > SchemaVersion {
        return 0, nil, fmt.Errorf("unsupported snapshot version %d", env.Version)
    }
    return env.Version, env.Data, nil
}

// slug converts an equipment display name to its catalog code, e.g.
// "HDMI Cable" -> "hdmi-cable".
func slug(name string) string {
    return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

type roomV1 struct {
    ID    string         `json:"id"`
    Items map[string]int `json:"items"`
}

func decodeRooms(raw []byte) ([]model.Room, error) {
    version, data, err := unwrap(raw)
    if err != nil {
        return nil, err
    }
    if version == SchemaVersion {
        var rooms []model.Room
        if err := json.Unmarshal(data, &rooms); err != nil {
            return nil, err
        }
        return rooms, nil
    }
    var old []roomV1
    if err := json.Unmarshal(data, &old); err != nil {
        return nil, err
    }
    rooms := make([]model.Room, 0, len(old))
    for _, r := range old {
        room := model.Room{
            Code:      r.ID,
            Name:      "Room " + r.ID,
            Floor:     1,
            Available: true, // v1 had no occupancy flag
            Items:     make(map[string]int, len(r.Items)),
        }
        for name, count := range r.Items {
            if count != 0 {
                room.Items[slug(name)] = count
            }
        }
        rooms = append(rooms, room)
    }
    return rooms, nil
}

func decodeEquipment(raw []byte) ([]model.Equipment, error) {
    version, data, err := unwrap(raw)
    if err != nil {
        return nil, err
    }
    if version == SchemaVersion {
        var equipment []model.Equipment
        if err := json.Unmarshal(data, &equipment); err != nil {
            return nil, err
        }
        return equipment, nil
    }
    // v1: flat display-name -> quantity map
    var old map[string]int
    if err := json.Unmarshal(data, &old); err != nil {
        return nil, err
    }
    equipment := make([]model.Equipment, 0, len(old))
    for name, qty := range old {
        equipment = append(equipment, model.Equipment{
            Code:      slug(name),
            Name:      name,
            Quantity:  qty,
            Available: true,
            Status:    "Available",
        })
    }
    // map iteration order is random; keep the migrated catalog stable
    sort.Slice(equipment, func(i, j int) bool { return equipment[i].Code < equipment[j].Code })
    return equipment, nil
}

type requestV1 struct {
    ID        string    `json:"id"`
    RoomID    string    `json:"roomId"`
    ItemType  string    `json:"itemType"`
    Qty       int       `json:"qty"`
    Status    string    `json:"status"`
    CreatedAt time.Time `json:"createdAt"`
}

func decodeRequests(raw []byte) ([]model.BorrowRequest, error) {
    version, data, err := unwrap(raw)
    if err != nil {
        return nil, err
    }
    if version == SchemaVersion {
        var requests []model.BorrowRequest
        if err := json.Unmarshal(data, &requests); err != nil {
            return nil, err
        }
        return requests, nil
    }
    var old []requestV1
    if err := json.Unmarshal(data, &old); err != nil {
        return nil, err
    }
    requests := make([]model.BorrowRequest, 0, len(old))
    for _, r := range old {
        requests = append(requests, model.BorrowRequest{
            ID:            r.ID,
            EquipmentCode: slug(r.ItemType),
            EquipmentName: r.ItemType,
            Quantity:      r.Qty,
            RoomCode:      r.RoomID,
            Status:        model.RequestStatus(r.Status),
            CreatedAt:     r.CreatedAt,
        })
    }
    return requests, nil
}

func decodeAudit(raw []byte) ([]model.AuditEntry, error) {
    version, data, err := unwrap(raw)
    if err != nil {
        return nil, err
    }
    if version < SchemaVersion {
        // the audit trail did not exist before v2
        return nil, nil
    }
    var audit []model.AuditEntry
    if err := json.Unmarshal(data, &audit); err != nil {
        return nil, err
    }
    return audit, nil
}
