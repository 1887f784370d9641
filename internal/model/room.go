package model

// Room represents one bookable campus room on the CCIS floor map.  A
// room's Available flag is the only occupancy signal; there is no
// overlapping-reservation model.  Rooms are created from the seed list at
// startup and are never deleted at runtime - only their availability and
// assigned equipment counts change.
//
// Fields:
//  Code      - unique room code, e.g. "100A".
//  Name      - display name shown on the map.
//  Floor     - floor number (descriptive).
//  Capacity  - seating capacity (descriptive).
//  RoomType  - e.g. "Lecture", "Laboratory" (descriptive).
//  Available - true when the room is free to use.
//  Items     - equipment code -> units currently assigned to this room.
type Room struct {
    Code      string         `json:"code"`
    Name      string         `json:"name"`
    Floor     int            `json:"floor"`
    Capacity  int            `json:"capacity"`
    RoomType  string         `json:"room_type"`
    Available bool           `json:"available"`
    Items     map[string]int `json:"items"`
}

// Assigned returns the number of units of the given equipment currently
// assigned to the room.  Missing entries count as zero.
func (r *Room) Assigned(equipmentCode string) int {
    if r.Items == nil {
        return 0
    }
    return r.Items[equipmentCode]
}
