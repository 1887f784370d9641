package ledger

import "github.com/FraN-onLine/ccis-connect/internal/model"

// Seed is the initial registry content the ledger is built from when no
// persisted snapshot exists.
type Seed struct {
    Rooms     []model.Room
    Equipment []model.Equipment
}

// DefaultSeed returns the CCIS first-floor rooms and the equipment
// catalog the service starts with on a fresh install.
func DefaultSeed() Seed {
    rooms := []model.Room{
        {Code: "100A", Name: "Room 100A", Floor: 1, Capacity: 40, RoomType: "Lecture", Available: true},
        {Code: "100B", Name: "Room 100B", Floor: 1, Capacity: 40, RoomType: "Lecture", Available: true},
        {Code: "100C", Name: "Room 100C", Floor: 1, Capacity: 35, RoomType: "Lecture", Available: true},
        {Code: "100D", Name: "Room 100D", Floor: 1, Capacity: 30, RoomType: "Laboratory", Available: true},
        {Code: "100E", Name: "Room 100E", Floor: 1, Capacity: 30, RoomType: "Laboratory", Available: true},
        {Code: "100F", Name: "Room 100F", Floor: 1, Capacity: 45, RoomType: "Lecture", Available: true},
    }
    for i := range rooms {
        rooms[i].Items = make(map[string]int)
    }
    equipment := []model.Equipment{
        {Code: "laptop", Name: "Laptop", Quantity: 12, Available: true, Status: "Available", Category: "Electronics", Location: "Equipment Room"},
        {Code: "tv", Name: "TV", Quantity: 3, Available: true, Status: "Available", Category: "Electronics", Location: "Equipment Room"},
        {Code: "projector", Name: "Projector", Quantity: 5, Available: true, Status: "Available", Category: "Electronics", Location: "AV Storage"},
        {Code: "hdmi-cable", Name: "HDMI Cable", Quantity: 10, Available: true, Status: "Available", Category: "Accessories", Location: "AV Storage"},
        {Code: "extension-cord", Name: "Extension Cord", Quantity: 8, Available: true, Status: "Available", Category: "Accessories", Location: "Equipment Room"},
    }
    return Seed{Rooms: rooms, Equipment: equipment}
}
