// Package queue defines message payloads exchanged over the message broker.
package queue

// RequestDecidedEvent is published when an admin approves or rejects a borrow
// request, or when borrowed equipment is logged as returned. It carries enough
// context for downstream consumers to log or notify without querying the
// ledger.
type RequestDecidedEvent struct {
	RequestID     string `json:"request_id"`
	Decision      string `json:"decision"` // approved | rejected | returned
	EquipmentCode string `json:"equipment_code"`
	EquipmentName string `json:"equipment_name"`
	Quantity      int    `json:"quantity"`
	RoomCode      string `json:"room_code,omitempty"`
	RequesterID   uint64 `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	DecidedBy     string `json:"decided_by"`
	Reason        string `json:"reason,omitempty"`
	DecidedAt     string `json:"decided_at"`
}

// EquipmentStatusChangedEvent is published when an admin rewrites an
// equipment type's status, quantity or availability.
type EquipmentStatusChangedEvent struct {
	EquipmentCode string `json:"equipment_code"`
	EquipmentName string `json:"equipment_name"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	OldQuantity   int    `json:"old_quantity"`
	NewQuantity   int    `json:"new_quantity"`
	ChangedBy     string `json:"changed_by"`
	Reason        string `json:"reason"`
	ChangedAt     string `json:"changed_at"`
}
