package model

import "time"

// RequestStatus is the lifecycle state of a borrow request.  A request is
// created pending, moves to exactly one of approved/rejected by an admin
// decision, and an approved request may later be flagged returned or
// overdue.  No transition ever returns a record to pending; terminal
// records are retained for history.
type RequestStatus string

const (
    StatusPending  RequestStatus = "pending"
    StatusApproved RequestStatus = "approved"
    StatusRejected RequestStatus = "rejected"
    StatusReturned RequestStatus = "returned"
    StatusOverdue  RequestStatus = "overdue"
)

// requestTransitions lists the legal next states for each status.  The
// zero entries for rejected/returned make those states terminal.
var requestTransitions = map[RequestStatus][]RequestStatus{
    StatusPending:  {StatusApproved, StatusRejected},
    StatusApproved: {StatusReturned, StatusOverdue},
    StatusOverdue:  {StatusReturned},
}

// CanTransition reports whether a request may move from one status to
// another under the lifecycle state machine.
func CanTransition(from, to RequestStatus) bool {
    for _, next := range requestTransitions[from] {
        if next == to {
            return true
        }
    }
    return false
}

// BorrowRequest is one entry in the request ledger.  The ledger keeps
// requests most-recent-first; the ID token is time-ordered so history
// stays reconstructable even after a snapshot round trip.
//
// Fields:
//  ID            - generated token "REQ-<unixmilli>-<suffix>", unique.
//  EquipmentCode - equipment type being requested.
//  EquipmentName - display name captured at submission time.
//  Quantity      - positive number of units requested.
//  RoomCode      - destination room, empty when no room was selected.
//  Requester     - identity and role of the submitting user.
//  Status        - current lifecycle state.
//  Purpose       - free-text purpose (required, not enforced beyond presence).
//  Duration      - free-text expected borrow duration.
//  ReturnDate    - promised return date (YYYY-MM-DD).
//  EducationalPurpose - extra detail required for faculty requests.
//  CreatedAt     - submission timestamp (UTC).
//  ActedAt       - decision timestamp, nil while pending.
//  ActedBy       - display name of the deciding admin.
//  Reason        - optional rejection reason.
type BorrowRequest struct {
    ID                 string        `json:"id"`
    EquipmentCode      string        `json:"equipment_code"`
    EquipmentName      string        `json:"equipment_name"`
    Quantity           int           `json:"quantity"`
    RoomCode           string        `json:"room_code,omitempty"`
    Requester          Actor         `json:"requester"`
    Status             RequestStatus `json:"status"`
    Purpose            string        `json:"purpose"`
    Duration           string        `json:"duration"`
    ReturnDate         string        `json:"return_date"`
    EducationalPurpose string        `json:"educational_purpose,omitempty"`
    CreatedAt          time.Time     `json:"created_at"`
    ActedAt            *time.Time    `json:"acted_at,omitempty"`
    ActedBy            string        `json:"acted_by,omitempty"`
    Reason             string        `json:"reason,omitempty"`
}

// Terminal reports whether the request can no longer change state.
func (r *BorrowRequest) Terminal() bool {
    return len(requestTransitions[r.Status]) == 0
}
