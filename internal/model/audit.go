package model

import "time"

// AuditEntry records one administrative equipment status update - the
// only ledger operation with an explicit audit trail.  All other
// transitions are implicitly auditable through the request ledger's own
// timestamps.
//
// Fields:
//  EquipmentCode - equipment the update applied to.
//  EquipmentName - display name at the time of the update.
//  OldStatus/NewStatus     - descriptive status label before/after.
//  OldQuantity/NewQuantity - stock count before/after.
//  Actor     - admin who performed the update.
//  Reason    - mandatory free-text justification.
//  Timestamp - when the update was applied (UTC).
type AuditEntry struct {
    EquipmentCode string    `json:"equipment_code"`
    EquipmentName string    `json:"equipment_name"`
    OldStatus     string    `json:"old_status"`
    NewStatus     string    `json:"new_status"`
    OldQuantity   int       `json:"old_quantity"`
    NewQuantity   int       `json:"new_quantity"`
    Actor         string    `json:"actor"`
    Reason        string    `json:"reason"`
    Timestamp     time.Time `json:"timestamp"`
}
