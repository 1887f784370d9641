package model

// Role enumerates the account roles understood by the service.  Roles are
// stored upper-cased in the users table and in the JWT "role" claim.  GUEST
// is never persisted; it is the implicit role of an unauthenticated caller
// browsing public endpoints.
type Role string

const (
    RoleGuest   Role = "GUEST"   // unauthenticated browsing only
    RoleStudent Role = "STUDENT" // can submit borrow requests
    RoleFaculty Role = "FACULTY" // can borrow and update room availability
    RoleAdmin   Role = "ADMIN"   // full administrative access
)

// Capabilities are the derived permission flags attached to a role.  They
// gate which ledger transitions a caller may invoke; they are not part of
// the ledger's own consistency rules.
//
// Fields:
//  CanBorrow      - may submit borrow requests.
//  CanUpdateRooms - may toggle room availability and record QR scans.
//  CanAdmin       - may approve/reject/return/move and update equipment status.
type Capabilities struct {
    CanBorrow      bool `json:"can_borrow"`
    CanUpdateRooms bool `json:"can_update_rooms"`
    CanAdmin       bool `json:"can_admin"`
}

// CapabilitiesFor maps a role to its capability flags.  It is a pure
// function computed once per session rather than inferred ad hoc per
// screen; unknown roles degrade to guest (no capabilities).
func CapabilitiesFor(r Role) Capabilities {
    switch r {
    case RoleStudent:
        return Capabilities{CanBorrow: true}
    case RoleFaculty:
        return Capabilities{CanBorrow: true, CanUpdateRooms: true}
    case RoleAdmin:
        return Capabilities{CanBorrow: true, CanUpdateRooms: true, CanAdmin: true}
    default:
        return Capabilities{}
    }
}

// ParseRole normalizes a raw role string to a known Role.  The second
// return value reports whether the input named a registerable role (GUEST
// is not registerable).
func ParseRole(s string) (Role, bool) {
    switch Role(s) {
    case RoleStudent, RoleFaculty, RoleAdmin:
        return Role(s), true
    }
    return RoleGuest, false
}

// Actor identifies the caller of a ledger transition.  It is assembled by
// handlers from JWT claims and passed by value into the ledger, which
// records it on requests and audit entries.
type Actor struct {
    ID   uint64 `json:"id"`
    Name string `json:"name"`
    Role Role   `json:"role"`
}

// Capabilities returns the capability flags for the actor's role.
func (a Actor) Capabilities() Capabilities { return CapabilitiesFor(a.Role) }
