package model

// Equipment represents one borrowable equipment type in the catalog.
// Quantity counts the units currently NOT checked out; it is debited by
// request approval and credited by returns.  Available is an
// administrative override independent of quantity - an admin can pull a
// type from circulation even while units remain on the shelf.
//
// Fields:
//  Code      - unique equipment code, e.g. "laptop".
//  Name      - display name, e.g. "Laptop".
//  Quantity  - units in stock (never negative).
//  Available - administrative availability flag.
//  Status    - descriptive status label, e.g. "Available", "Under Maintenance".
//  Category  - descriptive grouping, e.g. "Electronics".
//  Location  - where the stock is kept, e.g. "Equipment Room".
type Equipment struct {
    Code      string `json:"code"`
    Name      string `json:"name"`
    Quantity  int    `json:"quantity"`
    Available bool   `json:"available"`
    Status    string `json:"status"`
    Category  string `json:"category"`
    Location  string `json:"location"`
}

// Borrowable reports whether a new borrow request may target this
// equipment: it must be administratively available and have stock left.
func (e *Equipment) Borrowable() bool { return e.Available && e.Quantity > 0 }
