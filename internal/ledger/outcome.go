package ledger

import "fmt"

// Code classifies why a transition succeeded or failed.  The taxonomy
// mirrors how handlers map outcomes to HTTP statuses: invalid input (400),
// availability conflicts (409), missing capability (403) and unknown
// identities (404).  No failure is fatal; every transition reports an
// Outcome instead of panicking or returning an error for business rules.
type Code string

const (
    CodeOK           Code = "ok"
    CodeInvalid      Code = "invalid"      // malformed or out-of-range input
    CodeUnavailable  Code = "unavailable"  // insufficient stock or resource unavailable
    CodeUnauthorized Code = "unauthorized" // caller lacks the required capability
    CodeNotFound     Code = "not_found"    // referenced identity does not exist
)

// Outcome is the structured result of a ledger transition.  Message is a
// human-readable explanation suitable for direct display; Amount carries
// the units actually affected by clamp-to-available operations (return,
// move), which may be less than what the caller asked for.
type Outcome struct {
    OK      bool   `json:"ok"`
    Code    Code   `json:"code"`
    Message string `json:"message"`
    Amount  int    `json:"amount,omitempty"`
}

func ok(msg string) Outcome { return Outcome{OK: true, Code: CodeOK, Message: msg} }

func okAmount(amount int, format string, args ...any) Outcome {
    return Outcome{OK: true, Code: CodeOK, Message: fmt.Sprintf(format, args...), Amount: amount}
}

func fail(code Code, format string, args ...any) Outcome {
    return Outcome{Code: code, Message: fmt.Sprintf(format, args...)}
}
