package availability

import (
	"time"

	"goodfoods/internal/shared/rejection"
)

// SlotGrid is the capacity-accounting granularity. Requested times are
// truncated onto this grid before any counting, so 20:10 and 20:25 contend
// for the same 20:00 slot.
const SlotGrid = 30 * time.Minute

// SlotLayout is the wire format for slot timestamps, e.g. "2025-09-01T20:00".
const SlotLayout = "2006-01-02T15:04"

// NormalizeSlot truncates t onto the slot grid, dropping seconds.
func NormalizeSlot(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()/30*30, 0, 0, t.Location())
}

// Alternative is a nearby slot that passed the full availability check.
type Alternative struct {
	Slot   time.Time `json:"slot"`
	Bucket int       `json:"table_size"`
}

// CheckResult is the advisory answer to "can a party of N be seated here at
// this time". A subsequent create re-validates against current state.
type CheckResult struct {
	VenueID      string         `json:"venue_id"`
	Slot         time.Time      `json:"slot"`
	PartySize    int            `json:"party_size"`
	Available    bool           `json:"available"`
	Bucket       int            `json:"table_size,omitempty"`
	Reason       rejection.Kind `json:"reason,omitempty"`
	Message      string         `json:"message,omitempty"`
	Alternatives []Alternative  `json:"alternatives,omitempty"`
}
