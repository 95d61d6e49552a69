package rejection

import (
	"errors"
	"fmt"
)

// Kind identifies why an operation was rejected. Every kind maps to a
// user-meaningful reason that the caller can relay verbatim.
type Kind string

const (
	KindVenueNotFound     Kind = "VENUE_NOT_FOUND"
	KindOutsideHours      Kind = "OUTSIDE_HOURS"
	KindLeadTimeViolation Kind = "LEAD_TIME_VIOLATION"
	KindPartyTooLarge     Kind = "PARTY_TOO_LARGE"
	KindSlotUnavailable   Kind = "SLOT_UNAVAILABLE"
	KindNotFound          Kind = "NOT_FOUND"
	KindAlreadyCancelled  Kind = "ALREADY_CANCELLED"
	KindValidationError   Kind = "VALIDATION_ERROR"
)

// Rejection is a typed domain rejection. It is returned as a normal error
// value so it composes with infrastructure errors, but callers can always
// recover the kind via KindOf.
type Rejection struct {
	Kind    Kind
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

// New creates a rejection with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Rejection {
	return &Rejection{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf extracts the rejection kind from an error chain. The second return
// value is false when the error is not a domain rejection.
func KindOf(err error) (Kind, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Kind, true
	}
	return "", false
}

// Is reports whether err is a rejection of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
