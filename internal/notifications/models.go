package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a reservation lifecycle transition.
type EventType string

const (
	EventTypeReservationCreated   EventType = "reservation.created"
	EventTypeReservationModified  EventType = "reservation.modified"
	EventTypeReservationCancelled EventType = "reservation.cancelled"
)

// ReservationEvent is the message published for downstream collaborators
// (reminder delivery, CRM sync). The engine only produces; consumers live
// outside this process.
type ReservationEvent struct {
	ID               uuid.UUID `json:"id"`
	Type             EventType `json:"type"`
	ConfirmationCode string    `json:"confirmation_code"`
	VenueID          string    `json:"venue_id"`
	PartySize        int       `json:"party_size"`
	Slot             time.Time `json:"slot"`
	GuestName        string    `json:"guest_name"`
	Contact          string    `json:"contact"`
	Status           string    `json:"status"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ToJSON serializes the event for the wire.
func (e *ReservationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events for one venue to the same partition so
// consumers observe a venue's reservations in order.
func (e *ReservationEvent) PartitionKey() string {
	return e.VenueID
}
