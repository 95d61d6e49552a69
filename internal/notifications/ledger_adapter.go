package notifications

import (
	"context"

	"github.com/google/uuid"

	"goodfoods/internal/ledger"
)

// LedgerPublisherAdapter implements the ledger.EventPublisher interface and
// adapts ledger records into wire events for the Kafka producer.
type LedgerPublisherAdapter struct {
	producer EventProducer
}

// NewLedgerPublisherAdapter creates a new adapter for ledger lifecycle events
func NewLedgerPublisherAdapter(producer EventProducer) *LedgerPublisherAdapter {
	return &LedgerPublisherAdapter{producer: producer}
}

// PublishReservationEvent implements ledger.EventPublisher
func (a *LedgerPublisherAdapter) PublishReservationEvent(ctx context.Context, eventType string, r *ledger.Reservation) error {
	event := &ReservationEvent{
		ID:               uuid.New(),
		Type:             EventType(eventType),
		ConfirmationCode: r.ConfirmationCode,
		VenueID:          r.VenueID,
		PartySize:        r.PartySize,
		Slot:             r.SlotStart,
		GuestName:        r.GuestName,
		Contact:          r.Contact,
		Status:           r.Status.String(),
		OccurredAt:       r.LastModifiedAt,
	}
	return a.producer.PublishEvent(ctx, event)
}
