package ledger

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"goodfoods/internal/availability"
	"goodfoods/internal/shared/rejection"
	"goodfoods/pkg/logger"
)

// codeAttempts bounds confirmation-code collision retries.
const codeAttempts = 5

// EventPublisher receives reservation lifecycle events. Declared here,
// consumer-side, so the ledger does not depend on the notifications
// package; the Kafka producer adapts to it.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, eventType string, r *Reservation) error
}

// Service is the authoritative reservation ledger. All rejections come back
// as *rejection.Rejection values so the dispatcher can relay a specific
// reason; other errors are infrastructure failures.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Reservation, error)
	Modify(ctx context.Context, code string, params ModifyParams) (*Reservation, error)
	Cancel(ctx context.Context, code string) (*Reservation, error)
	Get(ctx context.Context, code string) (*Reservation, error)
	List(ctx context.Context, filter ListFilter) ([]Reservation, error)
}

type service struct {
	store     Store
	resolver  availability.Service
	publisher EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates the ledger service. publisher may be nil when event
// publishing is disabled.
func NewService(store Store, resolver availability.Service, publisher EventPublisher, log *logger.Logger) Service {
	return &service{
		store:     store,
		resolver:  resolver,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Create re-runs the full availability validation and then performs the
// check-and-reserve atomically in the store: losing a race for the last
// table yields SlotUnavailable, never a double booking.
func (s *service) Create(ctx context.Context, params CreateParams) (*Reservation, error) {
	slot := availability.NormalizeSlot(params.Slot)

	bucket, capacity, rej := s.resolver.Resolve(params.VenueID, slot, params.PartySize)
	if rej != nil {
		return nil, rej
	}

	key := BucketKey{VenueID: params.VenueID, Slot: slot, Bucket: bucket}
	reserved, err := s.store.Reserve(ctx, key, capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve capacity: %w", err)
	}
	if !reserved {
		return nil, rejection.New(rejection.KindSlotUnavailable,
			"no %d-seat table left at %s", bucket, slot.Format(availability.SlotLayout))
	}

	now := s.now()
	reservation := &Reservation{
		ID:             uuid.New(),
		VenueID:        params.VenueID,
		PartySize:      params.PartySize,
		SlotStart:      slot,
		Bucket:         bucket,
		GuestName:      params.GuestName,
		Contact:        params.Contact,
		Notes:          params.Notes,
		Status:         StatusConfirmed,
		CreatedAt:      now,
		LastModifiedAt: now,
	}

	if err := s.insertWithFreshCode(ctx, reservation); err != nil {
		// The hold was taken but the record could not be written; give
		// the capacity back before reporting failure.
		if relErr := s.store.Release(ctx, key); relErr != nil {
			s.log.Error("failed to release capacity after insert failure",
				slog.String("bucket", key.String()), slog.Any("error", relErr))
		}
		return nil, err
	}

	s.log.LogReservationCreated(ctx, reservation.ConfirmationCode, reservation.VenueID, reservation.PartySize)
	s.publish(ctx, "reservation.created", reservation)
	return reservation, nil
}

// insertWithFreshCode generates a confirmation code and inserts the record,
// regenerating on collision. Collisions are checked against the store, not
// merely assumed improbable.
func (s *service) insertWithFreshCode(ctx context.Context, r *Reservation) error {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := generateConfirmationCode()
		if err != nil {
			return fmt.Errorf("failed to generate confirmation code: %w", err)
		}
		r.ConfirmationCode = code

		err = s.store.Insert(ctx, r)
		if err == nil {
			return nil
		}
		if err != ErrCodeTaken {
			return fmt.Errorf("failed to store reservation: %w", err)
		}
	}
	return fmt.Errorf("failed to find a free confirmation code after %d attempts", codeAttempts)
}

// Modify re-books the reservation onto a new slot and/or party size.
// The new hold is acquired before the old one is released, so a failed
// modify leaves the original reservation exactly as it was.
func (s *service) Modify(ctx context.Context, code string, params ModifyParams) (*Reservation, error) {
	reservation, err := s.get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !reservation.Status.IsActive() {
		return nil, rejection.New(rejection.KindAlreadyCancelled,
			"reservation %s is cancelled and cannot be modified", code)
	}

	newSlot := reservation.SlotStart
	if params.NewSlot != nil {
		newSlot = availability.NormalizeSlot(*params.NewSlot)
	}
	newPartySize := reservation.PartySize
	if params.NewPartySize != nil {
		newPartySize = *params.NewPartySize
	}

	newBucket, capacity, rej := s.resolver.Resolve(reservation.VenueID, newSlot, newPartySize)
	if rej != nil {
		return nil, rej
	}

	oldKey := BucketKey{VenueID: reservation.VenueID, Slot: reservation.SlotStart, Bucket: reservation.Bucket}
	newKey := BucketKey{VenueID: reservation.VenueID, Slot: newSlot, Bucket: newBucket}

	moved, err := s.store.Move(ctx, oldKey, newKey, capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to move hold: %w", err)
	}
	if !moved {
		return nil, rejection.New(rejection.KindSlotUnavailable,
			"no %d-seat table left at %s", newBucket, newSlot.Format(availability.SlotLayout))
	}

	reservation.SlotStart = newSlot
	reservation.PartySize = newPartySize
	reservation.Bucket = newBucket
	reservation.Status = StatusModified
	reservation.LastModifiedAt = s.now()

	if err := s.store.Update(ctx, reservation); err != nil {
		s.restoreHold(ctx, newKey, oldKey)
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	s.log.LogReservationModified(ctx, reservation.ConfirmationCode, reservation.VenueID)
	s.publish(ctx, "reservation.modified", reservation)
	return reservation, nil
}

// restoreHold moves a hold back to its original bucket after a failed
// update, bounded by the original bucket's own capacity. If another booking
// claimed the freed unit in the meantime the move reports full; the hold is
// then released outright rather than overbooking the original bucket.
func (s *service) restoreHold(ctx context.Context, newKey, oldKey BucketKey) {
	oldCapacity, ok := s.resolver.BucketCapacity(oldKey.VenueID, oldKey.Bucket)
	if ok {
		restored, err := s.store.Move(ctx, newKey, oldKey, oldCapacity)
		if err != nil {
			s.log.Error("failed to restore hold after update failure",
				slog.String("bucket", oldKey.String()), slog.Any("error", err))
			return
		}
		if restored {
			return
		}
	}
	if err := s.store.Release(ctx, newKey); err != nil {
		s.log.Error("failed to release hold after update failure",
			slog.String("bucket", newKey.String()), slog.Any("error", err))
	}
}

// Cancel marks the reservation cancelled and releases its capacity. A
// second cancel reports AlreadyCancelled rather than silently succeeding.
func (s *service) Cancel(ctx context.Context, code string) (*Reservation, error) {
	reservation, err := s.get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !reservation.Status.CanBeCancelled() {
		return nil, rejection.New(rejection.KindAlreadyCancelled,
			"reservation %s is already cancelled", code)
	}

	reservation.Status = StatusCancelled
	reservation.LastModifiedAt = s.now()
	if err := s.store.Update(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	// The record is committed at this point, so a failed release does not
	// fail the cancellation. The stale count can only under-sell the
	// bucket, never overbook it.
	key := BucketKey{VenueID: reservation.VenueID, Slot: reservation.SlotStart, Bucket: reservation.Bucket}
	if err := s.store.Release(ctx, key); err != nil {
		s.log.Error("failed to release capacity after cancellation",
			slog.String("bucket", key.String()), slog.Any("error", err))
	}

	s.log.LogReservationCancelled(ctx, reservation.ConfirmationCode, reservation.VenueID)
	s.publish(ctx, "reservation.cancelled", reservation)
	return reservation, nil
}

func (s *service) Get(ctx context.Context, code string) (*Reservation, error) {
	return s.get(ctx, code)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Reservation, error) {
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return out, nil
}

func (s *service) get(ctx context.Context, code string) (*Reservation, error) {
	reservation, err := s.store.Get(ctx, code)
	if err == ErrNotFound {
		return nil, rejection.New(rejection.KindNotFound, "no reservation with code %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservation: %w", err)
	}
	return reservation, nil
}

// publish emits a lifecycle event. Delivery is best effort: the reservation
// is already committed, so a broker failure is logged and swallowed.
func (s *service) publish(ctx context.Context, eventType string, r *Reservation) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReservationEvent(ctx, eventType, r); err != nil {
		s.log.Warn("failed to publish reservation event",
			slog.String("event", eventType),
			slog.String("code", r.ConfirmationCode),
			slog.Any("error", err))
	}
}

// confirmation code alphabet, uppercase letters and digits like the codes
// printed on guest confirmations
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateConfirmationCode() (string, error) {
	buf := make([]byte, 6)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("GF-%s", string(buf)), nil
}
