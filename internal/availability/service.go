package availability

import (
	"context"
	"fmt"
	"time"

	"goodfoods/internal/catalog"
	"goodfoods/internal/shared/rejection"
)

// BucketCounter answers how many confirmed reservations currently occupy a
// (venue, slot, table-size) bucket. Implemented by the ledger's stores;
// declared here to keep the resolver free of a ledger dependency.
type BucketCounter interface {
	ConfirmedCount(ctx context.Context, venueID string, slot time.Time, bucket int) (int, error)
}

// Service computes availability. All methods are pure reads: they never
// mutate the ledger and their answers are advisory.
type Service interface {
	Check(ctx context.Context, venueID string, slot time.Time, partySize int) (*CheckResult, error)
	Resolve(venueID string, slot time.Time, partySize int) (bucket, capacity int, rej *rejection.Rejection)
	BucketCapacity(venueID string, bucket int) (capacity int, ok bool)
}

type service struct {
	catalog catalog.Service
	counter BucketCounter
	now     func() time.Time
}

// NewService creates an availability resolver backed by the catalog snapshot
// and the ledger's confirmed counts.
func NewService(catalogSvc catalog.Service, counter BucketCounter) Service {
	return &service{
		catalog: catalogSvc,
		counter: counter,
		now:     time.Now,
	}
}

// NewServiceWithClock is NewService with an injected clock, for lead-time
// checks in tests.
func NewServiceWithClock(catalogSvc catalog.Service, counter BucketCounter, now func() time.Time) Service {
	return &service{catalog: catalogSvc, counter: counter, now: now}
}

// Resolve validates everything about a request that does not depend on
// current occupancy: venue existence, operating hours, lead time, and the
// smallest table size that can seat the party. The ledger runs these same
// checks before its atomic check-and-reserve.
func (s *service) Resolve(venueID string, slot time.Time, partySize int) (int, int, *rejection.Rejection) {
	venue, ok := s.catalog.Lookup(venueID)
	if !ok {
		return 0, 0, rejection.New(rejection.KindVenueNotFound, "venue %s not found", venueID)
	}

	slot = NormalizeSlot(slot)

	if !venue.Hours.Contains(slot) {
		return 0, 0, rejection.New(rejection.KindOutsideHours,
			"%s is open %s; %s is outside operating hours",
			venue.Name, venue.Hours, slot.Format("15:04"))
	}

	if lead := slot.Sub(s.now()); lead < venue.MinLeadTime {
		return 0, 0, rejection.New(rejection.KindLeadTimeViolation,
			"%s requires at least %d minutes notice",
			venue.Name, int(venue.MinLeadTime.Minutes()))
	}

	bucket, capacity, ok := venue.SmallestTableFor(partySize)
	if !ok {
		return 0, 0, rejection.New(rejection.KindPartyTooLarge,
			"%s has no table for a party of %d", venue.Name, partySize)
	}

	return bucket, capacity, nil
}

// BucketCapacity reports how many tables the venue has of the given size.
// ok is false when the venue is unknown or has no tables of that size.
func (s *service) BucketCapacity(venueID string, bucket int) (int, bool) {
	venue, ok := s.catalog.Lookup(venueID)
	if !ok {
		return 0, false
	}
	capacity, ok := venue.TableCounts[bucket]
	return capacity, ok && capacity > 0
}

// Check runs the full availability algorithm and, when the requested slot is
// not bookable, suggests up to three nearby slots that are.
func (s *service) Check(ctx context.Context, venueID string, slot time.Time, partySize int) (*CheckResult, error) {
	slot = NormalizeSlot(slot)
	result := &CheckResult{
		VenueID:   venueID,
		Slot:      slot,
		PartySize: partySize,
	}

	bucket, capacity, rej := s.Resolve(venueID, slot, partySize)
	if rej != nil {
		result.Reason = rej.Kind
		result.Message = rej.Message
		// A missing venue or an oversized party cannot be fixed by
		// shifting the time, so no alternatives for those.
		if rej.Kind == rejection.KindOutsideHours || rej.Kind == rejection.KindLeadTimeViolation {
			alts, err := s.alternatives(ctx, venueID, slot, partySize)
			if err != nil {
				return nil, err
			}
			result.Alternatives = alts
		}
		return result, nil
	}

	count, err := s.counter.ConfirmedCount(ctx, venueID, slot, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmed reservations: %w", err)
	}

	result.Bucket = bucket
	if count < capacity {
		result.Available = true
		return result, nil
	}

	result.Reason = rejection.KindSlotUnavailable
	result.Message = fmt.Sprintf("all %d-seat tables are booked at %s", bucket, slot.Format("15:04"))
	alts, err := s.alternatives(ctx, venueID, slot, partySize)
	if err != nil {
		return nil, err
	}
	result.Alternatives = alts
	return result, nil
}

// slotOffsets are the neighboring slots probed for alternatives, ordered by
// temporal distance with the earlier slot first on ties.
var slotOffsets = []time.Duration{
	-30 * time.Minute, 30 * time.Minute,
	-60 * time.Minute, 60 * time.Minute,
	-90 * time.Minute, 90 * time.Minute,
}

func (s *service) alternatives(ctx context.Context, venueID string, slot time.Time, partySize int) ([]Alternative, error) {
	var alts []Alternative
	for _, offset := range slotOffsets {
		if len(alts) == 3 {
			break
		}
		candidate := slot.Add(offset)

		bucket, capacity, rej := s.Resolve(venueID, candidate, partySize)
		if rej != nil {
			continue
		}
		count, err := s.counter.ConfirmedCount(ctx, venueID, candidate, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to count confirmed reservations: %w", err)
		}
		if count < capacity {
			alts = append(alts, Alternative{Slot: candidate, Bucket: bucket})
		}
	}
	return alts, nil
}
