package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"goodfoods/internal/availability"
)

// bucketCounter serializes check-and-mutate for exactly one bucket key.
type bucketCounter struct {
	mu        sync.Mutex
	confirmed int
}

// MemoryStore is the in-process backing store. Each bucket key gets its own
// counter with its own mutex, so contention on one venue/slot never blocks
// unrelated slots. Records do not survive a restart; durability comes from
// the Redis or Postgres stores.
type MemoryStore struct {
	counters sync.Map // BucketKey.String() -> *bucketCounter

	mu     sync.RWMutex
	byCode map[string]Reservation
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byCode: make(map[string]Reservation)}
}

func (s *MemoryStore) counter(key BucketKey) *bucketCounter {
	actual, _ := s.counters.LoadOrStore(key.String(), &bucketCounter{})
	return actual.(*bucketCounter)
}

func (s *MemoryStore) Reserve(_ context.Context, key BucketKey, capacity int) (bool, error) {
	c := s.counter(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.confirmed >= capacity {
		return false, nil
	}
	c.confirmed++
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key BucketKey) error {
	c := s.counter(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.confirmed > 0 {
		c.confirmed--
	}
	return nil
}

func (s *MemoryStore) Move(_ context.Context, from, to BucketKey, toCapacity int) (bool, error) {
	if from == to {
		return true, nil
	}

	first, second := s.counter(from), s.counter(to)
	// Consistent lock order across callers prevents deadlock when two
	// modifies cross between the same pair of buckets.
	if from.String() > to.String() {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	toCounter := s.counter(to)
	if toCounter.confirmed >= toCapacity {
		return false, nil
	}
	toCounter.confirmed++

	fromCounter := s.counter(from)
	if fromCounter.confirmed > 0 {
		fromCounter.confirmed--
	}
	return true, nil
}

func (s *MemoryStore) ConfirmedCount(_ context.Context, venueID string, slot time.Time, bucket int) (int, error) {
	key := BucketKey{VenueID: venueID, Slot: availability.NormalizeSlot(slot), Bucket: bucket}
	c := s.counter(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmed, nil
}

func (s *MemoryStore) Insert(_ context.Context, r *Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[r.ConfirmationCode]; exists {
		return ErrCodeTaken
	}
	s.byCode[r.ConfirmationCode] = *r
	return nil
}

func (s *MemoryStore) Get(_ context.Context, code string) (*Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) Update(_ context.Context, r *Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCode[r.ConfirmationCode]; !ok {
		return ErrNotFound
	}
	s.byCode[r.ConfirmationCode] = *r
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Reservation
	for _, r := range s.byCode {
		if matchesFilter(&r, filter) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ConfirmationCode < out[j].ConfirmationCode
	})
	return out, nil
}

func matchesFilter(r *Reservation, f ListFilter) bool {
	if f.VenueID != "" && r.VenueID != f.VenueID {
		return false
	}
	if f.GuestName != "" && !strings.Contains(strings.ToLower(r.GuestName), strings.ToLower(f.GuestName)) {
		return false
	}
	if f.Date != "" && r.SlotStart.Format("2006-01-02") != f.Date {
		return false
	}
	return true
}
