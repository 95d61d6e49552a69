package ledger

import (
	"context"
	"sync"
	"testing"
	"time"
)

func testKey(venueID string, hour, bucket int) BucketKey {
	return BucketKey{
		VenueID: venueID,
		Slot:    time.Date(2026, 3, 15, hour, 0, 0, 0, time.UTC),
		Bucket:  bucket,
	}
}

func TestMemoryStoreReserveHonorsCapacity(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	key := testKey("R001", 19, 2)

	for i := 0; i < 3; i++ {
		ok, err := store.Reserve(ctx, key, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("reserve %d should succeed", i+1)
		}
	}

	ok, err := store.Reserve(ctx, key, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("reserve beyond capacity should fail")
	}

	// Other buckets are unaffected
	if ok, _ := store.Reserve(ctx, testKey("R001", 19, 4), 3); !ok {
		t.Fatal("different bucket should reserve independently")
	}
	if ok, _ := store.Reserve(ctx, testKey("R001", 20, 2), 3); !ok {
		t.Fatal("different slot should reserve independently")
	}
}

func TestMemoryStoreConcurrentReserveSingleWinnerPerUnit(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	key := testKey("R012", 20, 4)
	const capacity = 12
	const contenders = 13

	var wg sync.WaitGroup
	results := make(chan bool, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Reserve(ctx, key, capacity)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for ok := range results {
		if ok {
			won++
		}
	}
	if won != capacity {
		t.Fatalf("expected exactly %d winners, got %d", capacity, won)
	}

	count, err := store.ConfirmedCount(ctx, key.VenueID, key.Slot, key.Bucket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != capacity {
		t.Fatalf("confirmed count = %d, want %d", count, capacity)
	}
}

func TestMemoryStoreReleaseFloorsAtZero(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	key := testKey("R001", 19, 2)

	if err := store.Release(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count, _ := store.ConfirmedCount(ctx, key.VenueID, key.Slot, key.Bucket)
	if count != 0 {
		t.Fatalf("count after releasing empty bucket = %d, want 0", count)
	}

	if ok, _ := store.Reserve(ctx, key, 1); !ok {
		t.Fatal("reserve should succeed")
	}
	if err := store.Release(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := store.Reserve(ctx, key, 1); !ok {
		t.Fatal("released capacity should be reusable")
	}
}

func TestMemoryStoreMove(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	from := testKey("R001", 19, 2)
	to := testKey("R001", 20, 2)

	if ok, _ := store.Reserve(ctx, from, 1); !ok {
		t.Fatal("setup reserve failed")
	}

	moved, err := store.Move(ctx, from, to, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moved {
		t.Fatal("move to free bucket should succeed")
	}

	fromCount, _ := store.ConfirmedCount(ctx, from.VenueID, from.Slot, from.Bucket)
	toCount, _ := store.ConfirmedCount(ctx, to.VenueID, to.Slot, to.Bucket)
	if fromCount != 0 || toCount != 1 {
		t.Fatalf("counts after move = %d/%d, want 0/1", fromCount, toCount)
	}
}

func TestMemoryStoreMoveToFullBucketKeepsSource(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	from := testKey("R001", 19, 2)
	full := testKey("R001", 20, 2)

	if ok, _ := store.Reserve(ctx, from, 1); !ok {
		t.Fatal("setup reserve failed")
	}
	if ok, _ := store.Reserve(ctx, full, 1); !ok {
		t.Fatal("setup reserve failed")
	}

	moved, err := store.Move(ctx, from, full, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved {
		t.Fatal("move to full bucket should fail")
	}

	fromCount, _ := store.ConfirmedCount(ctx, from.VenueID, from.Slot, from.Bucket)
	if fromCount != 1 {
		t.Fatalf("source count after failed move = %d, want 1", fromCount)
	}
}

func TestMemoryStoreMoveSameKey(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	key := testKey("R001", 19, 2)

	if ok, _ := store.Reserve(ctx, key, 1); !ok {
		t.Fatal("setup reserve failed")
	}
	moved, err := store.Move(ctx, key, key, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moved {
		t.Fatal("move onto the same key is a no-op that succeeds")
	}
	count, _ := store.ConfirmedCount(ctx, key.VenueID, key.Slot, key.Bucket)
	if count != 1 {
		t.Fatalf("count after same-key move = %d, want 1", count)
	}
}

func TestMemoryStoreInsertDuplicateCode(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	r := &Reservation{ConfirmationCode: "GF-AAAAAA", VenueID: "R001", Status: StatusConfirmed}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Insert(ctx, r); err != ErrCodeTaken {
		t.Fatalf("got %v, want ErrCodeTaken", err)
	}
}

func TestMemoryStoreGetAndUpdate(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "GF-MISSING"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := store.Update(ctx, &Reservation{ConfirmationCode: "GF-MISSING"}); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	r := &Reservation{ConfirmationCode: "GF-BBBBBB", VenueID: "R001", Status: StatusConfirmed}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Status = StatusCancelled
	if err := store.Update(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "GF-BBBBBB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("got status %s, want %s", got.Status, StatusCancelled)
	}
}

func TestMemoryStoreListFilters(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	seed := []Reservation{
		{ConfirmationCode: "GF-AAAAA1", VenueID: "R001", GuestName: "Priya Sharma", SlotStart: base, CreatedAt: base},
		{ConfirmationCode: "GF-AAAAA2", VenueID: "R002", GuestName: "Arjun Mehta", SlotStart: base, CreatedAt: base.Add(time.Minute)},
		{ConfirmationCode: "GF-AAAAA3", VenueID: "R001", GuestName: "Priya Nair", SlotStart: base.AddDate(0, 0, 1), CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		if err := store.Insert(ctx, &seed[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	byVenue, err := store.List(ctx, ListFilter{VenueID: "R001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byVenue) != 2 {
		t.Fatalf("venue filter matched %d, want 2", len(byVenue))
	}
	// Newest first
	if byVenue[0].ConfirmationCode != "GF-AAAAA3" {
		t.Errorf("expected newest reservation first, got %s", byVenue[0].ConfirmationCode)
	}

	byGuest, err := store.List(ctx, ListFilter{GuestName: "priya"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byGuest) != 2 {
		t.Fatalf("guest filter matched %d, want 2", len(byGuest))
	}

	byDate, err := store.List(ctx, ListFilter{Date: "2026-03-16"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byDate) != 1 || byDate[0].ConfirmationCode != "GF-AAAAA3" {
		t.Fatalf("date filter matched %v", byDate)
	}
}
