package availability

import (
	"context"
	"testing"
	"time"

	"goodfoods/internal/catalog"
	"goodfoods/internal/shared/rejection"
)

// fakeCounter returns canned confirmed counts per bucket key.
type fakeCounter struct {
	counts map[string]int
}

func (f *fakeCounter) ConfirmedCount(_ context.Context, venueID string, slot time.Time, bucket int) (int, error) {
	key := venueID + ":" + NormalizeSlot(slot).Format(SlotLayout) + ":" + string(rune('0'+bucket))
	return f.counts[key], nil
}

func (f *fakeCounter) set(venueID string, slot time.Time, bucket, count int) {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	key := venueID + ":" + NormalizeSlot(slot).Format(SlotLayout) + ":" + string(rune('0'+bucket))
	f.counts[key] = count
}

func testCatalog(t *testing.T) catalog.Service {
	t.Helper()

	dayHours, err := catalog.ParseHours("12:00-23:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nightHours, err := catalog.ParseHours("18:00-01:00+1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return catalog.NewService(catalog.NewStaticRepository([]catalog.Venue{
		{
			ID: "R001", Name: "Spice Garden", City: "Bangalore",
			TableCounts: map[int]int{2: 10, 4: 8}, Rating: 4.4,
			Hours: dayHours, MinLeadTime: 30 * time.Minute,
		},
		{
			ID: "R012", Name: "Midnight Mezze", City: "Hyderabad",
			TableCounts: map[int]int{2: 8, 4: 12}, Rating: 4.6,
			Hours: nightHours, MinLeadTime: 30 * time.Minute,
		},
	}), 10)
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, counter BucketCounter) Service {
	t.Helper()
	if counter == nil {
		counter = &fakeCounter{}
	}
	return NewServiceWithClock(testCatalog(t), counter, func() time.Time { return testNow })
}

func TestResolveRejections(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	tomorrow := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 15, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		venueID   string
		slot      time.Time
		partySize int
		wantKind  rejection.Kind
	}{
		{"unknown venue", "R999", tomorrow(19, 0), 2, rejection.KindVenueNotFound},
		{"before opening", "R001", tomorrow(11, 30), 2, rejection.KindOutsideHours},
		{"at closing", "R001", tomorrow(23, 0), 2, rejection.KindOutsideHours},
		{"overnight venue closed at 17:00", "R012", tomorrow(17, 0), 2, rejection.KindOutsideHours},
		{"too short notice", "R001", testNow.Add(15 * time.Minute), 2, rejection.KindLeadTimeViolation},
		{"party too large", "R001", tomorrow(19, 0), 5, rejection.KindPartyTooLarge},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, rej := svc.Resolve(tt.venueID, tt.slot, tt.partySize)
			if rej == nil {
				t.Fatal("expected rejection")
			}
			if rej.Kind != tt.wantKind {
				t.Fatalf("got kind %s, want %s", rej.Kind, tt.wantKind)
			}
		})
	}
}

func TestResolveOvernightSlotPastMidnight(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)

	// 00:30 is before the 01:00 close of an 18:00-01:00+1 window
	slot := time.Date(2026, 3, 15, 0, 30, 0, 0, time.UTC)
	bucket, capacity, rej := svc.Resolve("R012", slot, 2)
	if rej != nil {
		t.Fatalf("unexpected rejection: %s", rej.Message)
	}
	if bucket != 2 || capacity != 8 {
		t.Fatalf("got bucket %d capacity %d, want 2/8", bucket, capacity)
	}
}

func TestResolveBucketSelection(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	// A party of 3 takes the smallest table that fits: the 4-top
	bucket, capacity, rej := svc.Resolve("R012", slot, 3)
	if rej != nil {
		t.Fatalf("unexpected rejection: %s", rej.Message)
	}
	if bucket != 4 || capacity != 12 {
		t.Fatalf("got bucket %d capacity %d, want 4/12", bucket, capacity)
	}
}

func TestCheckAvailable(t *testing.T) {
	t.Parallel()

	counter := &fakeCounter{}
	svc := newTestService(t, counter)
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)
	counter.set("R001", slot, 2, 9) // one 2-top left

	result, err := svc.Check(context.Background(), "R001", slot, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Available {
		t.Fatalf("expected available, got %s: %s", result.Reason, result.Message)
	}
	if result.Bucket != 2 {
		t.Fatalf("unexpected bucket %d", result.Bucket)
	}
}

func TestCheckFullBucketSuggestsAlternatives(t *testing.T) {
	t.Parallel()

	counter := &fakeCounter{}
	svc := newTestService(t, counter)
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)
	counter.set("R001", slot, 2, 10)                      // requested slot full
	counter.set("R001", slot.Add(-30*time.Minute), 2, 10) // 18:30 also full

	result, err := svc.Check(context.Background(), "R001", slot, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Available {
		t.Fatal("expected unavailable")
	}
	if result.Reason != rejection.KindSlotUnavailable {
		t.Fatalf("got reason %s, want %s", result.Reason, rejection.KindSlotUnavailable)
	}
	if len(result.Alternatives) != 3 {
		t.Fatalf("expected 3 alternatives, got %d", len(result.Alternatives))
	}
	// Nearest first, skipping the full 18:30 slot
	want := []time.Time{
		slot.Add(30 * time.Minute),
		slot.Add(-60 * time.Minute),
		slot.Add(60 * time.Minute),
	}
	for i, alt := range result.Alternatives {
		if !alt.Slot.Equal(want[i]) {
			t.Errorf("alternative[%d] = %s, want %s", i, alt.Slot.Format("15:04"), want[i].Format("15:04"))
		}
	}
}

func TestCheckOutsideHoursSuggestsInHoursAlternatives(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	// 23:30 is past close; the nearest earlier slots are in hours
	slot := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)

	result, err := svc.Check(context.Background(), "R001", slot, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != rejection.KindOutsideHours {
		t.Fatalf("got reason %s, want %s", result.Reason, rejection.KindOutsideHours)
	}
	if len(result.Alternatives) == 0 {
		t.Fatal("expected in-hours alternatives")
	}
	for _, alt := range result.Alternatives {
		if _, _, rej := svc.Resolve("R001", alt.Slot, 2); rej != nil {
			t.Errorf("alternative %s is not bookable: %s", alt.Slot.Format("15:04"), rej.Message)
		}
	}
}

func TestCheckVenueNotFoundHasNoAlternatives(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	result, err := svc.Check(context.Background(), "R999", slot, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason != rejection.KindVenueNotFound {
		t.Fatalf("got reason %s, want %s", result.Reason, rejection.KindVenueNotFound)
	}
	if len(result.Alternatives) != 0 {
		t.Fatalf("expected no alternatives, got %d", len(result.Alternatives))
	}
}

func TestNormalizeSlot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"19:00", "19:00"},
		{"19:14", "19:00"},
		{"19:30", "19:30"},
		{"19:45", "19:30"},
	}
	for _, tt := range tests {
		tt := tt
		in, _ := time.Parse("15:04", tt.in)
		if got := NormalizeSlot(in).Format("15:04"); got != tt.want {
			t.Errorf("NormalizeSlot(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
