package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"goodfoods/internal/availability"
	"goodfoods/internal/catalog"
	"goodfoods/internal/shared/rejection"
	"goodfoods/pkg/logger"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// recordingPublisher captures published lifecycle events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishReservationEvent(_ context.Context, eventType string, _ *Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func newTestService(t *testing.T) (Service, *MemoryStore, *recordingPublisher) {
	t.Helper()

	dayHours, err := catalog.ParseHours("12:00-23:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nightHours, err := catalog.ParseHours("18:00-01:00+1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	catalogService := catalog.NewService(catalog.NewStaticRepository([]catalog.Venue{
		{
			ID: "R001", Name: "Spice Garden",
			TableCounts: map[int]int{2: 2, 4: 2}, Rating: 4.4,
			Hours: dayHours, MinLeadTime: 30 * time.Minute,
		},
		{
			ID: "R012", Name: "Midnight Mezze",
			TableCounts: map[int]int{2: 8, 4: 12}, Rating: 4.6,
			Hours: nightHours, MinLeadTime: 30 * time.Minute,
		},
	}), 10)

	store := NewMemoryStore()
	resolver := availability.NewServiceWithClock(catalogService, store, func() time.Time { return testNow })
	publisher := &recordingPublisher{}
	return NewService(store, resolver, publisher, logger.New()), store, publisher
}

func createParams(venueID string, slot time.Time, partySize int) CreateParams {
	return CreateParams{
		VenueID:   venueID,
		Slot:      slot,
		PartySize: partySize,
		GuestName: "Priya Sharma",
		Contact:   "+91-98000-00000",
	}
}

func TestCreateReservation(t *testing.T) {
	t.Parallel()

	svc, _, publisher := newTestService(t)
	slot := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)

	r, err := svc.Create(context.Background(), createParams("R012", slot, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(r.ConfirmationCode, "GF-") || len(r.ConfirmationCode) != 9 {
		t.Fatalf("unexpected confirmation code %q", r.ConfirmationCode)
	}
	if r.Bucket != 4 {
		t.Fatalf("party of 3 should land in the 4-top bucket, got %d", r.Bucket)
	}
	if r.Status != StatusConfirmed {
		t.Fatalf("unexpected status %s", r.Status)
	}

	got, err := svc.Get(context.Background(), r.ConfirmationCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.GuestName != "Priya Sharma" {
		t.Fatalf("unexpected guest %q", got.GuestName)
	}

	events := publisher.all()
	if len(events) != 1 || events[0] != "reservation.created" {
		t.Fatalf("unexpected events %v", events)
	}
}

func TestCreateNormalizesSlot(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ragged := time.Date(2026, 3, 15, 20, 17, 0, 0, time.UTC)

	r, err := svc.Create(context.Background(), createParams("R012", ragged, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)
	if !r.SlotStart.Equal(want) {
		t.Fatalf("slot = %s, want %s", r.SlotStart, want)
	}
}

func TestCreateRejections(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	slot := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		params   CreateParams
		wantKind rejection.Kind
	}{
		{"unknown venue", createParams("R999", slot, 2), rejection.KindVenueNotFound},
		{"outside hours", createParams("R012", time.Date(2026, 3, 15, 15, 0, 0, 0, time.UTC), 2), rejection.KindOutsideHours},
		{"lead time", createParams("R001", testNow.Add(10*time.Minute), 2), rejection.KindLeadTimeViolation},
		{"party too large", createParams("R012", slot, 6), rejection.KindPartyTooLarge},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Create(context.Background(), tt.params)
			if kind, ok := rejection.KindOf(err); !ok || kind != tt.wantKind {
				t.Fatalf("got error %v, want rejection kind %s", err, tt.wantKind)
			}
		})
	}
}

func TestConcurrentCreatesExactCapacityWinners(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	slot := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)
	const capacity = 12 // R012 has twelve 4-tops
	const contenders = capacity + 1

	var wg sync.WaitGroup
	errs := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), createParams("R012", slot, 4))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case rejection.Is(err, rejection.KindSlotUnavailable):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != capacity || lost != 1 {
		t.Fatalf("got %d winners and %d SlotUnavailable, want %d and 1", won, lost, capacity)
	}
}

func TestCancelFreesCapacity(t *testing.T) {
	t.Parallel()

	svc, _, publisher := newTestService(t)
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	// R001 has two 2-tops; fill both
	first, err := svc.Create(context.Background(), createParams("R001", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(context.Background(), createParams("R001", slot, 2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(context.Background(), createParams("R001", slot, 2)); !rejection.Is(err, rejection.KindSlotUnavailable) {
		t.Fatalf("third create got %v, want SlotUnavailable", err)
	}

	cancelled, err := svc.Cancel(context.Background(), first.ConfirmationCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("unexpected status %s", cancelled.Status)
	}

	// The freed table is bookable again
	if _, err := svc.Create(context.Background(), createParams("R001", slot, 2)); err != nil {
		t.Fatalf("create after cancel failed: %v", err)
	}

	events := publisher.all()
	if events[len(events)-2] != "reservation.cancelled" {
		t.Fatalf("unexpected events %v", events)
	}
}

func TestCancelTwiceReportsAlreadyCancelled(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	r, err := svc.Create(context.Background(), createParams("R001", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), r.ConfirmationCode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Cancel(context.Background(), r.ConfirmationCode)
	if !rejection.Is(err, rejection.KindAlreadyCancelled) {
		t.Fatalf("got %v, want AlreadyCancelled", err)
	}
}

func TestModifyMovesHold(t *testing.T) {
	t.Parallel()

	svc, store, publisher := newTestService(t)
	ctx := context.Background()
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)
	newSlot := time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC)

	r, err := svc.Create(ctx, createParams("R001", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	modified, err := svc.Modify(ctx, r.ConfirmationCode, ModifyParams{NewSlot: &newSlot})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !modified.SlotStart.Equal(newSlot) {
		t.Fatalf("slot = %s, want %s", modified.SlotStart, newSlot)
	}
	if modified.Status != StatusModified {
		t.Fatalf("unexpected status %s", modified.Status)
	}

	oldCount, _ := store.ConfirmedCount(ctx, "R001", slot, 2)
	newCount, _ := store.ConfirmedCount(ctx, "R001", newSlot, 2)
	if oldCount != 0 || newCount != 1 {
		t.Fatalf("counts after modify = %d/%d, want 0/1", oldCount, newCount)
	}

	events := publisher.all()
	if events[len(events)-1] != "reservation.modified" {
		t.Fatalf("unexpected events %v", events)
	}
}

func TestModifyPartySizeChangesBucket(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	r, err := svc.Create(ctx, createParams("R001", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	four := 4
	modified, err := svc.Modify(ctx, r.ConfirmationCode, ModifyParams{NewPartySize: &four})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modified.Bucket != 4 {
		t.Fatalf("bucket = %d, want 4", modified.Bucket)
	}

	twoCount, _ := store.ConfirmedCount(ctx, "R001", slot, 2)
	fourCount, _ := store.ConfirmedCount(ctx, "R001", slot, 4)
	if twoCount != 0 || fourCount != 1 {
		t.Fatalf("counts after resize = %d/%d, want 0/1", twoCount, fourCount)
	}
}

func TestModifyToFullSlotLeavesOriginalIntact(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)
	fullSlot := time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC)

	// Fill both 2-tops at the target slot
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(ctx, createParams("R001", fullSlot, 2)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	r, err := svc.Create(ctx, createParams("R001", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Modify(ctx, r.ConfirmationCode, ModifyParams{NewSlot: &fullSlot})
	if !rejection.Is(err, rejection.KindSlotUnavailable) {
		t.Fatalf("got %v, want SlotUnavailable", err)
	}

	// The original reservation and its hold are untouched
	got, err := svc.Get(ctx, r.ConfirmationCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.SlotStart.Equal(slot) || got.Status != StatusConfirmed {
		t.Fatalf("original reservation changed: slot %s status %s", got.SlotStart, got.Status)
	}
	count, _ := store.ConfirmedCount(ctx, "R001", slot, 2)
	if count != 1 {
		t.Fatalf("original hold count = %d, want 1", count)
	}
}

// flakyUpdateStore fails the next Update, optionally running a hook first to
// model a racing booking in the window before the service compensates.
type flakyUpdateStore struct {
	*MemoryStore
	failNext    bool
	failRelease bool
	beforeFail  func()
}

func (s *flakyUpdateStore) Update(ctx context.Context, r *Reservation) error {
	if s.failNext {
		s.failNext = false
		if s.beforeFail != nil {
			s.beforeFail()
		}
		return errors.New("write failed")
	}
	return s.MemoryStore.Update(ctx, r)
}

func (s *flakyUpdateStore) Release(ctx context.Context, key BucketKey) error {
	if s.failRelease {
		return errors.New("release failed")
	}
	return s.MemoryStore.Release(ctx, key)
}

// newFlakyService backs the ledger with a venue whose 2-top and 4-top buckets
// have very different capacities, so a compensation bounded by the wrong
// bucket's capacity is observable.
func newFlakyService(t *testing.T) (Service, *flakyUpdateStore) {
	t.Helper()

	hours, err := catalog.ParseHours("12:00-23:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	catalogService := catalog.NewService(catalog.NewStaticRepository([]catalog.Venue{
		{
			ID: "R003", Name: "Coastal Catch",
			TableCounts: map[int]int{2: 1, 4: 12}, Rating: 4.2,
			Hours: hours, MinLeadTime: 30 * time.Minute,
		},
	}), 10)

	store := &flakyUpdateStore{MemoryStore: NewMemoryStore()}
	resolver := availability.NewServiceWithClock(catalogService, store, func() time.Time { return testNow })
	return NewService(store, resolver, &recordingPublisher{}, logger.New()), store
}

func TestModifyUpdateFailureRestoresHold(t *testing.T) {
	t.Parallel()

	svc, store := newFlakyService(t)
	ctx := context.Background()
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	r, err := svc.Create(ctx, createParams("R003", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.failNext = true
	four := 4
	if _, err := svc.Modify(ctx, r.ConfirmationCode, ModifyParams{NewPartySize: &four}); err == nil {
		t.Fatal("expected modify to fail")
	}

	twoCount, _ := store.ConfirmedCount(ctx, "R003", slot, 2)
	fourCount, _ := store.ConfirmedCount(ctx, "R003", slot, 4)
	if twoCount != 1 || fourCount != 0 {
		t.Fatalf("counts after failed modify = %d/%d, want 1/0", twoCount, fourCount)
	}

	got, err := svc.Get(ctx, r.ConfirmationCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Bucket != 2 || got.PartySize != 2 || got.Status != StatusConfirmed {
		t.Fatalf("original reservation changed: bucket %d party %d status %s", got.Bucket, got.PartySize, got.Status)
	}
}

func TestModifyUpdateFailureNeverOverbooksOriginalBucket(t *testing.T) {
	t.Parallel()

	svc, store := newFlakyService(t)
	ctx := context.Background()
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)
	oldKey := BucketKey{VenueID: "R003", Slot: slot, Bucket: 2}

	// R003 has a single 2-top
	r, err := svc.Create(ctx, createParams("R003", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// While the modify's record write fails, another booking grabs the
	// freed 2-top. Restoring the hold must not push the 2-top bucket past
	// its capacity of one; the moved hold is released instead.
	store.failNext = true
	store.beforeFail = func() {
		if ok, err := store.Reserve(ctx, oldKey, 1); err != nil || !ok {
			t.Errorf("racing reserve failed: ok=%v err=%v", ok, err)
		}
	}
	four := 4
	if _, err := svc.Modify(ctx, r.ConfirmationCode, ModifyParams{NewPartySize: &four}); err == nil {
		t.Fatal("expected modify to fail")
	}

	twoCount, _ := store.ConfirmedCount(ctx, "R003", slot, 2)
	fourCount, _ := store.ConfirmedCount(ctx, "R003", slot, 4)
	if twoCount != 1 {
		t.Fatalf("2-top bucket has capacity 1 but confirmed count is %d", twoCount)
	}
	if fourCount != 0 {
		t.Fatalf("4-top count after compensation = %d, want 0", fourCount)
	}
}

func TestCancelSurvivesReleaseFailure(t *testing.T) {
	t.Parallel()

	svc, store := newFlakyService(t)
	ctx := context.Background()
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	r, err := svc.Create(ctx, createParams("R003", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The record write commits the cancellation; a failed release only
	// leaves the counter conservatively high.
	store.failRelease = true
	cancelled, err := svc.Cancel(ctx, r.ConfirmationCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("unexpected status %s", cancelled.Status)
	}

	got, err := svc.Get(ctx, r.ConfirmationCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("stored status %s, want %s", got.Status, StatusCancelled)
	}
}

func TestModifyCancelledReservation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	slot := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)

	r, err := svc.Create(ctx, createParams("R001", slot, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(ctx, r.ConfirmationCode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newSlot := time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC)
	_, err = svc.Modify(ctx, r.ConfirmationCode, ModifyParams{NewSlot: &newSlot})
	if !rejection.Is(err, rejection.KindAlreadyCancelled) {
		t.Fatalf("got %v, want AlreadyCancelled", err)
	}
}

func TestGetUnknownCode(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "GF-NOSUCH")
	if !rejection.Is(err, rejection.KindNotFound) {
		t.Fatalf("got %v, want NotFound", err)
	}
}

func TestListReservations(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	slot := time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)

	if _, err := svc.Create(ctx, createParams("R012", slot, 2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := createParams("R001", time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC), 2)
	params.GuestName = "Arjun Mehta"
	if _, err := svc.Create(ctx, params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := svc.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("listed %d reservations, want 2", len(all))
	}

	byGuest, err := svc.List(ctx, ListFilter{GuestName: "arjun"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byGuest) != 1 || byGuest[0].GuestName != "Arjun Mehta" {
		t.Fatalf("guest filter returned %v", byGuest)
	}
}

func TestGenerateConfirmationCodeShape(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateConfirmationCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(code, "GF-") || len(code) != 9 {
			t.Fatalf("unexpected code %q", code)
		}
		for _, c := range code[3:] {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Fatalf("code %q contains %q outside alphabet", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes are not varying")
	}
}
