package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CancellationPolicy describes how a venue handles cancellations.
type CancellationPolicy string

const (
	CancellationFree         CancellationPolicy = "free"
	CancellationFee          CancellationPolicy = "fee"
	CancellationHoldRequired CancellationPolicy = "hold_required"
)

// ParseCancellationPolicy validates a raw policy string from the catalog file.
func ParseCancellationPolicy(raw string) (CancellationPolicy, error) {
	switch CancellationPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case CancellationFree:
		return CancellationFree, nil
	case CancellationFee:
		return CancellationFee, nil
	case CancellationHoldRequired:
		return CancellationHoldRequired, nil
	}
	return "", fmt.Errorf("unknown cancellation policy %q", raw)
}

// Hours is a venue's daily operating window in minutes from midnight.
// Overnight means the close time falls on the following day, e.g.
// "18:00-01:00+1" opens at 18:00 and closes at 01:00 the next morning.
type Hours struct {
	OpenMinute  int
	CloseMinute int
	Overnight   bool
}

// ParseHours parses "HH:MM-HH:MM" with an optional "+1" overnight suffix.
func ParseHours(raw string) (Hours, error) {
	s := strings.TrimSpace(raw)
	overnight := false
	if strings.HasSuffix(s, "+1") {
		overnight = true
		s = strings.TrimSuffix(s, "+1")
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Hours{}, fmt.Errorf("invalid hours %q: expected HH:MM-HH:MM", raw)
	}

	open, err := parseMinuteOfDay(parts[0])
	if err != nil {
		return Hours{}, fmt.Errorf("invalid hours %q: %w", raw, err)
	}
	close_, err := parseMinuteOfDay(parts[1])
	if err != nil {
		return Hours{}, fmt.Errorf("invalid hours %q: %w", raw, err)
	}

	if !overnight && close_ <= open {
		return Hours{}, fmt.Errorf("invalid hours %q: close must follow open (use +1 for overnight)", raw)
	}

	return Hours{OpenMinute: open, CloseMinute: close_, Overnight: overnight}, nil
}

func parseMinuteOfDay(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// Contains reports whether the time of day t falls within the window,
// treating the window as half-open: [open, close).
func (h Hours) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	if !h.Overnight {
		return minute >= h.OpenMinute && minute < h.CloseMinute
	}
	// Overnight window wraps past midnight: in-hours either after open
	// in the evening or before close in the early morning.
	return minute >= h.OpenMinute || minute < h.CloseMinute
}

// String renders the window back in catalog file form.
func (h Hours) String() string {
	s := fmt.Sprintf("%02d:%02d-%02d:%02d",
		h.OpenMinute/60, h.OpenMinute%60, h.CloseMinute/60, h.CloseMinute%60)
	if h.Overnight {
		s += "+1"
	}
	return s
}

// Venue is a single restaurant's static record. Venues are loaded once at
// startup and never mutated afterwards.
type Venue struct {
	ID                 string             `json:"restaurant_id"`
	Name               string             `json:"name"`
	City               string             `json:"city"`
	Area               string             `json:"area"`
	Cuisines           []string           `json:"cuisine"`
	Features           []string           `json:"features"`
	ApproxCapacity     int                `json:"approx_capacity"`
	TableCounts        map[int]int        `json:"table_counts"`
	PriceLevel         int                `json:"price_level"` // 1 = $, 2 = $$, 3 = $$$
	Rating             float64            `json:"rating"`
	Hours              Hours              `json:"-"`
	MinLeadTime        time.Duration      `json:"-"`
	CancellationPolicy CancellationPolicy `json:"cancellation_policy"`
	ContactPhone       string             `json:"contact_phone"`
	ContactEmail       string             `json:"contact_email"`
}

// TableSizes returns the venue's table sizes in ascending order.
func (v *Venue) TableSizes() []int {
	sizes := make([]int, 0, len(v.TableCounts))
	for size := range v.TableCounts {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}

// SmallestTableFor returns the smallest table size that seats partySize and
// the number of such tables. ok is false when the party exceeds every table.
// Table counts are authoritative here; ApproxCapacity is advisory only.
func (v *Venue) SmallestTableFor(partySize int) (size, count int, ok bool) {
	for _, s := range v.TableSizes() {
		if s >= partySize && v.TableCounts[s] > 0 {
			return s, v.TableCounts[s], true
		}
	}
	return 0, 0, false
}

// HasCuisine reports whether the venue serves the given cuisine
// (case-insensitive substring match, mirroring catalog text fields).
func (v *Venue) HasCuisine(cuisine string) bool {
	return containsFold(v.Cuisines, cuisine)
}

// HasFeature reports whether the venue advertises the given feature.
func (v *Venue) HasFeature(feature string) bool {
	return containsFold(v.Features, feature)
}

func containsFold(values []string, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), want) {
			return true
		}
	}
	return false
}

// ParsePriceLevel converts "$", "$$" or "$$$" to its ordinal tier.
func ParsePriceLevel(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n := len(s)
	if n < 1 || n > 3 || strings.Count(s, "$") != n {
		return 0, fmt.Errorf("invalid price level %q", raw)
	}
	return n, nil
}
