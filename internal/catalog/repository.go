package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Repository is a read-only snapshot of the venue catalog. Out-of-band edits
// to the source file are not observed until an explicit reload.
type Repository interface {
	Lookup(venueID string) (*Venue, bool)
	All() []Venue
}

type repository struct {
	venues []Venue
	byID   map[string]*Venue
}

// expected CSV header, in order
var catalogColumns = []string{
	"restaurant_id", "name", "city", "area", "cuisine", "features",
	"approx_capacity", "table_counts", "price_level", "rating", "hours",
	"min_lead_time_mins", "cancellation_policy", "contact_phone", "contact_email",
}

// NewRepositoryFromFile loads the catalog CSV at path.
func NewRepositoryFromFile(path string) (Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	repo, err := NewRepositoryFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return repo, nil
}

// NewRepositoryFromReader parses catalog CSV records from r.
func NewRepositoryFromReader(r io.Reader) (Repository, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	repo := &repository{byID: make(map[string]*Venue)}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog record: %w", err)
		}
		line++

		venue, err := parseVenue(record, cols)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		if _, exists := repo.byID[venue.ID]; exists {
			return nil, fmt.Errorf("catalog line %d: duplicate venue id %s", line, venue.ID)
		}
		repo.venues = append(repo.venues, venue)
	}

	// Index into the final slice so Lookup returns stable pointers.
	for i := range repo.venues {
		repo.byID[repo.venues[i].ID] = &repo.venues[i]
	}
	return repo, nil
}

// NewStaticRepository wraps an in-memory venue list. Used by tests and seeds.
func NewStaticRepository(venues []Venue) Repository {
	repo := &repository{
		venues: append([]Venue(nil), venues...),
		byID:   make(map[string]*Venue, len(venues)),
	}
	for i := range repo.venues {
		repo.byID[repo.venues[i].ID] = &repo.venues[i]
	}
	return repo
}

func (r *repository) Lookup(venueID string) (*Venue, bool) {
	v, ok := r.byID[venueID]
	return v, ok
}

func (r *repository) All() []Venue {
	out := make([]Venue, len(r.venues))
	copy(out, r.venues)
	return out
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range catalogColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("catalog header missing column %q", required)
		}
	}
	return cols, nil
}

func parseVenue(record []string, cols map[string]int) (Venue, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	id := field("restaurant_id")
	if id == "" {
		return Venue{}, fmt.Errorf("missing restaurant_id")
	}

	approxCapacity, err := strconv.Atoi(field("approx_capacity"))
	if err != nil || approxCapacity < 0 {
		return Venue{}, fmt.Errorf("invalid approx_capacity %q", field("approx_capacity"))
	}

	tableCounts, err := parseTableCounts(field("table_counts"))
	if err != nil {
		return Venue{}, err
	}

	priceLevel, err := ParsePriceLevel(field("price_level"))
	if err != nil {
		return Venue{}, err
	}

	rating, err := strconv.ParseFloat(field("rating"), 64)
	if err != nil || rating < 0 || rating > 5 {
		return Venue{}, fmt.Errorf("invalid rating %q", field("rating"))
	}

	hours, err := ParseHours(field("hours"))
	if err != nil {
		return Venue{}, err
	}

	leadMins, err := strconv.Atoi(field("min_lead_time_mins"))
	if err != nil || leadMins < 0 {
		return Venue{}, fmt.Errorf("invalid min_lead_time_mins %q", field("min_lead_time_mins"))
	}

	policy, err := ParseCancellationPolicy(field("cancellation_policy"))
	if err != nil {
		return Venue{}, err
	}

	return Venue{
		ID:                 id,
		Name:               field("name"),
		City:               field("city"),
		Area:               field("area"),
		Cuisines:           splitList(field("cuisine")),
		Features:           splitList(field("features")),
		ApproxCapacity:     approxCapacity,
		TableCounts:        tableCounts,
		PriceLevel:         priceLevel,
		Rating:             rating,
		Hours:              hours,
		MinLeadTime:        time.Duration(leadMins) * time.Minute,
		CancellationPolicy: policy,
		ContactPhone:       field("contact_phone"),
		ContactEmail:       field("contact_email"),
	}, nil
}

// parseTableCounts decodes the nested table_counts value, a JSON object
// mapping table size to table count, e.g. {"2":8,"4":12}.
func parseTableCounts(raw string) (map[int]int, error) {
	if raw == "" {
		return nil, fmt.Errorf("missing table_counts")
	}

	var bySize map[string]int
	if err := json.Unmarshal([]byte(raw), &bySize); err != nil {
		return nil, fmt.Errorf("invalid table_counts %q: %w", raw, err)
	}

	counts := make(map[int]int, len(bySize))
	for sizeStr, count := range bySize {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid table size %q in table_counts", sizeStr)
		}
		if count < 0 {
			return nil, fmt.Errorf("negative count for table size %d", size)
		}
		counts[size] = count
	}
	return counts, nil
}

// splitList splits a pipe-separated catalog field into trimmed values.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
