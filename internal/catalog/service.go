package catalog

import (
	"sort"
	"strings"
)

// Filters narrows a catalog search. Zero values mean "no constraint".
type Filters struct {
	City      string
	Area      string
	Cuisine   string
	Features  []string
	PriceMax  int     // highest acceptable price tier, 0 = any
	RatingMin float64 // minimum rating, 0 = any
	Text      string  // case-insensitive substring over the venue name
}

// Service exposes read-only catalog queries.
type Service interface {
	Lookup(venueID string) (*Venue, bool)
	Search(filters Filters) []Venue
}

type service struct {
	repo       Repository
	maxResults int
}

// NewService creates a catalog query service. maxResults caps Search output;
// values below 1 fall back to the default of 10.
func NewService(repo Repository, maxResults int) Service {
	if maxResults < 1 {
		maxResults = 10
	}
	return &service{repo: repo, maxResults: maxResults}
}

func (s *service) Lookup(venueID string) (*Venue, bool) {
	return s.repo.Lookup(venueID)
}

// Search filters the snapshot and ranks by rating descending, then price tier
// ascending, then venue ID for a deterministic order. Pure read: each call
// returns a fresh slice.
func (s *service) Search(filters Filters) []Venue {
	var matched []Venue
	for _, v := range s.repo.All() {
		if matches(&v, filters) {
			matched = append(matched, v)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Rating != matched[j].Rating {
			return matched[i].Rating > matched[j].Rating
		}
		if matched[i].PriceLevel != matched[j].PriceLevel {
			return matched[i].PriceLevel < matched[j].PriceLevel
		}
		return matched[i].ID < matched[j].ID
	})

	if len(matched) > s.maxResults {
		matched = matched[:s.maxResults]
	}
	return matched
}

func matches(v *Venue, f Filters) bool {
	if f.City != "" && !strings.EqualFold(v.City, strings.TrimSpace(f.City)) {
		return false
	}
	if f.Area != "" && !strings.EqualFold(v.Area, strings.TrimSpace(f.Area)) {
		return false
	}
	if f.Cuisine != "" && !v.HasCuisine(f.Cuisine) {
		return false
	}
	for _, feature := range f.Features {
		if !v.HasFeature(feature) {
			return false
		}
	}
	if f.PriceMax > 0 && v.PriceLevel > f.PriceMax {
		return false
	}
	if f.RatingMin > 0 && v.Rating < f.RatingMin {
		return false
	}
	if f.Text != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(strings.TrimSpace(f.Text))) {
		return false
	}
	return true
}
