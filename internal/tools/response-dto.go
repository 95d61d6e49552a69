package tools

import (
	"strings"
	"time"

	"goodfoods/internal/availability"
	"goodfoods/internal/catalog"
	"goodfoods/internal/ledger"
)

// VenueSummary is the catalog view returned by search and recommend.
type VenueSummary struct {
	VenueID            string   `json:"venue_id"`
	Name               string   `json:"name"`
	City               string   `json:"city"`
	Area               string   `json:"area"`
	Cuisines           []string `json:"cuisine"`
	Features           []string `json:"features,omitempty"`
	PriceLevel         string   `json:"price_level"`
	Rating             float64  `json:"rating"`
	Hours              string   `json:"hours"`
	MinLeadTimeMins    int      `json:"min_lead_time_mins"`
	CancellationPolicy string   `json:"cancellation_policy"`
}

func toVenueSummary(v *catalog.Venue) VenueSummary {
	return VenueSummary{
		VenueID:            v.ID,
		Name:               v.Name,
		City:               v.City,
		Area:               v.Area,
		Cuisines:           v.Cuisines,
		Features:           v.Features,
		PriceLevel:         strings.Repeat("$", v.PriceLevel),
		Rating:             v.Rating,
		Hours:              v.Hours.String(),
		MinLeadTimeMins:    int(v.MinLeadTime.Minutes()),
		CancellationPolicy: string(v.CancellationPolicy),
	}
}

// SearchRestaurantsResponse is the ordered result list for search_restaurants.
type SearchRestaurantsResponse struct {
	Restaurants []VenueSummary `json:"restaurants"`
	Total       int            `json:"total"`
}

// Recommendation is one ranked entry for recommend: a venue plus whether it
// can actually seat the party at the preferred slot.
type Recommendation struct {
	VenueSummary
	AvailableAtSlot bool                       `json:"available_at_preferred_slot"`
	Alternatives    []availability.Alternative `json:"alternatives,omitempty"`
}

// RecommendResponse is the availability-biased ranking for recommend.
type RecommendResponse struct {
	PreferredSlot   time.Time        `json:"preferred_slot"`
	PartySize       int              `json:"party_size"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ReservationResponse is the reservation view returned by booking operations.
type ReservationResponse struct {
	ConfirmationCode string    `json:"confirmation_code"`
	VenueID          string    `json:"venue_id"`
	VenueName        string    `json:"venue_name,omitempty"`
	PartySize        int       `json:"party_size"`
	Slot             time.Time `json:"slot"`
	TableSize        int       `json:"table_size"`
	GuestName        string    `json:"guest_name"`
	Contact          string    `json:"contact,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	LastModifiedAt   time.Time `json:"last_modified_at"`
}

func toReservationResponse(r *ledger.Reservation, venueName string) ReservationResponse {
	return ReservationResponse{
		ConfirmationCode: r.ConfirmationCode,
		VenueID:          r.VenueID,
		VenueName:        venueName,
		PartySize:        r.PartySize,
		Slot:             r.SlotStart,
		TableSize:        r.Bucket,
		GuestName:        r.GuestName,
		Contact:          r.Contact,
		Notes:            r.Notes,
		Status:           r.Status.String(),
		CreatedAt:        r.CreatedAt,
		LastModifiedAt:   r.LastModifiedAt,
	}
}

// ListReservationsResponse is the filtered listing for list_reservations.
type ListReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}
