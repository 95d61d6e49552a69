package tools

// Operation argument structs. The dispatcher decodes raw JSON into these and
// runs validator before anything reaches the domain services; slot strings
// are additionally parsed and past-checked in the dispatcher.

type SearchRestaurantsRequest struct {
	City      string   `json:"city" validate:"omitempty,max=100"`
	Area      string   `json:"area" validate:"omitempty,max=100"`
	Cuisine   string   `json:"cuisine" validate:"omitempty,max=100"`
	Features  []string `json:"features" validate:"omitempty,dive,max=50"`
	PriceMax  int      `json:"price_max" validate:"omitempty,min=1,max=3"`
	RatingMin float64  `json:"rating_min" validate:"omitempty,min=0,max=5"`
	Text      string   `json:"text" validate:"omitempty,max=100"`
}

type RecommendRequest struct {
	SearchRestaurantsRequest
	PartySize     int    `json:"party_size" validate:"required,min=1,max=100"`
	PreferredSlot string `json:"preferred_slot" validate:"required,slot"`
}

type CheckAvailabilityRequest struct {
	VenueID   string `json:"venue_id" validate:"required,max=32"`
	Slot      string `json:"slot" validate:"required,slot"`
	PartySize int    `json:"party_size" validate:"required,min=1,max=100"`
}

type CreateReservationRequest struct {
	VenueID   string `json:"venue_id" validate:"required,max=32"`
	Slot      string `json:"slot" validate:"required,slot"`
	PartySize int    `json:"party_size" validate:"required,min=1,max=100"`
	GuestName string `json:"guest_name" validate:"required,max=255"`
	Contact   string `json:"contact" validate:"omitempty,max=255"`
	Notes     string `json:"notes" validate:"omitempty,max=2000"`
}

type ModifyReservationRequest struct {
	ConfirmationCode string  `json:"confirmation_code" validate:"required,max=16"`
	NewSlot          *string `json:"new_slot" validate:"omitempty,slot"`
	NewPartySize     *int    `json:"new_party_size" validate:"omitempty,min=1,max=100"`
}

type CancelReservationRequest struct {
	ConfirmationCode string `json:"confirmation_code" validate:"required,max=16"`
}

type GetReservationRequest struct {
	ConfirmationCode string `json:"confirmation_code" validate:"required,max=16"`
}

type ListReservationsRequest struct {
	VenueID   string `json:"venue_id" validate:"omitempty,max=32"`
	GuestName string `json:"guest_name" validate:"omitempty,max=255"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}
