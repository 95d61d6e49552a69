package tools

// Operation names form the closed contract between the engine and the
// conversational front-end. The front-end never calls anything else.
const (
	OpSearchRestaurants = "search_restaurants"
	OpRecommend         = "recommend"
	OpCheckAvailability = "check_availability"
	OpCreateReservation = "create_reservation"
	OpModifyReservation = "modify_reservation"
	OpCancelReservation = "cancel_reservation"
	OpGetReservation    = "get_reservation"
	OpListReservations  = "list_reservations"
)

// ParamInfo describes one argument of an operation, in the shape tool-calling
// models expect.
type ParamInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Definition describes one operation for the caller's tool listing.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamInfo `json:"params"`
}

var definitions = []Definition{
	{
		Name:        OpSearchRestaurants,
		Description: "Search the restaurant catalog by filters.",
		Params: []ParamInfo{
			{Name: "city", Type: "string", Description: "City name, exact match"},
			{Name: "area", Type: "string", Description: "Neighbourhood, exact match"},
			{Name: "cuisine", Type: "string", Description: "Cuisine, substring match"},
			{Name: "features", Type: "array", Description: "Required features, e.g. rooftop, live-music"},
			{Name: "price_max", Type: "integer", Description: "Highest acceptable price tier, 1-3"},
			{Name: "rating_min", Type: "number", Description: "Minimum rating, 0-5"},
			{Name: "text", Type: "string", Description: "Substring over the restaurant name"},
		},
	},
	{
		Name:        OpRecommend,
		Description: "Search plus availability bias: restaurants free at the preferred slot rank first.",
		Params: []ParamInfo{
			{Name: "city", Type: "string", Description: "City name, exact match"},
			{Name: "area", Type: "string", Description: "Neighbourhood, exact match"},
			{Name: "cuisine", Type: "string", Description: "Cuisine, substring match"},
			{Name: "features", Type: "array", Description: "Required features"},
			{Name: "price_max", Type: "integer", Description: "Highest acceptable price tier, 1-3"},
			{Name: "rating_min", Type: "number", Description: "Minimum rating, 0-5"},
			{Name: "party_size", Type: "integer", Description: "Number of guests", Required: true},
			{Name: "preferred_slot", Type: "string", Description: "Preferred time, YYYY-MM-DDTHH:MM", Required: true},
		},
	},
	{
		Name:        OpCheckAvailability,
		Description: "Check whether a party fits a restaurant at a time; suggests nearby slots when not.",
		Params: []ParamInfo{
			{Name: "venue_id", Type: "string", Description: "Restaurant id from the catalog", Required: true},
			{Name: "slot", Type: "string", Description: "Requested time, YYYY-MM-DDTHH:MM", Required: true},
			{Name: "party_size", Type: "integer", Description: "Number of guests", Required: true},
		},
	},
	{
		Name:        OpCreateReservation,
		Description: "Book a table. Returns a confirmation code on success.",
		Params: []ParamInfo{
			{Name: "venue_id", Type: "string", Description: "Restaurant id from the catalog", Required: true},
			{Name: "slot", Type: "string", Description: "Requested time, YYYY-MM-DDTHH:MM", Required: true},
			{Name: "party_size", Type: "integer", Description: "Number of guests", Required: true},
			{Name: "guest_name", Type: "string", Description: "Name the booking is under", Required: true},
			{Name: "contact", Type: "string", Description: "Phone or email for the guest"},
			{Name: "notes", Type: "string", Description: "Free-form notes, e.g. dietary requirements"},
		},
	},
	{
		Name:        OpModifyReservation,
		Description: "Change an existing reservation's time and/or party size.",
		Params: []ParamInfo{
			{Name: "confirmation_code", Type: "string", Description: "Code from the original booking", Required: true},
			{Name: "new_slot", Type: "string", Description: "New time, YYYY-MM-DDTHH:MM"},
			{Name: "new_party_size", Type: "integer", Description: "New number of guests"},
		},
	},
	{
		Name:        OpCancelReservation,
		Description: "Cancel an existing reservation.",
		Params: []ParamInfo{
			{Name: "confirmation_code", Type: "string", Description: "Code from the original booking", Required: true},
		},
	},
	{
		Name:        OpGetReservation,
		Description: "Fetch a reservation's details by confirmation code.",
		Params: []ParamInfo{
			{Name: "confirmation_code", Type: "string", Description: "Code from the original booking", Required: true},
		},
	},
	{
		Name:        OpListReservations,
		Description: "List reservations matching guest name, restaurant and/or date.",
		Params: []ParamInfo{
			{Name: "venue_id", Type: "string", Description: "Restaurant id from the catalog"},
			{Name: "guest_name", Type: "string", Description: "Guest name, substring match"},
			{Name: "date", Type: "string", Description: "Calendar day, YYYY-MM-DD"},
		},
	},
}
