package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"goodfoods/internal/availability"
	"goodfoods/internal/catalog"
	"goodfoods/internal/ledger"
	"goodfoods/internal/shared/constants"
	"goodfoods/internal/shared/rejection"
	"goodfoods/pkg/cache"
)

// Dispatcher maps named operations onto the engine's services. It is
// stateless: all state lives in the catalog snapshot and the ledger.
type Dispatcher interface {
	Dispatch(ctx context.Context, operation string, args json.RawMessage) (interface{}, error)
	Definitions() []Definition
}

type dispatcher struct {
	catalog  catalog.Service
	resolver availability.Service
	ledger   ledger.Service
	cache    cache.Service // optional search-result cache
	cacheTTL time.Duration
	validate *validator.Validate
	now      func() time.Time
}

// NewDispatcher wires the tool operations. cacheService may be nil; search
// results are then computed on every call, which is fine for small catalogs.
func NewDispatcher(catalogSvc catalog.Service, resolver availability.Service, ledgerSvc ledger.Service, cacheService cache.Service, cacheTTL time.Duration) Dispatcher {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "slot" validates the wire timestamp format without parsing twice at
	// the call sites.
	_ = v.RegisterValidation("slot", func(fl validator.FieldLevel) bool {
		_, err := ParseSlot(fl.Field().String())
		return err == nil
	})

	return &dispatcher{
		catalog:  catalogSvc,
		resolver: resolver,
		ledger:   ledgerSvc,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		validate: v,
		now:      time.Now,
	}
}

// ParseSlot parses a wire slot timestamp, with or without seconds.
func ParseSlot(raw string) (time.Time, error) {
	for _, layout := range []string{availability.SlotLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid slot %q: expected YYYY-MM-DDTHH:MM", raw)
}

func (d *dispatcher) Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Dispatch validates the arguments for the named operation and delegates to
// the owning service. Validation failures never cause partial side effects:
// nothing touches the ledger until the request is fully validated.
func (d *dispatcher) Dispatch(ctx context.Context, operation string, args json.RawMessage) (interface{}, error) {
	switch operation {
	case OpSearchRestaurants:
		return dispatch(ctx, d, args, d.searchRestaurants)
	case OpRecommend:
		return dispatch(ctx, d, args, d.recommend)
	case OpCheckAvailability:
		return dispatch(ctx, d, args, d.checkAvailability)
	case OpCreateReservation:
		return dispatch(ctx, d, args, d.createReservation)
	case OpModifyReservation:
		return dispatch(ctx, d, args, d.modifyReservation)
	case OpCancelReservation:
		return dispatch(ctx, d, args, d.cancelReservation)
	case OpGetReservation:
		return dispatch(ctx, d, args, d.getReservation)
	case OpListReservations:
		return dispatch(ctx, d, args, d.listReservations)
	}
	return nil, rejection.New(rejection.KindValidationError, "unknown operation %q", operation)
}

// dispatch decodes and validates args into T, then runs the handler.
func dispatch[T any](ctx context.Context, d *dispatcher, args json.RawMessage, handler func(context.Context, *T) (interface{}, error)) (interface{}, error) {
	var req T
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return nil, rejection.New(rejection.KindValidationError, "malformed arguments: %v", err)
		}
	}
	if err := d.validate.Struct(&req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, rejection.New(rejection.KindValidationError,
				"invalid argument %s: failed %s constraint", fe.Field(), fe.Tag())
		}
		return nil, rejection.New(rejection.KindValidationError, "invalid arguments: %v", err)
	}
	return handler(ctx, &req)
}

// requireFutureSlot enforces the dispatcher-boundary rule that requested
// slots are not in the past. Finer lead-time policy belongs to the resolver.
func (d *dispatcher) requireFutureSlot(raw string) (time.Time, error) {
	slot, err := ParseSlot(raw)
	if err != nil {
		return time.Time{}, rejection.New(rejection.KindValidationError, "%v", err)
	}
	if slot.Before(d.now()) {
		return time.Time{}, rejection.New(rejection.KindValidationError,
			"slot %s is in the past", raw)
	}
	return slot, nil
}

func toFilters(req *SearchRestaurantsRequest) catalog.Filters {
	return catalog.Filters{
		City:      req.City,
		Area:      req.Area,
		Cuisine:   req.Cuisine,
		Features:  req.Features,
		PriceMax:  req.PriceMax,
		RatingMin: req.RatingMin,
		Text:      req.Text,
	}
}

func (d *dispatcher) searchRestaurants(ctx context.Context, req *SearchRestaurantsRequest) (interface{}, error) {
	run := func() SearchRestaurantsResponse {
		venues := d.catalog.Search(toFilters(req))
		resp := SearchRestaurantsResponse{Restaurants: make([]VenueSummary, 0, len(venues))}
		for i := range venues {
			resp.Restaurants = append(resp.Restaurants, toVenueSummary(&venues[i]))
		}
		resp.Total = len(resp.Restaurants)
		return resp
	}

	// The catalog is an immutable snapshot, so caching search results is
	// always consistent.
	if d.cache != nil {
		var cached SearchRestaurantsResponse
		err := d.cache.GetOrSet(ctx, searchCacheKey(req), d.cacheTTL, func() (interface{}, error) {
			return run(), nil
		}, &cached)
		if err == nil {
			return cached, nil
		}
		// Cache trouble is not a reason to fail a pure read.
	}
	return run(), nil
}

func searchCacheKey(req *SearchRestaurantsRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return constants.CACHE_KEY_CATALOG_SEARCH + hex.EncodeToString(sum[:8])
}

func (d *dispatcher) recommend(ctx context.Context, req *RecommendRequest) (interface{}, error) {
	slot, err := d.requireFutureSlot(req.PreferredSlot)
	if err != nil {
		return nil, err
	}

	venues := d.catalog.Search(toFilters(&req.SearchRestaurantsRequest))

	resp := RecommendResponse{
		PreferredSlot: availability.NormalizeSlot(slot),
		PartySize:     req.PartySize,
	}

	var unavailable []Recommendation
	for i := range venues {
		check, err := d.resolver.Check(ctx, venues[i].ID, slot, req.PartySize)
		if err != nil {
			return nil, err
		}
		rec := Recommendation{
			VenueSummary:    toVenueSummary(&venues[i]),
			AvailableAtSlot: check.Available,
			Alternatives:    check.Alternatives,
		}
		if check.Available {
			resp.Recommendations = append(resp.Recommendations, rec)
		} else {
			unavailable = append(unavailable, rec)
		}
	}
	// Available venues first, search order preserved within each group.
	resp.Recommendations = append(resp.Recommendations, unavailable...)
	return resp, nil
}

func (d *dispatcher) checkAvailability(ctx context.Context, req *CheckAvailabilityRequest) (interface{}, error) {
	slot, err := d.requireFutureSlot(req.Slot)
	if err != nil {
		return nil, err
	}
	return d.resolver.Check(ctx, req.VenueID, slot, req.PartySize)
}

func (d *dispatcher) createReservation(ctx context.Context, req *CreateReservationRequest) (interface{}, error) {
	slot, err := d.requireFutureSlot(req.Slot)
	if err != nil {
		return nil, err
	}

	reservation, err := d.ledger.Create(ctx, ledger.CreateParams{
		VenueID:   req.VenueID,
		Slot:      slot,
		PartySize: req.PartySize,
		GuestName: req.GuestName,
		Contact:   req.Contact,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return d.reservationResponse(reservation), nil
}

func (d *dispatcher) modifyReservation(ctx context.Context, req *ModifyReservationRequest) (interface{}, error) {
	var params ledger.ModifyParams
	if req.NewSlot != nil {
		slot, err := d.requireFutureSlot(*req.NewSlot)
		if err != nil {
			return nil, err
		}
		params.NewSlot = &slot
	}
	params.NewPartySize = req.NewPartySize

	if params.NewSlot == nil && params.NewPartySize == nil {
		return nil, rejection.New(rejection.KindValidationError,
			"modify requires new_slot and/or new_party_size")
	}

	reservation, err := d.ledger.Modify(ctx, req.ConfirmationCode, params)
	if err != nil {
		return nil, err
	}
	return d.reservationResponse(reservation), nil
}

func (d *dispatcher) cancelReservation(ctx context.Context, req *CancelReservationRequest) (interface{}, error) {
	reservation, err := d.ledger.Cancel(ctx, req.ConfirmationCode)
	if err != nil {
		return nil, err
	}
	return d.reservationResponse(reservation), nil
}

func (d *dispatcher) getReservation(ctx context.Context, req *GetReservationRequest) (interface{}, error) {
	reservation, err := d.ledger.Get(ctx, req.ConfirmationCode)
	if err != nil {
		return nil, err
	}
	return d.reservationResponse(reservation), nil
}

func (d *dispatcher) listReservations(ctx context.Context, req *ListReservationsRequest) (interface{}, error) {
	reservations, err := d.ledger.List(ctx, ledger.ListFilter{
		VenueID:   req.VenueID,
		GuestName: req.GuestName,
		Date:      req.Date,
	})
	if err != nil {
		return nil, err
	}

	resp := ListReservationsResponse{Reservations: make([]ReservationResponse, 0, len(reservations))}
	for i := range reservations {
		resp.Reservations = append(resp.Reservations, d.reservationResponse(&reservations[i]))
	}
	resp.Total = len(resp.Reservations)
	return resp, nil
}

func (d *dispatcher) reservationResponse(r *ledger.Reservation) ReservationResponse {
	venueName := ""
	if venue, ok := d.catalog.Lookup(r.VenueID); ok {
		venueName = venue.Name
	}
	return toReservationResponse(r, venueName)
}
