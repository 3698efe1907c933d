package planner

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// GeoResolver resolves destinations and candidate POIs. *geo.Resolver
// satisfies it.
type GeoResolver interface {
	ResolveCenter(ctx context.Context, text string) (itinerary.GeoPoint, error)
	FindCandidates(ctx context.Context, text string, center itinerary.GeoPoint, category itinerary.POICategory) []itinerary.CandidatePOI
}

// WeatherSource returns a weather snapshot for a point and never fails.
// *weather.Service satisfies it.
type WeatherSource interface {
	Snapshot(ctx context.Context, point itinerary.GeoPoint) itinerary.WeatherSnapshot
}

// DeterministicConfig holds configuration for the deterministic tier.
type DeterministicConfig struct {
	// Geo is optional; without it every plan uses empty pools.
	Geo GeoResolver

	// Weather is optional; without it packing and tips ignore weather.
	Weather WeatherSource

	Logger zerolog.Logger
}

// Deterministic builds plans from geo data and the route scheduler without
// any AI provider. It also computes the trip context used to enrich AI plans.
type Deterministic struct {
	geo     GeoResolver
	weather WeatherSource
	logger  zerolog.Logger
}

// NewDeterministic creates the deterministic tier.
func NewDeterministic(cfg DeterministicConfig) *Deterministic {
	return &Deterministic{geo: cfg.Geo, weather: cfg.Weather, logger: cfg.Logger}
}

// tripContext is what the deterministic tier learns about a destination.
type tripContext struct {
	center  itinerary.GeoPoint
	weather *itinerary.WeatherSnapshot
}

// Build produces a complete plan. It fails only for invalid requests;
// unresolvable destinations and provider outages degrade to empty pools.
func (d *Deterministic) Build(ctx context.Context, req itinerary.PlanRequest, currency string) (*itinerary.GeneratedPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tc := d.resolve(ctx, req.Destination)

	var attractions, restaurants []itinerary.CandidatePOI
	if d.geo != nil && !tc.center.IsZero() {
		attractions = d.geo.FindCandidates(ctx, req.Destination, tc.center, itinerary.CategoryAttraction)
		restaurants = d.geo.FindCandidates(ctx, req.Destination, tc.center, itinerary.CategoryRestaurant)
	}

	plan := &itinerary.GeneratedPlan{
		Destination: req.Destination,
		Days:        req.Days,
		Persons:     req.Persons,
		Itinerary:   itinerary.BuildSchedule(tc.center, attractions, restaurants, req.Days, req.Pacing(), req.TransportMode),
		Provenance:  itinerary.ProvenanceDeterministic,
	}
	applyEstimates(plan, req, currency, tc.weather)

	d.logger.Debug().
		Str("destination", req.Destination).
		Int("attractions", len(attractions)).
		Int("restaurants", len(restaurants)).
		Msg("deterministic plan built")

	return plan, nil
}

// Enrich overwrites the cost, packing and currency of a plan produced by an
// AI tier and fills in safety tips when the provider gave none.
func (d *Deterministic) Enrich(ctx context.Context, plan *itinerary.GeneratedPlan, req itinerary.PlanRequest, currency string) {
	tc := d.resolve(ctx, req.Destination)
	applyEstimates(plan, req, currency, tc.weather)
}

func (d *Deterministic) resolve(ctx context.Context, destination string) tripContext {
	var tc tripContext

	if d.geo != nil {
		center, err := d.geo.ResolveCenter(ctx, destination)
		switch {
		case err == nil:
			tc.center = center
		case errors.Is(err, itinerary.ErrNotFound):
			d.logger.Info().Str("destination", destination).Msg("destination not resolved, using empty pools")
		default:
			d.logger.Warn().Err(err).Str("destination", destination).Msg("resolving destination failed")
		}
	}

	if d.weather != nil {
		snap := d.weather.Snapshot(ctx, tc.center)
		tc.weather = &snap
	}

	return tc
}
