// Package geo resolves destinations to coordinates and finds candidate
// points of interest around them.
package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// Provider defines the interface for geocoding and place search providers.
type Provider interface {
	// Geocode resolves free text to a point. Returns itinerary.ErrNotFound
	// when the provider has no match.
	Geocode(ctx context.Context, query string) (itinerary.GeoPoint, error)

	// SearchPlaces finds POIs of a category for a destination. near is the
	// resolved destination center and may be zero.
	SearchPlaces(ctx context.Context, query string, near itinerary.GeoPoint, category itinerary.POICategory, limit int) ([]itinerary.CandidatePOI, error)

	// Name returns the provider name for logging.
	Name() string
}

// Error is a provider failure other than "no results".
type Error struct {
	Provider  string
	Code      string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes provider errors match itinerary.ErrProviderUnavailable.
func (e *Error) Is(target error) bool {
	return target == itinerary.ErrProviderUnavailable
}

// IsRetryable reports whether err is a provider error worth retrying later.
func IsRetryable(err error) bool {
	var geoErr *Error
	return errors.As(err, &geoErr) && geoErr.Retryable
}

// SearchPhrase returns the free-text phrase used to search for a category.
func SearchPhrase(category itinerary.POICategory) string {
	if category == itinerary.CategoryRestaurant {
		return "restaurants"
	}
	return "tourist attractions"
}
