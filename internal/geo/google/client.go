// Package google implements geo.Provider with the Google Maps Geocoding and
// Places Text Search APIs.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/geo"
	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "google-maps"

	// DefaultBaseURL is the Google Maps web services base URL.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	// searchRadiusMeters bounds place searches around the destination center.
	searchRadiusMeters = 20000
)

// API status values shared by the Geocoding and Places APIs.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusUnknownError   = "UNKNOWN_ERROR"
)

// ClientConfig holds configuration for the Google Maps client.
type ClientConfig struct {
	// APIKey is the Google Maps Platform API key (required).
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client is a Google Maps geocoding and places client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Google Maps client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Geocode resolves an address or place name with the Geocoding API.
func (c *Client) Geocode(ctx context.Context, query string) (itinerary.GeoPoint, error) {
	q := url.Values{}
	q.Set("address", query)
	q.Set("key", c.apiKey)

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", q, &resp); err != nil {
		return itinerary.GeoPoint{}, err
	}
	if err := c.checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return itinerary.GeoPoint{}, err
	}
	if len(resp.Results) == 0 {
		return itinerary.GeoPoint{}, itinerary.ErrNotFound
	}

	first := resp.Results[0]
	return itinerary.GeoPoint{
		Lat:         first.Geometry.Location.Lat,
		Lon:         first.Geometry.Location.Lng,
		DisplayName: first.FormattedAddress,
	}, nil
}

// SearchPlaces finds places of a category with Places Text Search, biased
// toward the destination center when it is known.
func (c *Client) SearchPlaces(ctx context.Context, query string, near itinerary.GeoPoint, category itinerary.POICategory, limit int) ([]itinerary.CandidatePOI, error) {
	q := url.Values{}
	q.Set("query", geo.SearchPhrase(category)+" in "+query)
	q.Set("key", c.apiKey)
	if category == itinerary.CategoryRestaurant {
		q.Set("type", "restaurant")
	} else {
		q.Set("type", "tourist_attraction")
	}
	if !near.IsZero() {
		q.Set("location", strconv.FormatFloat(near.Lat, 'f', 6, 64)+","+strconv.FormatFloat(near.Lon, 'f', 6, 64))
		q.Set("radius", strconv.Itoa(searchRadiusMeters))
	}

	var resp textSearchResponse
	if err := c.get(ctx, "/place/textsearch/json", q, &resp); err != nil {
		return nil, err
	}
	if err := c.checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		if errors.Is(err, itinerary.ErrNotFound) {
			return []itinerary.CandidatePOI{}, nil
		}
		return nil, err
	}

	pois := make([]itinerary.CandidatePOI, 0, len(resp.Results))
	for _, r := range resp.Results {
		if limit > 0 && len(pois) == limit {
			break
		}
		pois = append(pois, itinerary.CandidatePOI{
			ID:      r.PlaceID,
			Name:    r.Name,
			Address: r.FormattedAddress,
			Location: itinerary.GeoPoint{
				Lat:         r.Geometry.Location.Lat,
				Lon:         r.Geometry.Location.Lng,
				DisplayName: r.Name,
			},
			Category: category,
			Tags:     r.Types,
		})
	}
	return pois, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &geo.Error{Provider: ProviderName, Code: "TRANSPORT", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &geo.Error{
			Provider:  ProviderName,
			Code:      "HTTP_" + strconv.Itoa(resp.StatusCode),
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &geo.Error{Provider: ProviderName, Code: "DECODE", Err: err}
	}
	return nil
}

// checkStatus maps an API status to nil, itinerary.ErrNotFound or a *geo.Error.
func (c *Client) checkStatus(status, message string) error {
	switch status {
	case statusOK:
		return nil
	case statusZeroResults:
		return itinerary.ErrNotFound
	}

	geoErr := &geo.Error{
		Provider:  ProviderName,
		Code:      status,
		Retryable: status == statusOverQueryLimit || status == statusUnknownError,
	}
	if message != "" {
		geoErr.Err = errors.New(message)
	}
	return geoErr
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

type textSearchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID          string   `json:"place_id"`
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}
