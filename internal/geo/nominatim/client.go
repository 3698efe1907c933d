// Package nominatim implements geo.Provider with the OpenStreetMap Nominatim
// search API. It needs no API key.
package nominatim

import (
	"context"
	"encoding/json"
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
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent is sent when none is configured; the public instance
	// rejects anonymous clients.
	DefaultUserAgent = "tripmate"

	// viewboxDegrees is the half-width of the search box around the center.
	viewboxDegrees = 0.2
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

// Client is a Nominatim search client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Geocode resolves free text to the best matching place.
func (c *Client) Geocode(ctx context.Context, query string) (itinerary.GeoPoint, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", "1")

	places, err := c.search(ctx, q)
	if err != nil {
		return itinerary.GeoPoint{}, err
	}
	if len(places) == 0 {
		return itinerary.GeoPoint{}, itinerary.ErrNotFound
	}

	point, ok := places[0].point()
	if !ok {
		return itinerary.GeoPoint{}, &geo.Error{Provider: ProviderName, Code: "BAD_COORDINATES"}
	}
	return point, nil
}

// SearchPlaces finds places of a category. With a known center the search is
// bounded to a box around it, otherwise the destination name is part of the query.
func (c *Client) SearchPlaces(ctx context.Context, query string, near itinerary.GeoPoint, category itinerary.POICategory, limit int) ([]itinerary.CandidatePOI, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if near.IsZero() {
		q.Set("q", geo.SearchPhrase(category)+" in "+query)
	} else {
		q.Set("q", singular(category))
		q.Set("viewbox", fmt.Sprintf("%.4f,%.4f,%.4f,%.4f",
			near.Lon-viewboxDegrees, near.Lat+viewboxDegrees,
			near.Lon+viewboxDegrees, near.Lat-viewboxDegrees))
		q.Set("bounded", "1")
	}

	places, err := c.search(ctx, q)
	if err != nil {
		return nil, err
	}

	pois := make([]itinerary.CandidatePOI, 0, len(places))
	for _, p := range places {
		point, ok := p.point()
		if !ok {
			continue
		}
		name := p.Name
		if name == "" {
			name, _, _ = strings.Cut(p.DisplayName, ",")
		}
		point.DisplayName = name

		poi := itinerary.CandidatePOI{
			ID:       fmt.Sprintf("osm:%s:%d", p.OSMType, p.OSMID),
			Name:     name,
			Address:  p.DisplayName,
			Location: point,
			Category: category,
		}
		if p.Type != "" {
			poi.Tags = []string{p.Type}
		}
		pois = append(pois, poi)
	}
	return pois, nil
}

func (c *Client) search(ctx context.Context, q url.Values) ([]place, error) {
	q.Set("format", "jsonv2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &geo.Error{Provider: ProviderName, Code: "TRANSPORT", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &geo.Error{
			Provider:  ProviderName,
			Code:      "HTTP_" + strconv.Itoa(resp.StatusCode),
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, &geo.Error{Provider: ProviderName, Code: "DECODE", Err: err}
	}
	return places, nil
}

func singular(category itinerary.POICategory) string {
	if category == itinerary.CategoryRestaurant {
		return "restaurant"
	}
	return "attraction"
}

// place is a Nominatim jsonv2 search result. Coordinates arrive as strings.
type place struct {
	PlaceID     int64  `json:"place_id"`
	OSMType     string `json:"osm_type"`
	OSMID       int64  `json:"osm_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Type        string `json:"type"`
}

func (p place) point() (itinerary.GeoPoint, bool) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return itinerary.GeoPoint{}, false
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return itinerary.GeoPoint{}, false
	}
	return itinerary.GeoPoint{Lat: lat, Lon: lon, DisplayName: p.DisplayName}, true
}
