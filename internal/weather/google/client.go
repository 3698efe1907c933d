// Package google implements a weather provider backed by the Google Weather
// API current conditions endpoint.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/provider/resilience"
	"github.com/tripmate/tripmate/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "google-weather"

	// DefaultBaseURL is the Google Weather API base URL.
	DefaultBaseURL = "https://weather.googleapis.com/v1"

	defaultHumidity = 60
)

// ClientConfig holds configuration for the Google Weather client.
type ClientConfig struct {
	// APIKey is the Google Maps Platform key with the Weather API enabled.
	APIKey string

	// BaseURL overrides the API base URL.
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client fetches current conditions from the Google Weather API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Google Weather client.
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

// GetCurrentWeather fetches current conditions for a location.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("location.latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("location.longitude", strconv.FormatFloat(lon, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/currentConditions:lookup?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var cc currentConditionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cc); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if cc.Temperature == nil {
		return nil, fmt.Errorf("response has no temperature")
	}

	obs := &weather.Observation{
		Lat:          lat,
		Lon:          lon,
		TemperatureC: cc.Temperature.Degrees,
		Humidity:     defaultHumidity,
		Condition:    "Clear",
		Source:       ProviderName,
		ObservedAt:   cc.CurrentTime,
		FetchedAt:    time.Now(),
	}
	if cc.Temperature.Unit == "FAHRENHEIT" {
		obs.TemperatureC = (cc.Temperature.Degrees - 32) * 5 / 9
	}
	if cc.RelativeHumidity != nil {
		obs.Humidity = *cc.RelativeHumidity
	}
	if text := strings.TrimSpace(cc.WeatherCondition.Description.Text); text != "" {
		obs.Condition = text
	}

	return obs, nil
}

type currentConditionsResponse struct {
	CurrentTime time.Time `json:"currentTime"`
	Temperature *struct {
		Degrees float64 `json:"degrees"`
		Unit    string  `json:"unit"`
	} `json:"temperature"`
	RelativeHumidity *float64 `json:"relativeHumidity"`
	WeatherCondition struct {
		Type        string `json:"type"`
		Description struct {
			Text string `json:"text"`
		} `json:"description"`
	} `json:"weatherCondition"`
}
