// Package itinerary holds the trip plan domain model and the pure planning
// algorithms: route scheduling, packing list synthesis and cost estimation.
package itinerary

// TripType is the traveller-selected style of a trip.
type TripType string

const (
	TripTypeAdventure TripType = "adventure"
	TripTypeRelaxed   TripType = "relaxed"
	TripTypeCultural  TripType = "cultural"
	TripTypeCulinary  TripType = "culinary"
)

// TripTypes lists all supported trip types in display order.
var TripTypes = []TripType{TripTypeAdventure, TripTypeRelaxed, TripTypeCultural, TripTypeCulinary}

// Valid reports whether t is a known trip type.
func (t TripType) Valid() bool {
	for _, known := range TripTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TransportMode is how the party travels to and around the destination.
type TransportMode string

const (
	TransportFlight  TransportMode = "flight"
	TransportTrain   TransportMode = "train"
	TransportBus     TransportMode = "bus"
	TransportCar     TransportMode = "car"
	TransportShip    TransportMode = "ship"
	TransportWalk    TransportMode = "walk"
	TransportTransit TransportMode = "transit"
)

// TransportModes lists all supported transport modes in display order.
var TransportModes = []TransportMode{
	TransportFlight, TransportTrain, TransportBus, TransportCar,
	TransportShip, TransportWalk, TransportTransit,
}

// Valid reports whether m is a known transport mode.
func (m TransportMode) Valid() bool {
	for _, known := range TransportModes {
		if m == known {
			return true
		}
	}
	return false
}

// SpeedKmh returns the average local travel speed for the mode.
func (m TransportMode) SpeedKmh() float64 {
	switch m {
	case TransportWalk:
		return 4
	case TransportTransit:
		return 20
	default:
		return 30
	}
}

// LocalMode returns the label used for travel legs between stops.
func (m TransportMode) LocalMode() string {
	switch m {
	case TransportWalk:
		return "walk"
	case TransportTransit:
		return "transit"
	default:
		return "drive"
	}
}

// Pacing is the derived trip tempo.
type Pacing string

const (
	PacingRelaxed Pacing = "relaxed"
	PacingNormal  Pacing = "normal"
	PacingFast    Pacing = "fast"
)

// Pacings lists all pacing values.
var Pacings = []Pacing{PacingRelaxed, PacingNormal, PacingFast}

// PacingFor derives the pacing from a trip type.
func PacingFor(t TripType) Pacing {
	switch t {
	case TripTypeRelaxed:
		return PacingRelaxed
	case TripTypeAdventure:
		return PacingFast
	default:
		return PacingNormal
	}
}

// Budget is an optional spending limit tagged with its currency.
type Budget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PlanRequest is the input to plan generation.
type PlanRequest struct {
	Destination   string        `json:"destination"`
	Days          int           `json:"days"`
	Persons       int           `json:"persons"`
	Budget        *Budget       `json:"budget,omitempty"`
	TripType      TripType      `json:"tripType"`
	TransportMode TransportMode `json:"transportMode"`
	Preferences   string        `json:"preferences,omitempty"`
	International bool          `json:"international,omitempty"`
}

// Pacing returns the pacing derived from the request's trip type.
func (r PlanRequest) Pacing() Pacing {
	return PacingFor(r.TripType)
}

// GeoPoint is a resolved location.
type GeoPoint struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
}

// IsZero reports whether the point is the null island placeholder.
func (p GeoPoint) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}

// POICategory classifies candidate points of interest.
type POICategory string

const (
	CategoryAttraction POICategory = "attraction"
	CategoryRestaurant POICategory = "restaurant"
)

// CandidatePOI is a point of interest returned by a geo provider.
type CandidatePOI struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Address  string      `json:"address"`
	Location GeoPoint    `json:"location"`
	Category POICategory `json:"category"`
	Tags     []string    `json:"tags,omitempty"`
}

// Activity categories as they appear on a day plan.
const (
	ActivityWake       = "wake"
	ActivityAttraction = "attraction"
	ActivityRestaurant = "restaurant"
	ActivityReturn     = "return"
)

// Route describes the travel leg that leads to an activity.
type Route struct {
	Mode          string  `json:"mode"`
	DistanceKm    float64 `json:"distanceKm"`
	TravelMinutes int     `json:"travelMinutes"`
	From          string  `json:"from"`
	To            string  `json:"to"`
}

// Activity is one timed entry in a day plan.
type Activity struct {
	Time            string   `json:"time"`
	Place           string   `json:"place"`
	Address         string   `json:"address,omitempty"`
	Category        string   `json:"category"`
	DurationMinutes int      `json:"durationMinutes"`
	EntryFee        float64  `json:"entryFee"`
	Route           *Route   `json:"route,omitempty"`
	LocalFood       []string `json:"localFood,omitempty"`
	POIID           string   `json:"poiId,omitempty"`
}

// DayPlan is the ordered schedule of a single day.
type DayPlan struct {
	Day        int        `json:"day"`
	Activities []Activity `json:"activities"`
}

// CostBreakdown splits the estimated trip cost by category.
type CostBreakdown struct {
	Accommodation float64 `json:"accommodation"`
	Food          float64 `json:"food"`
	Transport     float64 `json:"transport"`
	Activities    float64 `json:"activities"`
	Misc          float64 `json:"misc"`
	Total         float64 `json:"total"`
}

// ProvenanceDeterministic tags plans produced without an AI provider.
const ProvenanceDeterministic = "deterministic"

// GeneratedPlan is the finished itinerary returned to callers.
type GeneratedPlan struct {
	Destination        string        `json:"destination"`
	Days               int           `json:"days"`
	Persons            int           `json:"persons"`
	TotalEstimatedCost float64       `json:"totalEstimatedCost"`
	Currency           string        `json:"currency"`
	CostBreakdown      CostBreakdown `json:"costBreakdown"`
	Itinerary          []DayPlan     `json:"itinerary"`
	PackingList        []string      `json:"packingList"`
	SafetyTips         []string      `json:"safetyTips"`
	Provenance         string        `json:"provenance"`
}

// WeatherSnapshot is the subset of observed weather the packing and tips
// logic consumes.
type WeatherSnapshot struct {
	TemperatureC float64 `json:"temperatureC"`
	Condition    string  `json:"condition"`
	Humidity     float64 `json:"humidity"`
}
