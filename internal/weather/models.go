package weather

import (
	"errors"
	"time"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// SourceSeasonal marks observations estimated from the calendar month.
const SourceSeasonal = "seasonal"

// Observation represents current weather at a point.
type Observation struct {
	Lat float64
	Lon float64

	// TemperatureC is the air temperature in Celsius.
	TemperatureC float64

	// Humidity percentage (0-100)
	Humidity float64

	// Condition is a human readable label such as "Light rain" or "Sunny".
	Condition string

	// Source names the provider, or SourceSeasonal for estimates.
	Source string

	ObservedAt time.Time
	FetchedAt  time.Time
}

// Snapshot returns the subset of the observation packing and tips depend on.
func (o *Observation) Snapshot() itinerary.WeatherSnapshot {
	return itinerary.WeatherSnapshot{
		TemperatureC: o.TemperatureC,
		Condition:    o.Condition,
		Humidity:     o.Humidity,
	}
}

// monthlyBaseC holds typical daytime temperatures by month, January first.
var monthlyBaseC = [12]float64{20, 22, 26, 30, 32, 33, 32, 31, 30, 28, 24, 21}

// SeasonalEstimate returns a coarse observation for a month, used when no
// provider can be reached.
func SeasonalEstimate(month time.Month) Observation {
	temp := monthlyBaseC[(int(month)+11)%12]

	condition := "Cloudy"
	switch {
	case temp >= 30:
		condition = "Sunny"
	case temp >= 25:
		condition = "Partly Cloudy"
	}

	return Observation{
		TemperatureC: temp,
		Humidity:     60,
		Condition:    condition,
		Source:       SourceSeasonal,
	}
}
