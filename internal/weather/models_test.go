package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tripmate/tripmate/internal/weather"
)

func TestSeasonalEstimate(t *testing.T) {
	tests := []struct {
		month     time.Month
		temp      float64
		condition string
	}{
		{time.January, 20, "Cloudy"},
		{time.March, 26, "Partly Cloudy"},
		{time.April, 30, "Sunny"},
		{time.June, 33, "Sunny"},
		{time.October, 28, "Partly Cloudy"},
		{time.November, 24, "Cloudy"},
		{time.December, 21, "Cloudy"},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			obs := weather.SeasonalEstimate(tt.month)
			assert.Equal(t, tt.temp, obs.TemperatureC)
			assert.Equal(t, tt.condition, obs.Condition)
			assert.Equal(t, 60.0, obs.Humidity)
			assert.Equal(t, weather.SourceSeasonal, obs.Source)
		})
	}
}

func TestObservation_Snapshot(t *testing.T) {
	obs := &weather.Observation{Lat: 15.5, Lon: 73.8, TemperatureC: 31.5, Humidity: 78, Condition: "Light rain", Source: "google"}

	snap := obs.Snapshot()
	assert.Equal(t, 31.5, snap.TemperatureC)
	assert.Equal(t, 78.0, snap.Humidity)
	assert.Equal(t, "Light rain", snap.Condition)
}
