package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tripmate/tripmate/internal/worker"
)

func TestDefaultPrewarmConfig(t *testing.T) {
	cfg := worker.DefaultPrewarmConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.WarmWeather)
	assert.GreaterOrEqual(t, len(cfg.Targets), 5)
}

func TestPrewarmConfig_DestinationsByPriority(t *testing.T) {
	cfg := worker.PrewarmConfig{
		Targets: []worker.PrewarmTarget{
			{Destination: "Hampi", Priority: 3},
			{Destination: "Goa", Priority: 1},
			{Destination: "Udaipur", Priority: 2},
			{Destination: "Jaipur", Priority: 1},
		},
	}

	assert.Equal(t, []string{"Goa", "Jaipur", "Udaipur", "Hampi"}, cfg.Destinations())
}

func TestPrewarmJob_Run(t *testing.T) {
	geo := &mockGeo{failFor: map[string]bool{"Atlantis": true}}
	wx := &mockWeather{}
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: worker.PrewarmConfig{
			Targets:     []worker.PrewarmTarget{{Destination: "Goa"}, {Destination: "Atlantis"}, {Destination: "Jaipur"}},
			Concurrency: 2,
			Timeout:     time.Second,
			WarmWeather: true,
		},
		Logger:  zerolog.Nop(),
		Geo:     geo,
		Weather: wx,
	})

	result := job.Run(context.Background(), nil)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "Atlantis", result.Errors[0].Destination)
	assert.Equal(t, "geo", result.Errors[0].Stage)
	assert.Equal(t, int32(2), wx.calls.Load())
	assert.ElementsMatch(t, []string{"Goa", "Atlantis", "Jaipur"}, geo.Calls())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRuns)
	assert.Equal(t, int64(2), metrics.GeoWarmed)
	assert.Equal(t, int64(2), metrics.WeatherWarmed)
	assert.NotZero(t, metrics.LastRunAt)
}

func TestPrewarmJob_ExplicitDestinations(t *testing.T) {
	geo := &mockGeo{}
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{Logger: zerolog.Nop(), Geo: geo})

	result := job.Run(context.Background(), []string{"Kochi"})

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, []string{"Kochi"}, geo.Calls())
}

func TestPrewarmJob_WeatherFailureDoesNotFailDestination(t *testing.T) {
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config:  worker.PrewarmConfig{Targets: []worker.PrewarmTarget{{Destination: "Goa"}}, WarmWeather: true},
		Logger:  zerolog.Nop(),
		Geo:     &mockGeo{},
		Weather: &mockWeather{err: errors.New("quota exceeded")},
	})

	result := job.Run(context.Background(), nil)

	assert.Equal(t, 1, result.Successful)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "weather", result.Errors[0].Stage)
}

func TestPrewarmJob_BoundedConcurrency(t *testing.T) {
	destinations := make([]string, 12)
	for i := range destinations {
		destinations[i] = "city-" + string(rune('a'+i))
	}

	geo := &mockGeo{delay: 20 * time.Millisecond}
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: worker.PrewarmConfig{Concurrency: 3, Timeout: time.Second},
		Logger: zerolog.Nop(),
		Geo:    geo,
	})

	result := job.Run(context.Background(), destinations)

	assert.Equal(t, 12, result.Successful)
	assert.LessOrEqual(t, geo.maxFlight.Load(), int32(3))
	assert.Greater(t, geo.maxFlight.Load(), int32(1))
}

func TestPrewarmJob_CancelledContext(t *testing.T) {
	job := worker.NewPrewarmJob(worker.PrewarmJobConfig{
		Config: worker.PrewarmConfig{Concurrency: 1},
		Logger: zerolog.Nop(),
		Geo:    &mockGeo{delay: time.Second},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := job.Run(ctx, []string{"a", "b", "c"})

	assert.NotNil(t, result)
	assert.Equal(t, 0, result.Successful)
}
