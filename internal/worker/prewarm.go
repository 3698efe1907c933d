package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/weather"
)

// GeoWarmer resolves destinations and fills the candidate caches.
type GeoWarmer interface {
	Prewarm(ctx context.Context, destination string) error
	ResolveCenter(ctx context.Context, destination string) (itinerary.GeoPoint, error)
}

// WeatherWarmer fetches current weather, filling its cache.
type WeatherWarmer interface {
	GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error)
}

// PrewarmJob warms geo and weather caches for popular destinations with a
// bounded pool of workers.
type PrewarmJob struct {
	config  PrewarmConfig
	logger  zerolog.Logger
	geo     GeoWarmer
	weather WeatherWarmer

	metrics *PrewarmMetrics
}

// PrewarmMetrics tracks prewarm job statistics.
type PrewarmMetrics struct {
	mu sync.RWMutex

	TotalRuns     int64
	Successful    int64
	Failed        int64
	GeoWarmed     int64
	WeatherWarmed int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
}

// PrewarmJobConfig holds configuration for creating a PrewarmJob.
type PrewarmJobConfig struct {
	Config  PrewarmConfig
	Logger  zerolog.Logger
	Geo     GeoWarmer
	Weather WeatherWarmer
}

// NewPrewarmJob creates a new prewarm job.
func NewPrewarmJob(cfg PrewarmJobConfig) *PrewarmJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config.Targets = DefaultPrewarmTargets()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &PrewarmJob{
		config:  config,
		logger:  cfg.Logger,
		geo:     cfg.Geo,
		weather: cfg.Weather,
		metrics: &PrewarmMetrics{},
	}
}

// PrewarmResult contains the result of a prewarm run.
type PrewarmResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Total      int
	Successful int
	Failed     int
	Errors     []PrewarmError
}

// PrewarmError records a failed stage for one destination.
type PrewarmError struct {
	Destination string
	Stage       string
	Error       string
}

// Run warms the given destinations, or the configured targets when none are given.
func (j *PrewarmJob) Run(ctx context.Context, destinations []string) *PrewarmResult {
	if len(destinations) == 0 {
		destinations = j.config.Destinations()
	}

	startTime := time.Now()
	result := &PrewarmResult{
		StartTime: startTime,
		Total:     len(destinations),
	}

	j.logger.Info().
		Int("destinations", result.Total).
		Int("concurrency", j.config.Concurrency).
		Msg("starting prewarm job")

	work := make(chan string, len(destinations))
	results := make(chan destinationResult, len(destinations))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for destination := range work {
				if ctx.Err() != nil {
					return
				}
				results <- j.warm(ctx, destination)
			}
		}()
	}

	for _, d := range destinations {
		work <- d
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	for dr := range results {
		if dr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, dr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("prewarm job completed")

	return result
}

type destinationResult struct {
	success bool
	errors  []PrewarmError
}

func (j *PrewarmJob) warm(ctx context.Context, destination string) destinationResult {
	result := destinationResult{success: true}
	if j.geo == nil {
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if err := j.geo.Prewarm(ctx, destination); err != nil {
		result.success = false
		result.errors = append(result.errors, PrewarmError{Destination: destination, Stage: "geo", Error: err.Error()})
		return result
	}
	atomic.AddInt64(&j.metrics.GeoWarmed, 1)

	if !j.config.WarmWeather || j.weather == nil {
		return result
	}

	// Served from the resolver cache filled by Prewarm.
	center, err := j.geo.ResolveCenter(ctx, destination)
	if err != nil {
		return result
	}
	if _, err := j.weather.GetCurrentWeather(ctx, center.Lat, center.Lon); err != nil {
		// Weather has a seasonal fallback, so a miss here does not fail the destination.
		result.errors = append(result.errors, PrewarmError{Destination: destination, Stage: "weather", Error: err.Error()})
		return result
	}
	atomic.AddInt64(&j.metrics.WeatherWarmed, 1)
	return result
}

func (j *PrewarmJob) updateMetrics(result *PrewarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.Successful += int64(result.Successful)
	j.metrics.Failed += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *PrewarmJob) GetMetrics() PrewarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return PrewarmMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		Successful:      j.metrics.Successful,
		Failed:          j.metrics.Failed,
		GeoWarmed:       atomic.LoadInt64(&j.metrics.GeoWarmed),
		WeatherWarmed:   atomic.LoadInt64(&j.metrics.WeatherWarmed),
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
	}
}
