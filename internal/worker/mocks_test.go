package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/weather"
)

type mockGeo struct {
	mu        sync.Mutex
	calls     []string
	failFor   map[string]bool
	delay     time.Duration
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (m *mockGeo) Prewarm(ctx context.Context, destination string) error {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.maxFlight.Load()
		if n <= peak || m.maxFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, destination)
	fail := m.failFor[destination]
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return itinerary.ErrNotFound
	}
	return nil
}

func (m *mockGeo) ResolveCenter(_ context.Context, destination string) (itinerary.GeoPoint, error) {
	return itinerary.GeoPoint{Lat: 15.49, Lon: 73.83, DisplayName: destination}, nil
}

func (m *mockGeo) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

type mockWeather struct {
	calls atomic.Int32
	err   error
}

func (m *mockWeather) GetCurrentWeather(_ context.Context, lat, lon float64) (*weather.Observation, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &weather.Observation{Lat: lat, Lon: lon, TemperatureC: 29, Condition: "Clear"}, nil
}

type mockGenerator struct {
	mu    sync.Mutex
	calls int
	plan  *itinerary.GeneratedPlan
	err   error
}

func (m *mockGenerator) GeneratePlan(_ context.Context, req itinerary.PlanRequest) (*itinerary.GeneratedPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.plan != nil {
		return m.plan, nil
	}
	return &itinerary.GeneratedPlan{
		Destination: req.Destination,
		Days:        req.Days,
		Persons:     req.Persons,
		Currency:    "INR",
		Provenance:  itinerary.ProvenanceDeterministic,
	}, nil
}

func (m *mockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var errStoreDown = errors.New("store down")
