package planner_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/llm"
)

// mockLLM is a scripted AI provider.
type mockLLM struct {
	mu      sync.Mutex
	name    string
	respond func(ctx context.Context, prompt llm.Prompt) (string, error)
	calls   int
}

func (m *mockLLM) Name() string { return m.name }

func (m *mockLLM) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	m.mu.Lock()
	m.calls++
	respond := m.respond
	m.mu.Unlock()
	return respond(ctx, prompt)
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func replying(name, raw string) *mockLLM {
	return &mockLLM{name: name, respond: func(context.Context, llm.Prompt) (string, error) {
		return raw, nil
	}}
}

func failing(name string, err error) *mockLLM {
	return &mockLLM{name: name, respond: func(context.Context, llm.Prompt) (string, error) {
		return "", err
	}}
}

// hanging ignores its context and only returns once release is closed.
func hanging(name string, release <-chan struct{}) *mockLLM {
	return &mockLLM{name: name, respond: func(context.Context, llm.Prompt) (string, error) {
		<-release
		return planJSON("Goa", 1), nil
	}}
}

// planJSON renders a valid plan for dest with one day per entry.
func planJSON(dest string, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"destination": %q, "days": %d, "persons": 1, "itinerary": [`, dest, days)
	for d := 1; d <= days; d++ {
		if d > 1 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"day": %d, "activities": [
			{"time": "09:00", "place": "Hotel", "category": "wake"},
			{"time": "10:00", "place": "Fort Aguada", "category": "attraction", "durationMinutes": 90},
			{"time": "21:00", "place": "Hotel", "category": "return"}
		]}`, d)
	}
	b.WriteString(`]}`)
	return b.String()
}

// mockGeo is a fixed geo resolver.
type mockGeo struct {
	mu          sync.Mutex
	center      itinerary.GeoPoint
	centerErr   error
	attractions []itinerary.CandidatePOI
	restaurants []itinerary.CandidatePOI
	resolves    int
}

func (m *mockGeo) ResolveCenter(context.Context, string) (itinerary.GeoPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolves++
	return m.center, m.centerErr
}

func (m *mockGeo) FindCandidates(_ context.Context, _ string, _ itinerary.GeoPoint, category itinerary.POICategory) []itinerary.CandidatePOI {
	if category == itinerary.CategoryRestaurant {
		return m.restaurants
	}
	return m.attractions
}

// mockWeather returns a fixed snapshot.
type mockWeather struct {
	snapshot itinerary.WeatherSnapshot
}

func (m *mockWeather) Snapshot(context.Context, itinerary.GeoPoint) itinerary.WeatherSnapshot {
	return m.snapshot
}

// mockFlags is a static flag set.
type mockFlags map[string]bool

func (m mockFlags) IsEnabled(_ context.Context, key string) bool {
	return m[key]
}

func poi(id string, category itinerary.POICategory, lat, lon float64) itinerary.CandidatePOI {
	return itinerary.CandidatePOI{
		ID:       id,
		Name:     "Place " + id,
		Location: itinerary.GeoPoint{Lat: lat, Lon: lon},
		Category: category,
	}
}
