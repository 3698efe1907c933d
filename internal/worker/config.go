// Package worker provides background job processing for TripMate: queued
// plan generation and cache prewarming for popular destinations.
package worker

import (
	"sort"
	"time"
)

// PrewarmTarget is a destination whose geo and weather caches are kept warm.
type PrewarmTarget struct {
	// Destination is the free-text destination as travellers type it.
	Destination string

	// Priority determines warm order (lower = higher priority).
	Priority int
}

// PrewarmConfig holds configuration for the prewarm job.
type PrewarmConfig struct {
	// Targets are the destinations to warm.
	// If empty, uses DefaultPrewarmTargets.
	Targets []PrewarmTarget

	// Concurrency is the number of destinations warmed at once.
	// Default: 3
	Concurrency int

	// Timeout bounds the work for a single destination.
	// Default: 30 seconds
	Timeout time.Duration

	// WarmWeather also fetches current weather at each destination center.
	WarmWeather bool
}

// DefaultPrewarmConfig returns the default prewarm configuration.
func DefaultPrewarmConfig() PrewarmConfig {
	return PrewarmConfig{
		Targets:     DefaultPrewarmTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
		WarmWeather: true,
	}
}

// DefaultPrewarmTargets returns frequently requested destinations.
func DefaultPrewarmTargets() []PrewarmTarget {
	return []PrewarmTarget{
		{Destination: "Goa", Priority: 1},
		{Destination: "Jaipur", Priority: 1},
		{Destination: "Manali", Priority: 1},
		{Destination: "Kerala", Priority: 1},
		{Destination: "Udaipur", Priority: 2},
		{Destination: "Rishikesh", Priority: 2},
		{Destination: "Varanasi", Priority: 2},
		{Destination: "Darjeeling", Priority: 3},
		{Destination: "Pondicherry", Priority: 3},
		{Destination: "Hampi", Priority: 3},
	}
}

// Destinations returns target destinations ordered by priority. Targets with
// equal priority keep their configured order.
func (c PrewarmConfig) Destinations() []string {
	targets := make([]PrewarmTarget, len(c.Targets))
	copy(targets, c.Targets)
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Priority < targets[j].Priority
	})

	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.Destination)
	}
	return out
}
