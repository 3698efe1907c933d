// Package resilience wraps outbound provider calls with retries and a
// per-provider circuit breaker, and tracks provider health for the ops API.
package resilience

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerPolicy decides when a provider circuit opens and how it recovers.
type BreakerPolicy struct {
	// MinRequests is the sample size needed before FailureRatio applies.
	MinRequests uint32

	// FailureRatio opens the circuit once failures reach this share of requests.
	FailureRatio float64

	// ConsecutiveFailures opens the circuit after this many failures in a row,
	// whatever the ratio. Zero disables the rule.
	ConsecutiveFailures uint32

	// Cooldown is how long an open circuit rejects calls before letting a
	// trial request through.
	Cooldown time.Duration

	// TrialRequests is how many calls a half-open circuit admits.
	TrialRequests uint32

	// Window clears closed-state counts periodically. Zero keeps them until
	// the state changes.
	Window time.Duration
}

// DefaultBreakerPolicy opens after half of at least five calls fail and
// retries a minute later.
func DefaultBreakerPolicy() BreakerPolicy {
	return BreakerPolicy{
		MinRequests:   5,
		FailureRatio:  0.5,
		Cooldown:      time.Minute,
		TrialRequests: 1,
	}
}

// ShouldTrip reports whether the counts warrant opening the circuit.
func (p BreakerPolicy) ShouldTrip(counts gobreaker.Counts) bool {
	if p.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= p.ConsecutiveFailures {
		return true
	}
	if counts.Requests == 0 || counts.Requests < p.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= p.FailureRatio
}

func (p BreakerPolicy) breaker(name string, onChange func(from, to gobreaker.State)) *gobreaker.CircuitBreaker[*http.Response] {
	trial := p.TrialRequests
	if trial == 0 {
		trial = 1
	}
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: trial,
		Interval:    p.Window,
		Timeout:     p.Cooldown,
		ReadyToTrip: p.ShouldTrip,
		OnStateChange: func(_ string, from, to gobreaker.State) {
			onChange(from, to)
		},
	})
}
