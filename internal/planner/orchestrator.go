// Package planner turns plan requests into generated plans. It runs the
// provider fallback chain, deduplicates concurrent identical requests and
// caches results.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/llm"
	"github.com/tripmate/tripmate/internal/planparse"
)

const tracerName = "github.com/tripmate/tripmate/internal/planner"

// DefaultTierTimeout bounds each AI provider attempt.
const DefaultTierTimeout = 60 * time.Second

// State is a step of the fallback chain.
type State string

const (
	StateIdle                State = "idle"
	StateTryingPrimary       State = "trying_primary"
	StateTryingSecondary     State = "trying_secondary"
	StateTryingDeterministic State = "trying_deterministic"
	StateSucceeded           State = "succeeded"
	StateFailed              State = "failed"
)

// Tier names used in traces, logs and metrics.
const (
	TierPrimary       = "primary"
	TierSecondary     = "secondary"
	TierDeterministic = "deterministic"
)

// Attempt outcomes.
const (
	OutcomeSuccess       = "success"
	OutcomeSkipped       = "skipped"
	OutcomeTimeout       = "timeout"
	OutcomeError         = "error"
	OutcomeInvalidOutput = "invalid_output"
)

// Attempt records one tier of a run.
type Attempt struct {
	Tier     string        `json:"tier"`
	Provider string        `json:"provider,omitempty"`
	Outcome  string        `json:"outcome"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Trace records the state transitions and attempts of a run.
type Trace struct {
	States   []State   `json:"states"`
	Attempts []Attempt `json:"attempts"`
}

// Final returns the last state reached.
func (t Trace) Final() State {
	if len(t.States) == 0 {
		return StateIdle
	}
	return t.States[len(t.States)-1]
}

func (t *Trace) enter(s State) {
	t.States = append(t.States, s)
}

// FlagSource reports whether a feature flag is on.
type FlagSource interface {
	IsEnabled(ctx context.Context, key string) bool
}

// Flag keys consulted by the orchestrator.
const (
	FlagDisablePrimaryAI   = "disable_primary_ai"
	FlagDisableSecondaryAI = "disable_secondary_ai"
	FlagDeterministicOnly  = "deterministic_only"
)

// OrchestratorConfig holds configuration for the orchestrator.
type OrchestratorConfig struct {
	// Primary and Secondary are the AI tiers. Either may be nil.
	Primary   llm.Provider
	Secondary llm.Provider

	// Deterministic is the terminal fallback (required).
	Deterministic *Deterministic

	// Flags can switch AI tiers off at runtime (optional).
	Flags FlagSource

	// TierTimeout bounds each AI attempt (default: 60s).
	TierTimeout time.Duration

	// DefaultCurrency prices plans without a budget currency.
	DefaultCurrency string

	Metrics *Metrics
	Logger  zerolog.Logger
}

// Orchestrator runs the primary, secondary and deterministic tiers in order
// and stops at the first valid plan.
type Orchestrator struct {
	primary         llm.Provider
	secondary       llm.Provider
	deterministic   *Deterministic
	flags           FlagSource
	tierTimeout     time.Duration
	defaultCurrency string
	metrics         *Metrics
	tracer          trace.Tracer
	logger          zerolog.Logger
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	timeout := cfg.TierTimeout
	if timeout <= 0 {
		timeout = DefaultTierTimeout
	}
	deterministic := cfg.Deterministic
	if deterministic == nil {
		deterministic = NewDeterministic(DeterministicConfig{Logger: cfg.Logger})
	}

	return &Orchestrator{
		primary:         cfg.Primary,
		secondary:       cfg.Secondary,
		deterministic:   deterministic,
		flags:           cfg.Flags,
		tierTimeout:     timeout,
		defaultCurrency: cfg.DefaultCurrency,
		metrics:         cfg.Metrics,
		tracer:          otel.Tracer(tracerName),
		logger:          cfg.Logger,
	}
}

// ProviderNames returns the configured AI providers in tier order.
func (o *Orchestrator) ProviderNames() []string {
	var names []string
	for _, p := range []llm.Provider{o.primary, o.secondary} {
		if p != nil {
			names = append(names, p.Name())
		}
	}
	return names
}

// Run produces a plan for a normalized request. AI plans are returned as
// parsed, without enrichment. The returned error wraps either
// itinerary.ErrInvalidInput or itinerary.ErrGenerationFailed.
func (o *Orchestrator) Run(ctx context.Context, req itinerary.PlanRequest) (*itinerary.GeneratedPlan, Trace, error) {
	var tr Trace
	tr.enter(StateIdle)

	if err := req.Validate(); err != nil {
		tr.enter(StateFailed)
		return nil, tr, err
	}

	currency := req.Currency(o.defaultCurrency)
	deterministicOnly := o.flagOn(ctx, FlagDeterministicOnly)

	tiers := []struct {
		state    State
		tier     string
		provider llm.Provider
		flag     string
	}{
		{StateTryingPrimary, TierPrimary, o.primary, FlagDisablePrimaryAI},
		{StateTryingSecondary, TierSecondary, o.secondary, FlagDisableSecondaryAI},
	}

	for _, t := range tiers {
		tr.enter(t.state)

		if t.provider == nil || deterministicOnly || o.flagOn(ctx, t.flag) {
			tr.Attempts = append(tr.Attempts, Attempt{Tier: t.tier, Outcome: OutcomeSkipped})
			continue
		}

		start := time.Now()
		plan, err := o.runAI(ctx, t.tier, t.provider, req, currency)
		attempt := Attempt{
			Tier:     t.tier,
			Provider: t.provider.Name(),
			Outcome:  outcomeOf(err),
			Duration: time.Since(start),
		}
		o.metrics.RecordTier(ctx, t.tier, attempt.Outcome, attempt.Duration)

		if err != nil {
			attempt.Error = err.Error()
			tr.Attempts = append(tr.Attempts, attempt)
			o.logger.Warn().Err(err).
				Str("tier", t.tier).
				Str("provider", attempt.Provider).
				Str("destination", req.Destination).
				Dur("duration", attempt.Duration).
				Msg("plan tier failed, falling back")
			continue
		}

		tr.Attempts = append(tr.Attempts, attempt)
		tr.enter(StateSucceeded)
		return plan, tr, nil
	}

	tr.enter(StateTryingDeterministic)
	start := time.Now()
	plan, err := o.runDeterministic(ctx, req, currency)
	attempt := Attempt{Tier: TierDeterministic, Outcome: outcomeOf(err), Duration: time.Since(start)}
	o.metrics.RecordTier(ctx, TierDeterministic, attempt.Outcome, attempt.Duration)
	if err != nil {
		attempt.Error = err.Error()
		tr.Attempts = append(tr.Attempts, attempt)
		tr.enter(StateFailed)
		if errors.Is(err, itinerary.ErrInvalidInput) {
			return nil, tr, err
		}
		return nil, tr, fmt.Errorf("%w: %w", itinerary.ErrGenerationFailed, err)
	}

	tr.Attempts = append(tr.Attempts, attempt)
	tr.enter(StateSucceeded)
	return plan, tr, nil
}

// runAI calls one provider under the tier timeout. The call runs in its own
// goroutine; if the deadline fires first its result is dropped.
func (o *Orchestrator) runAI(ctx context.Context, tier string, p llm.Provider, req itinerary.PlanRequest, currency string) (*itinerary.GeneratedPlan, error) {
	ctx, span := o.tracer.Start(ctx, "planner.tier."+tier, trace.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("provider", p.Name()),
	))
	defer span.End()

	tierCtx, cancel := context.WithTimeout(ctx, o.tierTimeout)
	defer cancel()

	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	prompt := llm.BuildPrompt(req, currency)

	go func() {
		raw, err := p.Generate(tierCtx, prompt)
		done <- result{raw: raw, err: err}
	}()

	var res result
	select {
	case <-tierCtx.Done():
		err := fmt.Errorf("%w: %s: %w", itinerary.ErrProviderUnavailable, p.Name(), tierCtx.Err())
		span.SetStatus(codes.Error, "timeout")
		return nil, err
	case res = <-done:
	}

	if res.err != nil {
		span.RecordError(res.err)
		span.SetStatus(codes.Error, "provider error")
		if errors.Is(res.err, itinerary.ErrProviderUnavailable) {
			return nil, res.err
		}
		return nil, fmt.Errorf("%w: %s: %w", itinerary.ErrProviderUnavailable, p.Name(), res.err)
	}

	plan, err := planparse.Parse(res.raw)
	if err != nil {
		span.SetStatus(codes.Error, "invalid output")
		return nil, err
	}
	if err := matchesRequest(plan, req); err != nil {
		span.SetStatus(codes.Error, "invalid output")
		return nil, err
	}

	plan.Provenance = p.Name()
	return plan, nil
}

func (o *Orchestrator) runDeterministic(ctx context.Context, req itinerary.PlanRequest, currency string) (*itinerary.GeneratedPlan, error) {
	ctx, span := o.tracer.Start(ctx, "planner.tier."+TierDeterministic)
	defer span.End()

	plan, err := o.deterministic.Build(ctx, req, currency)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deterministic build failed")
	}
	return plan, err
}

func (o *Orchestrator) flagOn(ctx context.Context, key string) bool {
	return o.flags != nil && o.flags.IsEnabled(ctx, key)
}

// matchesRequest rejects AI plans for a different trip. Destinations match
// when one contains the other, ignoring case, so "Goa, India" answers "Goa".
func matchesRequest(plan *itinerary.GeneratedPlan, req itinerary.PlanRequest) error {
	if plan.Days != req.Days {
		return &planparse.ParseFailure{Reason: fmt.Sprintf("plan has %d days, want %d", plan.Days, req.Days), Field: "days"}
	}
	got := strings.ToLower(strings.TrimSpace(plan.Destination))
	want := strings.ToLower(req.Destination)
	if !strings.Contains(got, want) && !strings.Contains(want, got) {
		return &planparse.ParseFailure{Reason: fmt.Sprintf("plan is for %q, want %q", plan.Destination, req.Destination), Field: "destination"}
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, itinerary.ErrInvalidModelOutput):
		return OutcomeInvalidOutput
	default:
		return OutcomeError
	}
}
