package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/tripstore"
)

// PlanGenerator produces plans. planner.Service satisfies it.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req itinerary.PlanRequest) (*itinerary.GeneratedPlan, error)
}

// ProcessorConfig holds configuration for the job processor.
type ProcessorConfig struct {
	Generator PlanGenerator
	Trips     tripstore.Repository
	Prewarm   *PrewarmJob
	Logger    zerolog.Logger
}

// Processor executes decoded job messages independently of the transport.
type Processor struct {
	generator PlanGenerator
	trips     tripstore.Repository
	prewarm   *PrewarmJob
	logger    zerolog.Logger
}

// NewProcessor creates a new job processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		generator: cfg.Generator,
		trips:     cfg.Trips,
		prewarm:   cfg.Prewarm,
		logger:    cfg.Logger,
	}
}

// Process handles one raw message. Errors wrapping ErrPermanent must not be retried.
func (p *Processor) Process(ctx context.Context, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: decoding message: %w", ErrPermanent, err)
	}

	switch msg.JobType {
	case JobPlanGenerate:
		return p.generatePlan(ctx, msg)
	case JobPrewarm:
		return p.runPrewarm(ctx, msg)
	default:
		return fmt.Errorf("%w: unknown job type %q", ErrPermanent, msg.JobType)
	}
}

func (p *Processor) generatePlan(ctx context.Context, msg Message) error {
	if msg.PlanID == "" || msg.Request == nil {
		return fmt.Errorf("%w: plan job without plan_id or request", ErrPermanent)
	}
	if p.generator == nil || p.trips == nil {
		return errors.New("plan generation is not configured")
	}

	logger := p.logger.With().Str("plan_id", msg.PlanID).Logger()

	trip, err := p.trips.Get(ctx, msg.PlanID)
	switch {
	case errors.Is(err, tripstore.ErrTripNotFound):
		trip = &tripstore.Trip{
			ID:      msg.PlanID,
			OwnerID: msg.OwnerID,
			Request: *msg.Request,
			Status:  tripstore.StatusPending,
		}
	case err != nil:
		return fmt.Errorf("loading trip: %w", err)
	case trip.Status == tripstore.StatusReady:
		// Redelivered after a successful run.
		logger.Debug().Msg("plan already generated")
		return nil
	}

	start := time.Now()
	plan, genErr := p.generator.GeneratePlan(ctx, *msg.Request)
	if genErr != nil {
		trip.Status = tripstore.StatusFailed
		trip.Error = genErr.Error()
		trip.Plan = nil
		logger.Warn().Err(genErr).Msg("queued plan generation failed")
	} else {
		trip.Status = tripstore.StatusReady
		trip.Error = ""
		trip.Plan = plan
	}

	if err := p.trips.Save(ctx, trip); err != nil {
		return fmt.Errorf("saving trip: %w", err)
	}

	logger.Info().
		Str("status", string(trip.Status)).
		Dur("duration", time.Since(start)).
		Msg("queued plan processed")
	return nil
}

func (p *Processor) runPrewarm(ctx context.Context, msg Message) error {
	if p.prewarm == nil {
		return fmt.Errorf("%w: prewarm is not configured", ErrPermanent)
	}

	result := p.prewarm.Run(ctx, msg.Destinations)

	// Consider it successful if no more than half failed.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many prewarm failures: %d/%d", result.Failed, result.Total)
	}
	return nil
}
