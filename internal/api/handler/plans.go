package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/api/models"
	"github.com/tripmate/tripmate/internal/api/response"
	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/tripstore"
	"github.com/tripmate/tripmate/internal/worker"
)

// PlanGenerator produces plans. planner.Service satisfies it.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req itinerary.PlanRequest) (*itinerary.GeneratedPlan, error)
}

// JobPublisher queues background jobs. worker.Publisher satisfies it.
type JobPublisher interface {
	Publish(ctx context.Context, msg worker.Message) (string, error)
}

// AsyncGate reports whether queued generation is switched off.
type AsyncGate interface {
	IsAsyncGenerationDisabled(ctx context.Context) bool
}

// PlansConfig holds the dependencies of the plan endpoints.
type PlansConfig struct {
	Generator       PlanGenerator
	Trips           tripstore.Repository
	Publisher       JobPublisher // nil disables POST /v1/plans:enqueue
	Flags           AsyncGate
	DefaultCurrency string
	Logger          zerolog.Logger
}

// PlansHandler handles plan generation and retrieval.
type PlansHandler struct {
	generator       PlanGenerator
	trips           tripstore.Repository
	publisher       JobPublisher
	flags           AsyncGate
	defaultCurrency string
	logger          zerolog.Logger
}

// NewPlansHandler creates a new PlansHandler.
func NewPlansHandler(cfg PlansConfig) *PlansHandler {
	return &PlansHandler{
		generator:       cfg.Generator,
		trips:           cfg.Trips,
		publisher:       cfg.Publisher,
		flags:           cfg.Flags,
		defaultCurrency: cfg.DefaultCurrency,
		logger:          cfg.Logger,
	}
}

// GeneratePlan handles POST /v1/plans:generate - synchronous generation.
func (h *PlansHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	plan, err := h.generator.GeneratePlan(ctx, req)
	if err != nil {
		h.writeGenerationError(w, r, err)
		return
	}

	trip := &tripstore.Trip{
		ID:      tripstore.NewID(),
		OwnerID: GetUserID(ctx),
		Request: req,
		Plan:    plan,
		Status:  tripstore.StatusReady,
	}
	if err := h.trips.Save(ctx, trip); err != nil {
		h.logger.Error().Err(err).Str("plan_id", trip.ID).Msg("failed to save plan")
		response.InternalError(w, r, "failed to save plan")
		return
	}

	response.Created(w, r, "/v1/plans/"+trip.ID, models.PlanFromTrip(trip))
}

// EnqueuePlan handles POST /v1/plans:enqueue - queue generation on the worker.
func (h *PlansHandler) EnqueuePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.publisher == nil || (h.flags != nil && h.flags.IsAsyncGenerationDisabled(ctx)) {
		response.ServiceUnavailable(w, r, "queued plan generation is unavailable")
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	trip := &tripstore.Trip{
		ID:      tripstore.NewID(),
		OwnerID: GetUserID(ctx),
		Request: req,
		Status:  tripstore.StatusPending,
	}
	if err := h.trips.Save(ctx, trip); err != nil {
		h.logger.Error().Err(err).Str("plan_id", trip.ID).Msg("failed to save pending plan")
		response.InternalError(w, r, "failed to save plan")
		return
	}

	msgID, err := h.publisher.Publish(ctx, worker.NewPlanMessage(trip.ID, trip.OwnerID, req))
	if err != nil {
		h.logger.Error().Err(err).Str("plan_id", trip.ID).Msg("failed to queue plan generation")
		trip.Status = tripstore.StatusFailed
		trip.Error = "queueing failed"
		if saveErr := h.trips.Save(ctx, trip); saveErr != nil {
			h.logger.Warn().Err(saveErr).Str("plan_id", trip.ID).Msg("failed to mark plan as failed")
		}
		response.ServiceUnavailable(w, r, "unable to queue plan generation")
		return
	}

	h.logger.Info().
		Str("plan_id", trip.ID).
		Str("message_id", msgID).
		Str("destination", req.Destination).
		Msg("plan generation queued")

	response.Accepted(w, r, "/v1/plans/"+trip.ID, models.PlanFromTrip(trip))
}

// GetPlan handles GET /v1/plans/{planId} - get a stored plan.
func (h *PlansHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planId")
	if planID == "" {
		response.BadRequest(w, r, "planId is required", nil)
		return
	}
	ctx := r.Context()

	trip, err := h.trips.Get(ctx, planID)
	if errors.Is(err, tripstore.ErrTripNotFound) {
		response.NotFound(w, r, "plan not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("plan_id", planID).Msg("failed to load plan")
		response.InternalError(w, r, "failed to load plan")
		return
	}

	// Plans owned by another user are reported as missing.
	if userID := GetUserID(ctx); trip.OwnerID != "" && userID != "" && trip.OwnerID != userID {
		response.NotFound(w, r, "plan not found")
		return
	}

	response.JSON(w, r, http.StatusOK, models.PlanFromTrip(trip))
}

// decodeRequest reads, normalizes and validates a plan request body. It
// writes the problem response itself and reports false on failure.
func (h *PlansHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (itinerary.PlanRequest, bool) {
	var body models.PlanGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return itinerary.PlanRequest{}, false
	}

	req := body.ToDomain().Normalize(h.defaultCurrency)
	if err := req.Validate(); err != nil {
		h.writeGenerationError(w, r, err)
		return itinerary.PlanRequest{}, false
	}
	return req, true
}

func (h *PlansHandler) writeGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *itinerary.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "validation error", models.FieldErrorsFrom(validationErr.Fields))
	case errors.Is(err, itinerary.ErrInvalidInput):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		h.logger.Debug().Err(err).Msg("plan request cancelled")
	default:
		h.logger.Error().Err(err).Msg("plan generation failed")
		response.GenerationFailed(w, r, "unable to generate a plan right now, please retry")
	}
}
