// Package handler provides HTTP handlers for the TripMate API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/tripmate/tripmate/internal/api/models"
	"github.com/tripmate/tripmate/internal/api/response"
	"github.com/tripmate/tripmate/internal/featureflags"
	"github.com/tripmate/tripmate/internal/provider/resilience"
)

// readyTimeout bounds dependency checks on the readiness and status endpoints.
const readyTimeout = 2 * time.Second

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderHealthSource reports outbound provider health.
type ProviderHealthSource interface {
	GetAllHealth() []*resilience.ProviderHealth
}

// GenerationStatus reports the generation tiers and the requests in flight.
type GenerationStatus interface {
	Providers() []string
	InFlight() []string
}

// FlagReader returns the current feature flags.
type FlagReader interface {
	GetAllFlags(ctx context.Context) map[string]*featureflags.Flag
}

// OpsConfig holds the dependencies of the ops endpoints. Nil dependencies
// are left out of the reports.
type OpsConfig struct {
	Version   string
	BuildTime string
	Store     Pinger
	Providers ProviderHealthSource
	Planner   GenerationStatus
	Flags     FlagReader
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - the trip store must answer a ping.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	store := h.storeStatus(r.Context())
	health := models.Health{
		Status: store.Status,
		Time:   models.Timestamp(time.Now()),
	}
	if store.Detail != nil {
		health.Details = map[string]any{"tripStore": *store.Detail}
	}

	status := http.StatusOK
	if store.Status != models.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := h.storeStatus(ctx)

	status := models.SystemStatus{
		Status:           models.HealthStatusOK,
		Time:             models.Timestamp(time.Now()),
		Subsystems:       []models.SubsystemStatus{store},
		Providers:        []models.ProviderStatus{},
		GenerationTiers:  []string{},
		InFlightRequests: []string{},
	}

	if h.cfg.Providers != nil {
		for _, ph := range h.cfg.Providers.GetAllHealth() {
			status.Providers = append(status.Providers, providerStatus(ph))
		}
	}
	if h.cfg.Planner != nil {
		status.GenerationTiers = append(status.GenerationTiers, h.cfg.Planner.Providers()...)
		status.InFlightRequests = append(status.InFlightRequests, h.cfg.Planner.InFlight()...)
	}
	if h.cfg.Flags != nil {
		status.ActiveDegradationFlags = activeFlags(h.cfg.Flags.GetAllFlags(ctx))
	}

	for _, p := range status.Providers {
		if p.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusDegraded
		}
	}
	if len(status.ActiveDegradationFlags) > 0 {
		status.Status = models.HealthStatusDegraded
	}
	if store.Status == models.HealthStatusFail {
		status.Status = models.HealthStatusFail
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) storeStatus(ctx context.Context) models.SubsystemStatus {
	st := models.SubsystemStatus{Name: "trip-store", Status: models.HealthStatusOK}
	if h.cfg.Store == nil {
		return st
	}

	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := h.cfg.Store.Ping(ctx); err != nil {
		detail := err.Error()
		st.Status = models.HealthStatusFail
		st.Detail = &detail
	}
	return st
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:     ph.Name,
		CircuitState: ph.CircuitState.String(),
	}
	switch {
	case ph.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	default:
		ps.Status = models.HealthStatusOK
	}
	ps.LastSuccessAt = models.TimestampPtr(ph.LastSuccessAt)
	ps.LastFailureAt = models.TimestampPtr(ph.LastFailureAt)
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}

// activeFlags returns the keys of truthy boolean flags, sorted.
func activeFlags(flags map[string]*featureflags.Flag) []string {
	var active []string
	for key, flag := range flags {
		if flag.BoolValue(false) {
			active = append(active, key)
		}
	}
	sort.Strings(active)
	return active
}
