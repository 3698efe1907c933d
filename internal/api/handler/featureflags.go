package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tripmate/tripmate/internal/api/models"
	"github.com/tripmate/tripmate/internal/api/response"
	"github.com/tripmate/tripmate/internal/featureflags"
)

// FlagAdmin reads and updates feature flags. featureflags.Service satisfies it.
type FlagAdmin interface {
	GetAllFlags(ctx context.Context) map[string]*featureflags.Flag
	SetFlags(ctx context.Context, flags []*featureflags.Flag) error
	InvalidateCache()
	Keys() []string
}

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service FlagAdmin
	logger  zerolog.Logger
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service FlagAdmin, logger zerolog.Logger) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service, logger: logger}
}

// ListFeatureFlags handles GET /v1/admin/feature-flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.list(r.Context()))
}

// UpsertFeatureFlags handles PUT /v1/admin/feature-flags - update feature flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var req featureflags.FlagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := h.validate(req); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation error", fieldErrors)
		return
	}

	flags := make([]*featureflags.Flag, 0, len(req.Updates))
	for _, u := range req.Updates {
		flags = append(flags, &featureflags.Flag{Key: u.Key, Value: u.Value})
	}

	ctx := r.Context()
	if err := h.service.SetFlags(ctx, flags); err != nil {
		h.logger.Error().Err(err).Msg("failed to update feature flags")
		response.InternalError(w, r, "failed to update feature flags")
		return
	}

	keys := make([]string, 0, len(flags))
	for _, f := range flags {
		keys = append(keys, f.Key)
	}
	h.logger.Info().
		Strs("keys", keys).
		Str("reason", req.Reason).
		Str("user_id", GetUserID(ctx)).
		Msg("feature flags updated")

	response.JSON(w, r, http.StatusOK, h.list(ctx))
}

// InvalidateCache handles POST /v1/admin/feature-flags/invalidate - drop cached flags.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}

func (h *FeatureFlagsHandler) list(ctx context.Context) featureflags.FlagList {
	flags := h.service.GetAllFlags(ctx)
	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := featureflags.FlagList{Items: make([]featureflags.Flag, 0, len(keys))}
	for _, k := range keys {
		list.Items = append(list.Items, *flags[k])
	}
	return list
}

func (h *FeatureFlagsHandler) validate(req featureflags.FlagUpdateRequest) []models.FieldError {
	if len(req.Updates) == 0 {
		return []models.FieldError{{Field: "updates", Message: "at least one update is required", Code: "REQUIRED"}}
	}

	known := h.service.Keys()
	var errs []models.FieldError
	for i, u := range req.Updates {
		field := fmt.Sprintf("updates[%d].key", i)
		switch {
		case u.Key == "":
			errs = append(errs, models.FieldError{Field: field, Message: "key is required", Code: "REQUIRED"})
		case !slices.Contains(known, u.Key):
			errs = append(errs, models.FieldError{Field: field, Message: "unknown feature flag " + u.Key, Code: "UNKNOWN_FLAG"})
		case u.Value == nil:
			errs = append(errs, models.FieldError{Field: fmt.Sprintf("updates[%d].value", i), Message: "value is required", Code: "REQUIRED"})
		}
	}
	return errs
}
