package handler

import (
	"net/http"

	"github.com/tripmate/tripmate/internal/api/models"
	"github.com/tripmate/tripmate/internal/api/response"
	"github.com/tripmate/tripmate/internal/itinerary"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct {
	enums models.Enums
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	enums := models.Enums{
		TripTypes:      make([]models.EnumValue, 0, len(itinerary.TripTypes)),
		TransportModes: make([]string, 0, len(itinerary.TransportModes)),
		Pacing:         make([]string, 0, len(itinerary.Pacings)),
	}
	for _, t := range itinerary.TripTypes {
		enums.TripTypes = append(enums.TripTypes, models.EnumValue{
			Value:  string(t),
			Pacing: string(itinerary.PacingFor(t)),
		})
	}
	for _, m := range itinerary.TransportModes {
		enums.TransportModes = append(enums.TransportModes, string(m))
	}
	for _, p := range itinerary.Pacings {
		enums.Pacing = append(enums.Pacing, string(p))
	}
	return &MetadataHandler{enums: enums}
}

// GetEnums handles GET /v1/metadata/enums - get enum values used by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.enums)
}
