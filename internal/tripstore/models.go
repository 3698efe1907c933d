// Package tripstore persists generated plans for later retrieval.
package tripstore

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// ErrTripNotFound is returned when a trip does not exist.
var ErrTripNotFound = errors.New("trip not found")

// Status is the generation state of a stored trip.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Trip is a plan request and, once generated, its plan.
type Trip struct {
	ID        string                   `json:"id"`
	OwnerID   string                   `json:"ownerId,omitempty"`
	Request   itinerary.PlanRequest    `json:"request"`
	Plan      *itinerary.GeneratedPlan `json:"plan,omitempty"`
	Status    Status                   `json:"status"`
	Error     string                   `json:"error,omitempty"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// NewID returns a new trip identifier.
func NewID() string {
	return "plan_" + uuid.NewString()
}
