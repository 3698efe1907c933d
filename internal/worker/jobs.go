package worker

import (
	"errors"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// Job types carried in the job_type field of a message.
const (
	JobPlanGenerate = "plan_generate"
	JobPrewarm      = "prewarm"
)

// ErrPermanent marks a message that will never succeed on redelivery.
// Such messages are acknowledged and dropped.
var ErrPermanent = errors.New("permanent job failure")

// Message is the JSON payload of a job message.
type Message struct {
	JobType string `json:"job_type"`

	// Plan generation.
	PlanID  string                 `json:"plan_id,omitempty"`
	OwnerID string                 `json:"owner_id,omitempty"`
	Request *itinerary.PlanRequest `json:"request,omitempty"`

	// Prewarm. Empty means the configured targets.
	Destinations []string `json:"destinations,omitempty"`
}

// NewPlanMessage builds a plan generation message.
func NewPlanMessage(planID, ownerID string, req itinerary.PlanRequest) Message {
	return Message{
		JobType: JobPlanGenerate,
		PlanID:  planID,
		OwnerID: ownerID,
		Request: &req,
	}
}
