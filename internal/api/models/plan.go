package models

import (
	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/tripstore"
)

// Budget is the optional spending limit of a plan request.
type Budget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PlanGenerateRequest is the body of POST /v1/plans:generate and /v1/plans:enqueue.
type PlanGenerateRequest struct {
	Destination   string  `json:"destination"`
	Days          int     `json:"days"`
	Persons       int     `json:"persons"`
	Budget        *Budget `json:"budget,omitempty"`
	TripType      string  `json:"tripType"`
	TransportMode string  `json:"transportMode"`
	Preferences   string  `json:"preferences,omitempty"`
	International bool    `json:"international,omitempty"`
}

// ToDomain converts the request body into a plan request.
func (r PlanGenerateRequest) ToDomain() itinerary.PlanRequest {
	req := itinerary.PlanRequest{
		Destination:   r.Destination,
		Days:          r.Days,
		Persons:       r.Persons,
		TripType:      itinerary.TripType(r.TripType),
		TransportMode: itinerary.TransportMode(r.TransportMode),
		Preferences:   r.Preferences,
		International: r.International,
	}
	if r.Budget != nil {
		req.Budget = &itinerary.Budget{Amount: r.Budget.Amount, Currency: r.Budget.Currency}
	}
	return req
}

// Plan is a stored trip as returned by the plan endpoints.
type Plan struct {
	ID        string                   `json:"id"`
	Status    string                   `json:"status"`
	Request   itinerary.PlanRequest    `json:"request"`
	Plan      *itinerary.GeneratedPlan `json:"plan,omitempty"`
	Error     string                   `json:"error,omitempty"`
	CreatedAt Timestamp                `json:"createdAt"`
	UpdatedAt Timestamp                `json:"updatedAt"`
}

// PlanFromTrip converts a stored trip.
func PlanFromTrip(t *tripstore.Trip) Plan {
	return Plan{
		ID:        t.ID,
		Status:    string(t.Status),
		Request:   t.Request,
		Plan:      t.Plan,
		Error:     t.Error,
		CreatedAt: Timestamp(t.CreatedAt),
		UpdatedAt: Timestamp(t.UpdatedAt),
	}
}

// FieldErrorsFrom converts validation field errors.
func FieldErrorsFrom(fields []itinerary.FieldError) []FieldError {
	out := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldError{Field: f.Field, Message: f.Message, Code: f.Code})
	}
	return out
}
