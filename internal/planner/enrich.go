package planner

import "github.com/tripmate/tripmate/internal/itinerary"

// applyEstimates sets the fields the engine computes itself regardless of
// which tier produced the itinerary.
func applyEstimates(plan *itinerary.GeneratedPlan, req itinerary.PlanRequest, currency string, weather *itinerary.WeatherSnapshot) {
	plan.Persons = req.Persons
	plan.Currency = currency

	plan.CostBreakdown = itinerary.EstimateCost(req.Days, req.Persons, req.Pacing(), req.TransportMode)
	plan.TotalEstimatedCost = plan.CostBreakdown.Total

	plan.PackingList = itinerary.SynthesizePacking(itinerary.PackingInput{
		International: req.International,
		TransportMode: req.TransportMode,
		TripType:      req.TripType,
		Weather:       weather,
	})

	if len(plan.SafetyTips) == 0 {
		plan.SafetyTips = itinerary.SafetyTips(req.TransportMode, weather)
	}
}
