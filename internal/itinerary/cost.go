package itinerary

import "math"

// miscRate is the share of the pre-misc total added for incidentals.
const miscRate = 0.05

// dailyRates are per-person, per-day amounts in the plan currency.
type dailyRates struct {
	Food          float64
	Transport     float64
	Activities    float64
	Accommodation float64
}

func ratesFor(pacing Pacing, mode TransportMode) dailyRates {
	var r dailyRates

	switch pacing {
	case PacingRelaxed:
		r.Food, r.Activities, r.Accommodation = 1200, 800, 1500
	case PacingFast:
		r.Food, r.Activities, r.Accommodation = 900, 1200, 1000
	default:
		r.Food, r.Activities, r.Accommodation = 1000, 1000, 1200
	}

	switch mode {
	case TransportWalk:
		r.Transport = 200
	case TransportTransit:
		r.Transport = 400
	default:
		r.Transport = 600
	}

	return r
}

// EstimateCost returns the cost breakdown for a party over a number of days.
// Total always equals the sum of the other fields.
func EstimateCost(days, persons int, pacing Pacing, mode TransportMode) CostBreakdown {
	rates := ratesFor(pacing, mode)
	units := float64(days * persons)

	b := CostBreakdown{
		Accommodation: rates.Accommodation * units,
		Food:          rates.Food * units,
		Transport:     rates.Transport * units,
		Activities:    rates.Activities * units,
	}
	preMisc := b.Accommodation + b.Food + b.Transport + b.Activities
	b.Misc = math.Round(preMisc * miscRate)
	b.Total = preMisc + b.Misc
	return b
}
