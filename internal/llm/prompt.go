package llm

import (
	"fmt"
	"strings"

	"github.com/tripmate/tripmate/internal/itinerary"
)

const systemInstruction = "You are an experienced travel planner. " +
	"Respond with a single JSON object and nothing else. No markdown, no comments."

const planSchema = `{
  "destination": "string",
  "days": 2,
  "persons": 1,
  "totalEstimatedCost": 0,
  "currency": "INR",
  "itinerary": [
    {
      "day": 1,
      "activities": [
        {"time": "08:30", "place": "Hotel", "category": "wake", "durationMinutes": 0},
        {"time": "09:15", "place": "string", "address": "string", "category": "attraction", "durationMinutes": 75, "entryFee": 0},
        {"time": "13:00", "place": "string", "category": "restaurant", "durationMinutes": 60, "localFood": ["string"]},
        {"time": "21:00", "place": "Hotel", "category": "return", "durationMinutes": 0}
      ]
    }
  ],
  "safetyTips": ["string"]
}`

// BuildPrompt renders the generation prompt for a normalized request.
func BuildPrompt(req itinerary.PlanRequest, currency string) Prompt {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan a %d-day trip to %s for %d %s.\n", req.Days, req.Destination, req.Persons, plural(req.Persons, "person", "people"))
	fmt.Fprintf(&b, "Trip style: %s (%s pace). Getting around by: %s.\n", req.TripType, req.Pacing(), req.TransportMode)
	if req.Budget != nil && req.Budget.Amount > 0 {
		fmt.Fprintf(&b, "Total budget: %.0f %s.\n", req.Budget.Amount, currency)
	}
	if req.International {
		b.WriteString("This is an international trip.\n")
	}
	if req.Preferences != "" {
		fmt.Fprintf(&b, "Traveller preferences: %s\n", req.Preferences)
	}

	fmt.Fprintf(&b, "\nSchema (example, match keys exactly):\n%s\n", planSchema)

	b.WriteString("\nHard constraints:\n")
	fmt.Fprintf(&b, "- \"destination\" is %q and \"days\" is %d.\n", req.Destination, req.Days)
	fmt.Fprintf(&b, "- Exactly %d entries in \"itinerary\", with day = 1..%d and no gaps.\n", req.Days, req.Days)
	b.WriteString("- Every activity has a \"time\" formatted HH:MM (24h) and a \"place\".\n")
	b.WriteString("- Times within a day never go backwards.\n")
	b.WriteString("- Use real, named places at the destination. Costs are in " + currency + ".\n")
	b.WriteString("\nReturn JSON only.")

	return Prompt{System: systemInstruction, User: b.String()}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
