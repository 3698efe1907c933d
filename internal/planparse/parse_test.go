package planparse_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/planparse"
)

const validPlan = `{
  "destination": "Goa",
  "days": 2,
  "persons": 2,
  "totalEstimatedCost": 18000,
  "currency": "INR",
  "costBreakdown": {"accommodation": 6000, "food": 4000, "transport": 2400, "activities": 4000, "misc": 1600, "total": 18000},
  "itinerary": [
    {"day": 1, "activities": [
      {"time": "09:00", "place": "Hotel", "category": "wake", "durationMinutes": 0, "entryFee": 0},
      {"time": "10:00", "place": "Fort Aguada", "category": "attraction", "durationMinutes": 90, "entryFee": 50,
       "route": {"mode": "drive", "distanceKm": 12.5, "travelMinutes": 25, "from": "Hotel", "to": "Fort Aguada"}},
      {"time": "13:15", "place": "Fisherman's Wharf", "category": "restaurant", "durationMinutes": 60, "entryFee": 0, "localFood": ["xacuti"]}
    ]},
    {"day": 2, "activities": [
      {"time": "9:30", "place": "Basilica of Bom Jesus", "category": "attraction", "durationMinutes": 75, "entryFee": 0}
    ]}
  ],
  "packingList": ["Sunscreen"],
  "safetyTips": ["Stay hydrated"]
}`

func requireFailure(t *testing.T, err error) *planparse.ParseFailure {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, itinerary.ErrInvalidModelOutput))
	var pf *planparse.ParseFailure
	require.ErrorAs(t, err, &pf)
	return pf
}

func TestParse_ValidJSON(t *testing.T) {
	plan, err := planparse.Parse(validPlan)
	require.NoError(t, err)

	assert.Equal(t, "Goa", plan.Destination)
	assert.Equal(t, 2, plan.Days)
	assert.Equal(t, 2, plan.Persons)
	assert.Equal(t, 18000.0, plan.CostBreakdown.Total)
	require.Len(t, plan.Itinerary, 2)
	assert.Len(t, plan.Itinerary[0].Activities, 3)
	assert.Equal(t, "09:30", plan.Itinerary[1].Activities[0].Time, "times are zero padded")
	require.NotNil(t, plan.Itinerary[0].Activities[1].Route)
	assert.Equal(t, 12.5, plan.Itinerary[0].Activities[1].Route.DistanceKm)
	assert.Equal(t, []string{"xacuti"}, plan.Itinerary[0].Activities[2].LocalFood)
}

func TestParse_EmbeddedInProse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"fenced json block", "Here is your plan:\n```json\n" + validPlan + "\n```\nEnjoy your trip!"},
		{"fenced without language", "```\n" + validPlan + "\n```"},
		{"bare object in prose", "Sure! " + validPlan + " Let me know if you need changes {or anything}."},
		{"trailing commas and comments", "```json\n{\n  \"destination\": \"Goa\", // the city\n  \"days\": 1,\n  \"persons\": 1,\n" +
			"  \"itinerary\": [{\"day\": 1, \"activities\": [{\"time\": \"08:00\", \"place\": \"http://beach.example\",},],},],\n}\n```"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := planparse.Parse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, "Goa", plan.Destination)
			assert.Len(t, plan.Itinerary, plan.Days)
		})
	}
}

func TestParse_PrefersFencedBlockOverEarlierBraces(t *testing.T) {
	raw := "Use {placeholders} freely.\n```json\n" + validPlan + "\n```"

	plan, err := planparse.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Goa", plan.Destination)
}

func TestParse_BracesInsideStrings(t *testing.T) {
	raw := `Plan: {"destination": "Goa {north}", "days": 1, "persons": 1, "itinerary": [{"day": 1, "activities": [{"time": "08:00", "place": "Cafe \"}\""}]}]} trailing {`

	plan, err := planparse.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Goa {north}", plan.Destination)
	assert.Equal(t, `Cafe "}"`, plan.Itinerary[0].Activities[0].Place)
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"empty", "   ", ""},
		{"no object", "I cannot help with that.", ""},
		{"unterminated", "```json\n{\"destination\": \"Goa\", \"days\": 1\n```", ""},
		{"missing destination", `{"days": 1, "persons": 1, "itinerary": []}`, "destination"},
		{"blank destination", `{"destination": "  ", "days": 1, "persons": 1, "itinerary": []}`, "destination"},
		{"missing days", `{"destination": "Goa", "persons": 1, "itinerary": []}`, "days"},
		{"days as string", `{"destination": "Goa", "days": "3", "persons": 1, "itinerary": []}`, "days"},
		{"fractional days", `{"destination": "Goa", "days": 1.5, "persons": 1, "itinerary": []}`, "days"},
		{"zero persons", `{"destination": "Goa", "days": 1, "persons": 0, "itinerary": []}`, "persons"},
		{"missing itinerary", `{"destination": "Goa", "days": 1, "persons": 1}`, "itinerary"},
		{"itinerary length mismatch", `{"destination": "Goa", "days": 2, "persons": 1, "itinerary": [{"day": 1, "activities": [{"time": "08:00", "place": "x"}]}]}`, "itinerary"},
		{"wrong day index", `{"destination": "Goa", "days": 1, "persons": 1, "itinerary": [{"day": 2, "activities": [{"time": "08:00", "place": "x"}]}]}`, "itinerary[0].day"},
		{"no activities", `{"destination": "Goa", "days": 1, "persons": 1, "itinerary": [{"day": 1, "activities": []}]}`, "itinerary[0].activities"},
		{"bad time", `{"destination": "Goa", "days": 1, "persons": 1, "itinerary": [{"day": 1, "activities": [{"time": "9am", "place": "x"}]}]}`, "itinerary[0].activities[0].time"},
		{"missing place", `{"destination": "Goa", "days": 1, "persons": 1, "itinerary": [{"day": 1, "activities": [{"time": "08:00"}]}]}`, "itinerary[0].activities[0].place"},
		{"poi repeated across days", `{"destination": "Goa", "days": 2, "persons": 1, "itinerary": [{"day": 1, "activities": [{"time": "10:00", "place": "Fort", "poiId": "p1"}]}, {"day": 2, "activities": [{"time": "09:00", "place": "b", "poiId": "p2"}, {"time": "11:00", "place": "Fort again", "poiId": "p1"}]}]}`, "itinerary[1].activities[1].poiId"},
		{"times go backwards", `{"destination": "Goa", "days": 1, "persons": 1, "itinerary": [{"day": 1, "activities": [{"time": "10:00", "place": "a"}, {"time": "09:00", "place": "b"}]}]}`, "itinerary[0].activities[1].time"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := planparse.Parse(tc.raw)
			assert.Nil(t, plan)
			pf := requireFailure(t, err)
			if tc.field != "" {
				assert.Equal(t, tc.field, pf.Field)
			}
		})
	}
}

func TestParse_TrailingCommaRepairLeavesStringsAlone(t *testing.T) {
	raw := "```json\n" + `{"destination": "Goa, ]", "days": 1, "persons": 1, "itinerary": [` +
		`{"day": 1, "activities": [{"time": "08:00", "place": "Cafe, }", "address": "Lane 4,  ]",},],},],}` + "\n```"

	plan, err := planparse.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Goa, ]", plan.Destination)
	assert.Equal(t, "Cafe, }", plan.Itinerary[0].Activities[0].Place)
	assert.Equal(t, "Lane 4,  ]", plan.Itinerary[0].Activities[0].Address)
}

func TestParse_ActivitiesWithoutPOIIDMayRepeatPlaces(t *testing.T) {
	raw := `{"destination": "Goa", "days": 2, "persons": 1, "itinerary": [` +
		`{"day": 1, "activities": [{"time": "09:00", "place": "Hotel"}, {"time": "10:00", "place": "Fort", "poiId": "p1"}]},` +
		`{"day": 2, "activities": [{"time": "09:00", "place": "Hotel"}, {"time": "10:00", "place": "Beach", "poiId": "p2"}]}]}`

	plan, err := planparse.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "p2", plan.Itinerary[1].Activities[1].POIID)
}

func TestParseValue(t *testing.T) {
	var generic map[string]any
	require.NoError(t, json.Unmarshal([]byte(validPlan), &generic))

	fromMap, err := planparse.ParseValue(generic)
	require.NoError(t, err)
	fromString, err := planparse.ParseValue(validPlan)
	require.NoError(t, err)
	fromBytes, err := planparse.ParseValue([]byte(validPlan))
	require.NoError(t, err)

	assert.Equal(t, fromString, fromMap)
	assert.Equal(t, fromString, fromBytes)

	_, err = planparse.ParseValue(nil)
	requireFailure(t, err)

	_, err = planparse.ParseValue(map[string]any{"destination": "Goa", "days": "two"})
	pf := requireFailure(t, err)
	assert.Equal(t, "days", pf.Field)

	_, err = planparse.ParseValue(&itinerary.GeneratedPlan{Destination: "Goa", Days: 1, Persons: 1})
	pf = requireFailure(t, err)
	assert.Equal(t, "itinerary", pf.Field)
}

func TestParse_RoundTrip(t *testing.T) {
	first, err := planparse.Parse("```json\n" + validPlan + "\n```")
	require.NoError(t, err)

	data, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := planparse.Parse(string(data))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := planparse.ParseValue(second)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestExtractObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, planparse.ExtractObject(`text {"a": {"b": 1}} more }`))
	assert.Equal(t, `{"x": 1}`, planparse.ExtractObject("```json\n{\"x\": 1}\n```"))
	assert.Empty(t, planparse.ExtractObject("no braces here"))
}
