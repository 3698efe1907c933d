// Package planparse turns untrusted provider output into a GeneratedPlan.
// Nothing is coerced: missing or mistyped required fields are rejected.
package planparse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// ParseFailure describes why provider output was rejected.
type ParseFailure struct {
	Reason string
	Field  string
}

func (e *ParseFailure) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", itinerary.ErrInvalidModelOutput, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", itinerary.ErrInvalidModelOutput, e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, itinerary.ErrInvalidModelOutput) hold.
func (e *ParseFailure) Unwrap() error {
	return itinerary.ErrInvalidModelOutput
}

func fail(field, format string, args ...any) *ParseFailure {
	return &ParseFailure{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// wirePlan mirrors GeneratedPlan with pointers on required fields so absence
// can be told apart from zero values.
type wirePlan struct {
	Destination        *string                  `json:"destination"`
	Days               *int                     `json:"days"`
	Persons            *int                     `json:"persons"`
	TotalEstimatedCost float64                  `json:"totalEstimatedCost"`
	Currency           string                   `json:"currency"`
	CostBreakdown      *itinerary.CostBreakdown `json:"costBreakdown"`
	Itinerary          *[]wireDay               `json:"itinerary"`
	PackingList        []string                 `json:"packingList"`
	SafetyTips         []string                 `json:"safetyTips"`
	Provenance         string                   `json:"provenance"`
}

type wireDay struct {
	Day        *int            `json:"day"`
	Activities *[]wireActivity `json:"activities"`
}

type wireActivity struct {
	Time            *string          `json:"time"`
	Place           *string          `json:"place"`
	Address         string           `json:"address"`
	Category        string           `json:"category"`
	DurationMinutes int              `json:"durationMinutes"`
	EntryFee        float64          `json:"entryFee"`
	Route           *itinerary.Route `json:"route"`
	LocalFood       []string         `json:"localFood"`
	POIID           string           `json:"poiId"`
}

// Parse decodes raw provider text into a plan. Valid JSON is decoded as is;
// otherwise the first fenced block or brace-balanced object in the text is
// cleaned of comments and trailing commas and decoded instead.
func Parse(raw string) (*itinerary.GeneratedPlan, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fail("", "empty output")
	}

	if json.Valid([]byte(text)) {
		return decode([]byte(text))
	}

	candidate := ExtractObject(text)
	if candidate == "" {
		return nil, fail("", "no JSON object found")
	}
	cleaned := cleanJSON(candidate)
	if !json.Valid([]byte(cleaned)) {
		return nil, fail("", "malformed JSON object")
	}
	return decode([]byte(cleaned))
}

// ParseValue accepts output a provider SDK has already decoded: a string,
// raw bytes, a generic JSON object, or a plan value.
func ParseValue(v any) (*itinerary.GeneratedPlan, error) {
	switch val := v.(type) {
	case nil:
		return nil, fail("", "empty output")
	case string:
		return Parse(val)
	case []byte:
		return Parse(string(val))
	case json.RawMessage:
		return Parse(string(val))
	case *itinerary.GeneratedPlan:
		if val == nil {
			return nil, fail("", "empty output")
		}
		return ParseValue(*val)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fail("", "value is not JSON encodable: %v", err)
	}
	return decode(data)
}

func decode(data []byte) (*itinerary.GeneratedPlan, error) {
	var w wirePlan
	if err := json.Unmarshal(data, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fail(typeErr.Field, "expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		return nil, fail("", "decode: %v", err)
	}
	return w.toPlan()
}

func (w *wirePlan) toPlan() (*itinerary.GeneratedPlan, error) {
	if w.Destination == nil || strings.TrimSpace(*w.Destination) == "" {
		return nil, fail("destination", "required")
	}
	if w.Days == nil {
		return nil, fail("days", "required")
	}
	if *w.Days < 1 {
		return nil, fail("days", "must be at least 1")
	}
	if w.Persons == nil {
		return nil, fail("persons", "required")
	}
	if *w.Persons < 1 {
		return nil, fail("persons", "must be at least 1")
	}
	if w.Itinerary == nil {
		return nil, fail("itinerary", "required")
	}
	if len(*w.Itinerary) != *w.Days {
		return nil, fail("itinerary", "has %d days, expected %d", len(*w.Itinerary), *w.Days)
	}

	plan := &itinerary.GeneratedPlan{
		Destination:        strings.TrimSpace(*w.Destination),
		Days:               *w.Days,
		Persons:            *w.Persons,
		TotalEstimatedCost: w.TotalEstimatedCost,
		Currency:           w.Currency,
		Itinerary:          make([]itinerary.DayPlan, 0, *w.Days),
		PackingList:        w.PackingList,
		SafetyTips:         w.SafetyTips,
		Provenance:         w.Provenance,
	}
	if w.CostBreakdown != nil {
		plan.CostBreakdown = *w.CostBreakdown
	}

	// A POI may appear in at most one activity across the whole plan.
	seenPOIs := make(map[string]bool)
	for i, wd := range *w.Itinerary {
		day, err := wd.toDay(i)
		if err != nil {
			return nil, err
		}
		for j, a := range day.Activities {
			if a.POIID == "" {
				continue
			}
			if seenPOIs[a.POIID] {
				return nil, fail(fmt.Sprintf("itinerary[%d].activities[%d].poiId", i, j), "duplicate")
			}
			seenPOIs[a.POIID] = true
		}
		plan.Itinerary = append(plan.Itinerary, day)
	}
	return plan, nil
}

func (wd wireDay) toDay(i int) (itinerary.DayPlan, error) {
	field := fmt.Sprintf("itinerary[%d]", i)
	if wd.Day == nil {
		return itinerary.DayPlan{}, fail(field+".day", "required")
	}
	if *wd.Day != i+1 {
		return itinerary.DayPlan{}, fail(field+".day", "is %d, expected %d", *wd.Day, i+1)
	}
	if wd.Activities == nil || len(*wd.Activities) == 0 {
		return itinerary.DayPlan{}, fail(field+".activities", "required")
	}

	day := itinerary.DayPlan{Day: i + 1, Activities: make([]itinerary.Activity, 0, len(*wd.Activities))}
	prev := -1
	for j, wa := range *wd.Activities {
		af := fmt.Sprintf("%s.activities[%d]", field, j)
		if wa.Time == nil {
			return itinerary.DayPlan{}, fail(af+".time", "required")
		}
		minutes, ok := itinerary.ParseClock(strings.TrimSpace(*wa.Time))
		if !ok {
			return itinerary.DayPlan{}, fail(af+".time", "%q is not HH:MM", *wa.Time)
		}
		if minutes < prev {
			return itinerary.DayPlan{}, fail(af+".time", "earlier than the previous activity")
		}
		prev = minutes
		if wa.Place == nil || strings.TrimSpace(*wa.Place) == "" {
			return itinerary.DayPlan{}, fail(af+".place", "required")
		}

		a := itinerary.Activity{
			Time:            itinerary.FormatClock(minutes),
			Place:           strings.TrimSpace(*wa.Place),
			Address:         wa.Address,
			Category:        wa.Category,
			DurationMinutes: wa.DurationMinutes,
			EntryFee:        wa.EntryFee,
			Route:           wa.Route,
			POIID:           wa.POIID,
		}
		if len(wa.LocalFood) > 0 {
			a.LocalFood = wa.LocalFood
		}
		day.Activities = append(day.Activities, a)
	}
	return day, nil
}
