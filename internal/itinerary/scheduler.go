package itinerary

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Scheduling constants, in minutes since midnight or minutes of duration.
const (
	bufferMinutes    = 15
	minTravelMinutes = 10
	maxStopsPerDay   = 3
	lunchWindowStart = 13 * 60
	lunchWindowEnd   = 15 * 60
	lunchDuration    = 60
	dinnerHour       = 19 * 60
	dinnerDuration   = 75
	lastMinuteOfDay  = 23*60 + 59
)

// pacingProfile holds the per-pacing schedule parameters.
type pacingProfile struct {
	startMinutes    int
	activityMinutes int
}

func profileFor(p Pacing) pacingProfile {
	switch p {
	case PacingRelaxed:
		return pacingProfile{startMinutes: 9 * 60, activityMinutes: 90}
	case PacingFast:
		return pacingProfile{startMinutes: 8 * 60, activityMinutes: 60}
	default:
		return pacingProfile{startMinutes: 8*60 + 30, activityMinutes: 75}
	}
}

// BuildSchedule lays out days of sightseeing starting from center using a
// greedy nearest-neighbour walk over the candidate pools.
//
// Both pools are shared across the whole trip, so a POI is visited at most
// once. Distance ties go to the earlier POI in pool order. The input slices
// are not modified.
func BuildSchedule(
	center GeoPoint,
	attractions, restaurants []CandidatePOI,
	days int,
	pacing Pacing,
	mode TransportMode,
) []DayPlan {
	if days < 1 {
		return nil
	}

	s := scheduler{
		profile:     profileFor(pacing),
		mode:        mode,
		attractions: newPool(attractions),
		restaurants: newPool(restaurants),
	}

	plans := make([]DayPlan, 0, days)
	for day := 1; day <= days; day++ {
		plans = append(plans, s.buildDay(day, center))
	}
	return plans
}

type scheduler struct {
	profile     pacingProfile
	mode        TransportMode
	attractions *pool
	restaurants *pool

	// per-day state
	clock       int
	cursor      GeoPoint
	cursorLabel string
	activities  []Activity
}

func (s *scheduler) buildDay(day int, center GeoPoint) DayPlan {
	s.clock = s.profile.startMinutes
	s.cursor = center
	s.cursorLabel = centerLabel(center)
	s.activities = []Activity{{
		Time:     FormatClock(s.clock),
		Place:    "Wake up",
		Category: ActivityWake,
	}}

	visited := 0
	hadLunch := false
	for visited < maxStopsPerDay {
		idx := s.attractions.nearest(s.cursor)
		if idx < 0 {
			break
		}

		poi := s.attractions.take(idx)
		route := s.legTo(poi)

		s.clock += route.TravelMinutes
		s.activities = append(s.activities, Activity{
			Time:            FormatClock(s.clock),
			Place:           poi.Name,
			Address:         poi.Address,
			Category:        ActivityAttraction,
			DurationMinutes: s.profile.activityMinutes,
			Route:           &route,
			POIID:           poi.ID,
		})
		s.clock += s.profile.activityMinutes + bufferMinutes
		s.moveTo(poi)
		visited++

		if !hadLunch && s.clock >= lunchWindowStart && s.clock < lunchWindowEnd {
			hadLunch = s.addMeal(lunchDuration)
		}
	}

	// A day without sightseeing has no meal stops either.
	if visited > 0 && s.clock < dinnerHour {
		s.addMeal(dinnerDuration)
	}

	s.activities = append(s.activities, Activity{
		Time:     FormatClock(s.clock),
		Place:    "Return to accommodation",
		Category: ActivityReturn,
	})

	return DayPlan{Day: day, Activities: s.activities}
}

// addMeal inserts a stop at the nearest unused restaurant. It reports false
// when the restaurant pool is exhausted.
func (s *scheduler) addMeal(duration int) bool {
	idx := s.restaurants.nearest(s.cursor)
	if idx < 0 {
		return false
	}
	poi := s.restaurants.take(idx)
	route := s.legTo(poi)

	s.clock += route.TravelMinutes
	s.activities = append(s.activities, Activity{
		Time:            FormatClock(s.clock),
		Place:           poi.Name,
		Address:         poi.Address,
		Category:        ActivityRestaurant,
		DurationMinutes: duration,
		Route:           &route,
		LocalFood:       foodTags(poi.Tags),
		POIID:           poi.ID,
	})
	s.clock += duration
	s.moveTo(poi)
	return true
}

func (s *scheduler) legTo(poi CandidatePOI) Route {
	km := HaversineKm(s.cursor, poi.Location)
	return Route{
		Mode:          s.mode.LocalMode(),
		DistanceKm:    math.Round(km*100) / 100,
		TravelMinutes: TravelMinutes(km, s.mode),
		From:          s.cursorLabel,
		To:            poi.Name,
	}
}

func (s *scheduler) moveTo(poi CandidatePOI) {
	s.cursor = poi.Location
	s.cursorLabel = poi.Name
}

// TravelMinutes converts a distance into whole travel minutes for the mode,
// never less than ten.
func TravelMinutes(km float64, mode TransportMode) int {
	minutes := int(math.Round(km / mode.SpeedKmh() * 60))
	if minutes < minTravelMinutes {
		return minTravelMinutes
	}
	return minutes
}

// pool is a candidate list with consumption tracking.
type pool struct {
	items []CandidatePOI
	used  []bool
}

func newPool(items []CandidatePOI) *pool {
	copied := make([]CandidatePOI, len(items))
	copy(copied, items)
	return &pool{items: copied, used: make([]bool, len(copied))}
}

// nearest returns the index of the closest unused item, or -1.
func (p *pool) nearest(from GeoPoint) int {
	best := -1
	bestDist := math.Inf(1)
	for i, item := range p.items {
		if p.used[i] {
			continue
		}
		if d := HaversineKm(from, item.Location); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func (p *pool) take(i int) CandidatePOI {
	p.used[i] = true
	return p.items[i]
}

// FormatClock renders minutes since midnight as HH:MM, clamped to the day.
func FormatClock(minutes int) string {
	if minutes > lastMinuteOfDay {
		minutes = lastMinuteOfDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock parses an HH:MM time into minutes since midnight.
func ParseClock(s string) (int, bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])   //nolint:errcheck // digits guaranteed by pattern
	mins, _ := strconv.Atoi(m[2]) //nolint:errcheck // digits guaranteed by pattern
	return h*60 + mins, true
}

func centerLabel(center GeoPoint) string {
	if center.DisplayName != "" {
		return center.DisplayName
	}
	return "Accommodation"
}

var genericPlaceTags = map[string]bool{
	"restaurant":        true,
	"food":              true,
	"point_of_interest": true,
	"establishment":     true,
	"amenity":           true,
}

func foodTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if !genericPlaceTags[t] {
			out = append(out, t)
		}
	}
	return out
}
