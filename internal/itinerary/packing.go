package itinerary

import "strings"

// MaxPackingItems caps the length of a packing list.
const MaxPackingItems = 15

// Weather thresholds used by packing and safety tips.
const (
	ColdThresholdC   = 10.0
	HotThresholdC    = 30.0
	HumidThresholdPc = 70.0
)

// PackingInput carries the trip attributes the packing list depends on.
type PackingInput struct {
	International bool
	TransportMode TransportMode
	TripType      TripType
	Weather       *WeatherSnapshot
}

var (
	basePacking = []string{"Travel documents", "Phone charger", "Toothbrush", "First-aid kit"}

	internationalPacking = []string{"Passport", "Visa documents", "Universal power adapter"}

	rainPacking  = []string{"Umbrella", "Raincoat", "Waterproof shoes"}
	coldPacking  = []string{"Warm jacket", "Thermal layers", "Gloves"}
	hotPacking   = []string{"Sunscreen", "Sunglasses", "Sun hat"}
	humidPacking = []string{"Insect repellent"}

	transportPacking = map[TransportMode][]string{
		TransportFlight:  {"Neck pillow", "Earplugs"},
		TransportTrain:   {"Snacks", "Neck pillow"},
		TransportBus:     {"Snacks", "Neck pillow"},
		TransportCar:     {"Driving license", "Car phone mount"},
		TransportShip:    {"Motion sickness tablets", "Light windbreaker"},
		TransportWalk:    {"Comfortable walking shoes", "Water bottle"},
		TransportTransit: {"Transit card", "Comfortable walking shoes"},
	}

	stylePacking = map[TripType][]string{
		TripTypeAdventure: {"Hiking boots", "Daypack", "Water bottle", "Headlamp"},
		TripTypeRelaxed:   {"Swimwear", "Book", "Flip-flops"},
		TripTypeCultural:  {"Modest clothing", "Camera", "Guidebook"},
		TripTypeCulinary:  {"Antacids", "Reusable cutlery", "Food journal"},
	}
)

// SynthesizePacking builds the packing list for a trip. Items are assembled
// as base, international, weather, transport and style groups, deduplicated
// case-insensitively and truncated to MaxPackingItems.
func SynthesizePacking(in PackingInput) []string {
	groups := [][]string{basePacking}
	if in.International {
		groups = append(groups, internationalPacking)
	}
	if w := in.Weather; w != nil {
		if IsRainy(w.Condition) {
			groups = append(groups, rainPacking)
		}
		if IsCold(w) {
			groups = append(groups, coldPacking)
		}
		if IsHot(w) {
			groups = append(groups, hotPacking)
		}
		if w.Humidity >= HumidThresholdPc {
			groups = append(groups, humidPacking)
		}
	}
	groups = append(groups, transportPacking[in.TransportMode], stylePacking[in.TripType])

	return dedupeItems(groups, MaxPackingItems)
}

// IsRainy reports whether a condition label describes precipitation other than snow.
func IsRainy(condition string) bool {
	c := strings.ToLower(condition)
	return strings.Contains(c, "rain") || strings.Contains(c, "shower") ||
		strings.Contains(c, "drizzle") || strings.Contains(c, "thunder")
}

// IsCold reports whether the weather calls for warm clothing.
func IsCold(w *WeatherSnapshot) bool {
	return w.TemperatureC <= ColdThresholdC || strings.Contains(strings.ToLower(w.Condition), "snow")
}

// IsHot reports whether the weather calls for sun protection.
func IsHot(w *WeatherSnapshot) bool {
	c := strings.ToLower(w.Condition)
	return w.TemperatureC >= HotThresholdC || strings.Contains(c, "sunny") || strings.Contains(c, "clear")
}

func dedupeItems(groups [][]string, limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, limit)
	for _, group := range groups {
		for _, item := range group {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
