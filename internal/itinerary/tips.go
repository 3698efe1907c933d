package itinerary

var baseTips = []string{
	"Keep digital and paper copies of your travel documents",
	"Share your itinerary with someone at home",
	"Use licensed taxis or official ride-hailing apps at night",
}

var transportTips = map[TransportMode]string{
	TransportFlight:  "Arrive at the airport at least two hours before departure",
	TransportTrain:   "Keep luggage within sight on overnight trains",
	TransportBus:     "Keep valuables in your carry-on rather than the luggage hold",
	TransportCar:     "Check local driving rules and avoid driving after long flights",
	TransportShip:    "Locate muster stations and carry motion sickness remedies",
	TransportWalk:    "Stick to well-lit streets and carry a charged phone",
	TransportTransit: "Watch for pickpockets on crowded buses and trains",
}

// SafetyTips builds general, transport and weather-aware safety advice.
func SafetyTips(mode TransportMode, weather *WeatherSnapshot) []string {
	tips := make([]string, 0, len(baseTips)+5)
	tips = append(tips, baseTips...)
	if tip, ok := transportTips[mode]; ok {
		tips = append(tips, tip)
	}

	if weather == nil {
		return tips
	}
	if weather.TemperatureC >= HotThresholdC {
		tips = append(tips, "Stay hydrated")
	}
	if IsHot(weather) {
		tips = append(tips, "Use sunscreen during midday")
	}
	if IsRainy(weather.Condition) {
		tips = append(tips, "Carry a raincoat or umbrella")
	}
	if IsCold(weather) {
		tips = append(tips, "Dress in warm layers")
	}
	return tips
}
