package models

// Enums lists the values accepted by the plan endpoints.
type Enums struct {
	TripTypes      []EnumValue `json:"tripTypes"`
	TransportModes []string    `json:"transportModes"`
	Pacing         []string    `json:"pacing"`
}

// EnumValue is a trip type with the pacing it implies.
type EnumValue struct {
	Value  string `json:"value"`
	Pacing string `json:"pacing"`
}
