package itinerary

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Request limits.
const (
	MaxDays              = 30
	MaxPersons           = 50
	MaxDestinationLength = 200
	MaxPreferencesLength = 1000
)

// Request defaults applied by Normalize.
const (
	DefaultTripType      = TripTypeCultural
	DefaultTransportMode = TransportFlight
	DefaultCurrency      = "INR"
)

// Normalize returns a copy of the request with whitespace trimmed, enums
// lower-cased and defaults filled in. The plan currency is taken from the
// budget when present, otherwise defaultCurrency.
func (r PlanRequest) Normalize(defaultCurrency string) PlanRequest {
	out := r
	out.Destination = collapseSpaces(r.Destination)
	out.Preferences = collapseSpaces(r.Preferences)
	out.TripType = TripType(strings.ToLower(strings.TrimSpace(string(r.TripType))))
	out.TransportMode = TransportMode(strings.ToLower(strings.TrimSpace(string(r.TransportMode))))

	if out.Persons == 0 {
		out.Persons = 1
	}
	if out.TripType == "" {
		out.TripType = DefaultTripType
	}
	if out.TransportMode == "" {
		out.TransportMode = DefaultTransportMode
	}

	if defaultCurrency == "" {
		defaultCurrency = DefaultCurrency
	}
	if r.Budget != nil {
		b := *r.Budget
		b.Currency = strings.ToUpper(strings.TrimSpace(b.Currency))
		if b.Currency == "" {
			b.Currency = strings.ToUpper(defaultCurrency)
		}
		out.Budget = &b
	}

	return out
}

// Currency returns the currency plans for this request are priced in.
func (r PlanRequest) Currency(defaultCurrency string) string {
	if r.Budget != nil && r.Budget.Currency != "" {
		return r.Budget.Currency
	}
	if defaultCurrency == "" {
		return DefaultCurrency
	}
	return strings.ToUpper(defaultCurrency)
}

// Validate checks the request and returns a *ValidationError listing every
// offending field. Call it on a normalized request.
func (r PlanRequest) Validate() error {
	var fields []FieldError

	switch {
	case r.Destination == "":
		fields = append(fields, FieldError{Field: "destination", Message: "destination is required", Code: "REQUIRED"})
	case len(r.Destination) > MaxDestinationLength:
		fields = append(fields, FieldError{Field: "destination", Message: "destination is too long", Code: "TOO_LONG"})
	}

	if r.Days < 1 || r.Days > MaxDays {
		fields = append(fields, FieldError{Field: "days", Message: "days must be between 1 and 30", Code: "OUT_OF_RANGE"})
	}
	if r.Persons < 1 || r.Persons > MaxPersons {
		fields = append(fields, FieldError{Field: "persons", Message: "persons must be between 1 and 50", Code: "OUT_OF_RANGE"})
	}
	if !r.TripType.Valid() {
		fields = append(fields, FieldError{Field: "tripType", Message: "unsupported trip type", Code: "INVALID_ENUM"})
	}
	if !r.TransportMode.Valid() {
		fields = append(fields, FieldError{Field: "transportMode", Message: "unsupported transport mode", Code: "INVALID_ENUM"})
	}
	if r.Budget != nil && r.Budget.Amount < 0 {
		fields = append(fields, FieldError{Field: "budget.amount", Message: "budget must not be negative", Code: "OUT_OF_RANGE"})
	}
	if len(r.Preferences) > MaxPreferencesLength {
		fields = append(fields, FieldError{Field: "preferences", Message: "preferences are too long", Code: "TOO_LONG"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type canonicalRequest struct {
	Destination   string   `json:"d"`
	Days          int      `json:"n"`
	Persons       int      `json:"p"`
	BudgetAmount  *float64 `json:"b,omitempty"`
	Currency      string   `json:"c"`
	TripType      string   `json:"t"`
	TransportMode string   `json:"m"`
	Preferences   string   `json:"pr"`
	International bool     `json:"i"`
}

// CanonicalKey returns the deduplication and cache key for a normalized
// request. Requests that differ only in destination case or spacing share a key.
func (r PlanRequest) CanonicalKey(defaultCurrency string) string {
	c := canonicalRequest{
		Destination:   strings.ToLower(r.Destination),
		Days:          r.Days,
		Persons:       r.Persons,
		Currency:      r.Currency(defaultCurrency),
		TripType:      string(r.TripType),
		TransportMode: string(r.TransportMode),
		Preferences:   r.Preferences,
		International: r.International,
	}
	if r.Budget != nil {
		amount := r.Budget.Amount
		c.BudgetAmount = &amount
	}

	// Marshalling a struct of scalars cannot fail.
	data, _ := json.Marshal(c) //nolint:errcheck // see above
	sum := sha256.Sum256(data)
	return "plan:" + hex.EncodeToString(sum[:])
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
