// Package featureflags holds the runtime switches operators use to degrade
// plan generation without a redeploy.
package featureflags

import (
	"strconv"
	"time"
)

// Well-known feature flag keys.
const (
	// FlagDisablePrimaryAI skips the primary AI provider tier.
	FlagDisablePrimaryAI = "disable_primary_ai"

	// FlagDisableSecondaryAI skips the secondary AI provider tier.
	FlagDisableSecondaryAI = "disable_secondary_ai"

	// FlagDeterministicOnly skips every AI tier and plans with the route
	// scheduler alone.
	FlagDeterministicOnly = "deterministic_only"

	// FlagDisableAsyncGeneration rejects queued plan generation requests.
	FlagDisableAsyncGeneration = "disable_async_generation"
)

// Flag is one switch and its current value.
type Flag struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FlagList is the admin listing payload.
type FlagList struct {
	Items []Flag `json:"items"`
}

// FlagUpdate sets one flag.
type FlagUpdate struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// FlagUpdateRequest is the admin upsert payload.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates"`
	Reason  string       `json:"reason"`
}

// BoolValue interprets the value as a switch. Numbers are on when non-zero
// and strings are parsed with strconv.ParseBool. Anything else, including a
// nil flag, yields def.
func (f *Flag) BoolValue(def bool) bool {
	if f == nil {
		return def
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// DefaultFlags returns every known flag switched off.
func DefaultFlags() map[string]*Flag {
	flags := make(map[string]*Flag, 4)
	for _, key := range []string{
		FlagDisablePrimaryAI,
		FlagDisableSecondaryAI,
		FlagDeterministicOnly,
		FlagDisableAsyncGeneration,
	} {
		flags[key] = &Flag{Key: key, Value: false}
	}
	return flags
}

func (f *Flag) clone() *Flag {
	c := *f
	return &c
}
