/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON policy definitions into overtime.Policy values so sites can
  pick their labor-law interpretation without code changes. Policies are
  stored as JSON in the database and posted as JSON to the API.

JSON SCHEMA:
  {
    "id": "kr-labor",
    "name": "Holiday night stacking",
    "break_placement": "front",
    "holiday_night_only_band": "premium_b",
    "oracle_fallback": "working",
    "daily_threshold_minutes": 480,
    "night_start": "22:00",
    "night_end": "06:00"
  }

DEFAULTS:
  Omitted fields take the DefaultPolicy value. A present but unknown value
  is never defaulted: it fails with *generic.ConfigurationError.

USAGE:
  f := factory.NewPolicyFactory()
  policy, err := f.ParsePolicy(jsonString)

  engine := &overtime.Engine{Policy: *policy, Oracle: oracle}

SEE ALSO:
  - overtime/policy.go: Policy type definition and validation
  - overtime/policies.go: Go-based presets
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/overtime"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a policy.
type PolicyJSON struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	BreakPlacement        string `json:"break_placement,omitempty"`         // front, back, proportional
	HolidayNightOnlyBand  string `json:"holiday_night_only_band,omitempty"` // premium_a, premium_b
	OracleFallback        string `json:"oracle_fallback,omitempty"`         // working, non_working
	DailyThresholdMinutes int    `json:"daily_threshold_minutes,omitempty"`
	NightStart            string `json:"night_start,omitempty"` // HH:MM
	NightEnd              string `json:"night_end,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a validated Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (*overtime.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PolicyJSON to a validated Policy.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (*overtime.Policy, error) {
	policy := overtime.DefaultPolicy()
	policy.ID = generic.PolicyID(pj.ID)
	policy.Name = pj.Name

	if pj.ID == "" {
		return nil, &generic.ConfigurationError{Option: "id", Reason: "missing"}
	}
	if pj.BreakPlacement != "" {
		policy.BreakPlacement = overtime.BreakPlacement(strings.ToLower(pj.BreakPlacement))
	}
	if pj.HolidayNightOnlyBand != "" {
		band, err := overtime.ParseBand(strings.ToLower(pj.HolidayNightOnlyBand))
		if err != nil {
			return nil, &generic.ConfigurationError{Option: "holiday_night_only_band", Reason: err.Error()}
		}
		policy.HolidayNightOnlyBand = band
	}
	if pj.OracleFallback != "" {
		policy.OracleFallback = overtime.DayFallback(strings.ToLower(pj.OracleFallback))
	}
	if pj.DailyThresholdMinutes != 0 {
		policy.DailyThresholdMinutes = pj.DailyThresholdMinutes
	}

	if pj.NightStart != "" || pj.NightEnd != "" {
		if pj.NightStart == "" || pj.NightEnd == "" {
			return nil, &generic.ConfigurationError{Option: "night_window", Reason: "night_start and night_end must be set together"}
		}
		start, err := parseClock("night_start", pj.NightStart)
		if err != nil {
			return nil, err
		}
		end, err := parseClock("night_end", pj.NightEnd)
		if err != nil {
			return nil, err
		}
		policy.NightWindow = generic.ClockWindow{Start: start, End: end}
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &policy, nil
}

// ToJSON converts a Policy to PolicyJSON.
func (f *PolicyFactory) ToJSON(policy overtime.Policy) PolicyJSON {
	return PolicyJSON{
		ID:                    string(policy.ID),
		Name:                  policy.Name,
		BreakPlacement:        string(policy.BreakPlacement),
		HolidayNightOnlyBand:  policy.HolidayNightOnlyBand.String(),
		OracleFallback:        string(policy.OracleFallback),
		DailyThresholdMinutes: policy.DailyThresholdMinutes,
		NightStart:            policy.NightWindow.Start.String(),
		NightEnd:              policy.NightWindow.End.String(),
	}
}

// Marshal renders a Policy as the JSON string ParsePolicy reads.
func (f *PolicyFactory) Marshal(policy overtime.Policy) (string, error) {
	b, err := json.Marshal(f.ToJSON(policy))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseClock(option, s string) (generic.ClockTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, &generic.ConfigurationError{Option: option, Reason: "expected HH:MM, got " + s}
	}
	hour, errH := strconv.Atoi(h)
	minute, errM := strconv.Atoi(m)
	if errH != nil || errM != nil {
		return 0, &generic.ConfigurationError{Option: option, Reason: "expected HH:MM, got " + s}
	}
	c, err := generic.NewClockTime(hour, minute)
	if err != nil {
		return 0, &generic.ConfigurationError{Option: option, Reason: err.Error()}
	}
	return c, nil
}
