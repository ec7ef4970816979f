/*
policy.go - Named options that drive classification

PURPOSE:
  Everything the engine would otherwise hardcode lives here as an explicit,
  validated option. Labor-law interpretations differ between sites, so
  the engine refuses to guess: a Policy with a missing or contradictory
  option fails Validate() before any shift is evaluated.

OPTIONS:
  BreakPlacement:
    front        - the first BreakMinutes of the span are unpaid
    back         - the last BreakMinutes of the span are unpaid
    proportional - unpaid minutes are spread evenly across the span

  HolidayNightOnlyBand:
    Band for a non-working-day minute that is at night but not yet over
    the daily threshold. premium_a or premium_b.

  OracleFallback:
    Day classification when the holiday oracle cannot answer.
    working (default) or non_working.

  DailyThresholdMinutes:
    Worked minutes after which the over-threshold premium starts, and the
    baseline short days are measured against for netting. 480 by default.

  NightWindow:
    Clock window attracting the night premium. 22:00-06:00 by default.

SEE ALSO:
  - policies.go: Ready-made policies
  - factory/policy.go: JSON policy definitions
*/
package overtime

import (
	"github.com/warp/overtime-engine/generic"
)

// =============================================================================
// POLICY OPTIONS
// =============================================================================

type BreakPlacement string

const (
	BreakFront        BreakPlacement = "front"
	BreakBack         BreakPlacement = "back"
	BreakProportional BreakPlacement = "proportional"
)

type DayFallback string

const (
	FallbackWorking    DayFallback = "working"
	FallbackNonWorking DayFallback = "non_working"
)

const (
	DefaultThresholdMinutes = 8 * 60
)

// DefaultNightWindow is 22:00 up to (not including) 06:00.
var DefaultNightWindow = generic.ClockWindow{
	Start: generic.MustClockTime(22, 0),
	End:   generic.MustClockTime(6, 0),
}

// Policy is the complete configuration consumed by the evaluator and
// aggregator.
type Policy struct {
	ID   generic.PolicyID
	Name string

	BreakPlacement       BreakPlacement
	HolidayNightOnlyBand Band
	OracleFallback       DayFallback

	DailyThresholdMinutes int
	NightWindow           generic.ClockWindow
}

// Validate rejects missing or contradictory options with a
// *generic.ConfigurationError.
func (p Policy) Validate() error {
	switch p.BreakPlacement {
	case BreakFront, BreakBack, BreakProportional:
	case "":
		return &generic.ConfigurationError{Option: "break_placement", Reason: "missing"}
	default:
		return &generic.ConfigurationError{Option: "break_placement", Reason: "unknown value " + string(p.BreakPlacement)}
	}

	switch p.HolidayNightOnlyBand {
	case BandPremiumA, BandPremiumB:
	default:
		return &generic.ConfigurationError{
			Option: "holiday_night_only_band",
			Reason: "must be premium_a or premium_b, got " + p.HolidayNightOnlyBand.String(),
		}
	}

	switch p.OracleFallback {
	case "", FallbackWorking, FallbackNonWorking:
	default:
		return &generic.ConfigurationError{Option: "oracle_fallback", Reason: "unknown value " + string(p.OracleFallback)}
	}

	if p.DailyThresholdMinutes <= 0 || p.DailyThresholdMinutes >= generic.MinutesPerDay {
		return &generic.ConfigurationError{Option: "daily_threshold_minutes", Reason: "must be between 1 and 1439"}
	}

	if p.NightWindow.IsEmpty() {
		return &generic.ConfigurationError{Option: "night_window", Reason: "start and end must differ"}
	}
	return nil
}

// fallbackNonWorking reports the day classification used when the oracle fails.
func (p Policy) fallbackNonWorking() bool {
	return p.OracleFallback == FallbackNonWorking
}

func (p Policy) fallbackName() string {
	if p.fallbackNonWorking() {
		return string(FallbackNonWorking)
	}
	return string(FallbackWorking)
}
