package overtime

import "github.com/warp/overtime-engine/generic"

// =============================================================================
// COMMON POLICIES
// =============================================================================

// DefaultPolicy front-loads breaks and pays a non-working-day night minute
// under the threshold at the baseline holiday rate (1.5x).
func DefaultPolicy() Policy {
	return Policy{
		ID:                    "default",
		Name:                  "Default overtime",
		BreakPlacement:        BreakFront,
		HolidayNightOnlyBand:  BandPremiumA,
		OracleFallback:        FallbackWorking,
		DailyThresholdMinutes: DefaultThresholdMinutes,
		NightWindow:           DefaultNightWindow,
	}
}

// KoreanLaborPolicy stacks the night premium on the holiday premium, so a
// holiday night minute under the threshold pays 2.0x.
func KoreanLaborPolicy() Policy {
	p := DefaultPolicy()
	p.ID = "kr-labor"
	p.Name = "Holiday night stacking"
	p.HolidayNightOnlyBand = BandPremiumB
	return p
}

// ProportionalBreakPolicy spreads unpaid break minutes across the span.
func ProportionalBreakPolicy() Policy {
	p := DefaultPolicy()
	p.ID = "proportional-break"
	p.Name = "Proportional break"
	p.BreakPlacement = BreakProportional
	return p
}

// Presets lists the built-in policies by ID.
func Presets() map[generic.PolicyID]Policy {
	presets := make(map[generic.PolicyID]Policy)
	for _, p := range []Policy{DefaultPolicy(), KoreanLaborPolicy(), ProportionalBreakPolicy()} {
		presets[p.ID] = p
	}
	return presets
}
