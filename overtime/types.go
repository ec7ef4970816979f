// Package overtime classifies worked minutes into pay multiplier bands and
// aggregates shifts over a reporting period.
//
// A shift flows through three pure stages:
//
//	RawShift --ParseShift--> ShiftRecord --Evaluator--> ShiftEvaluation --Aggregator--> PeriodTotals
//
// Engine wires the stages together, evaluating shifts in parallel and
// collecting rejected records alongside the accepted results.
package overtime

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/overtime-engine/generic"
)

// =============================================================================
// BAND - Pay multiplier tier
// =============================================================================

type Band int

const (
	BandStandard Band = iota // 1.0x
	BandPremiumA             // 1.5x
	BandPremiumB             // 2.0x
	BandPremiumC             // 2.5x

	numBands = 4
)

var (
	bandNames = [numBands]string{"standard", "premium_a", "premium_b", "premium_c"}

	bandMultipliers = [numBands]decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.RequireFromString("1.5"),
		decimal.NewFromInt(2),
		decimal.RequireFromString("2.5"),
	}
)

// Bands lists every band in ascending multiplier order.
func Bands() []Band {
	return []Band{BandStandard, BandPremiumA, BandPremiumB, BandPremiumC}
}

func (b Band) Valid() bool { return b >= BandStandard && b < numBands }

func (b Band) Multiplier() decimal.Decimal {
	if !b.Valid() {
		return decimal.Zero
	}
	return bandMultipliers[b]
}

func (b Band) String() string {
	if !b.Valid() {
		return fmt.Sprintf("band(%d)", int(b))
	}
	return bandNames[b]
}

// ParseBand accepts the band names used in JSON policies.
func ParseBand(s string) (Band, error) {
	for i, name := range bandNames {
		if name == s {
			return Band(i), nil
		}
	}
	return 0, fmt.Errorf("unknown band %q", s)
}

// =============================================================================
// BAND MINUTES - Whole minutes accumulated per band
// =============================================================================

// BandMinutes counts worked minutes per band. Counting whole minutes keeps
// every sum exact; hours are derived only when reported.
type BandMinutes [numBands]int

func (m BandMinutes) Total() int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func (m BandMinutes) Add(o BandMinutes) BandMinutes {
	for i := range m {
		m[i] += o[i]
	}
	return m
}

// Hours returns the hours accumulated in one band.
func (m BandMinutes) Hours(b Band) generic.Amount {
	return generic.HoursFromMinutes(m[b])
}

// Weighted returns Σ minutes×multiplier, converted to hours.
func (m BandMinutes) Weighted() generic.Amount {
	return weightedHours(m[BandStandard], m[BandPremiumA], m[BandPremiumB], m[BandPremiumC])
}

func weightedHours(standard, premiumA, premiumB, premiumC int) generic.Amount {
	weighted := decimal.NewFromInt(int64(standard)).Mul(BandStandard.Multiplier()).
		Add(decimal.NewFromInt(int64(premiumA)).Mul(BandPremiumA.Multiplier())).
		Add(decimal.NewFromInt(int64(premiumB)).Mul(BandPremiumB.Multiplier())).
		Add(decimal.NewFromInt(int64(premiumC)).Mul(BandPremiumC.Multiplier()))
	return generic.Amount{Value: weighted.Div(decimal.NewFromInt(60)), Unit: generic.UnitHours}
}
