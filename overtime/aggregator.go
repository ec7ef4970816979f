/*
aggregator.go - Period totals and the flexible-work offset

PURPOSE:
  Sums per-shift evaluations over a reporting period and applies netting:
  hours a working day fell short of the daily threshold are paid back out
  of the period's 1.5x hours before overtime is priced.

NETTING:
  adjustedPremiumA = max(0, ΣpremiumA − Σdeficit)
  finalPayable     = adjustedPremiumA×1.5 + ΣpremiumB×2.0 + ΣpremiumC×2.5

  Only the 1.5x band is offset. 2.0x and 2.5x hours are never reduced.
  Netting needs every deficit in the period, so it runs only after all
  evaluations are in; the band sums before it are order-independent.

ROWS:
  Each shift also yields a display row with its weighted equivalent hours,
  standard×1.0 + A×1.5 + B×2.0 + C×2.5. Rows are never netted.

EXAMPLE:
  Shift 1: working day, 6h net            -> deficit 2h
  Shift 2: working day, 8h std + 2h 1.5x  -> premiumA 2h
  adjustedPremiumA = max(0, 2 − 2) = 0    -> payable overtime 0h

SEE ALSO:
  - evaluator.go: Produces the evaluations summed here
  - engine.go: Runs evaluation and aggregation as one pipeline
*/
package overtime

import (
	"sort"

	"github.com/warp/overtime-engine/generic"
)

// =============================================================================
// PERIOD TOTALS
// =============================================================================

// PeriodTotals is the aggregated, netted summary of a period.
type PeriodTotals struct {
	Shifts int

	Standard generic.Amount
	PremiumA generic.Amount
	PremiumB generic.Amount
	PremiumC generic.Amount

	Net     generic.Amount // Σ worked hours
	Deficit generic.Amount // Σ working-day shortfall

	AdjustedPremiumA     generic.Amount
	FinalPayableOvertime generic.Amount

	// Weighted is Σ of the rows' weighted equivalent hours (no netting).
	Weighted generic.Amount

	// Minutes keeps the exact per-band sums the amounts were derived from.
	Minutes        BandMinutes
	DeficitMinutes int
}

// Row is the unadjusted display line for one shift.
type Row struct {
	Date         generic.TimePoint
	Start        generic.ClockTime
	End          generic.ClockTime
	BreakMinutes int
	NonWorking   bool

	Net      generic.Amount
	Standard generic.Amount
	PremiumA generic.Amount
	PremiumB generic.Amount
	PremiumC generic.Amount
	Deficit  generic.Amount
	Weighted generic.Amount

	Warnings []error
}

// Span renders the row's clock range.
func (r Row) Span() string { return r.Start.String() + "-" + r.End.String() }

// NewRow builds the display row for an evaluation.
func NewRow(e ShiftEvaluation) Row {
	return Row{
		Date:         e.Record.Date(),
		Start:        e.Record.Start(),
		End:          e.Record.End(),
		BreakMinutes: e.Record.BreakMinutes(),
		NonWorking:   e.NonWorking,
		Net:          e.NetHours(),
		Standard:     e.Hours(BandStandard),
		PremiumA:     e.Hours(BandPremiumA),
		PremiumB:     e.Hours(BandPremiumB),
		PremiumC:     e.Hours(BandPremiumC),
		Deficit:      e.DeficitHours(),
		Weighted:     e.WeightedHours(),
		Warnings:     e.Warnings,
	}
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator reduces evaluations to PeriodTotals. It is a pure function of
// its input.
type Aggregator struct{}

// Aggregate sums evaluations and applies netting. It fails with a
// *generic.PeriodError when evaluations is empty or holds two shifts for the
// same date; the error names every duplicated date.
func (Aggregator) Aggregate(evals []ShiftEvaluation) (PeriodTotals, []Row, error) {
	if len(evals) == 0 {
		return PeriodTotals{}, nil, &generic.PeriodError{Code: generic.PeriodEmpty}
	}
	if dups := duplicateDates(evals); len(dups) > 0 {
		return PeriodTotals{}, nil, &generic.PeriodError{Code: generic.PeriodDuplicateDates, Dates: dups}
	}

	var (
		minutes BandMinutes
		deficit int
	)
	rows := make([]Row, 0, len(evals))
	for _, e := range evals {
		minutes = minutes.Add(e.Minutes)
		deficit += e.DeficitMinutes
		rows = append(rows, NewRow(e))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	// Barrier: every deficit is known from here on.
	adjustedA := minutes[BandPremiumA] - deficit
	if adjustedA < 0 {
		adjustedA = 0
	}

	totals := PeriodTotals{
		Shifts:               len(evals),
		Standard:             minutes.Hours(BandStandard),
		PremiumA:             minutes.Hours(BandPremiumA),
		PremiumB:             minutes.Hours(BandPremiumB),
		PremiumC:             minutes.Hours(BandPremiumC),
		Net:                  generic.HoursFromMinutes(minutes.Total()),
		Deficit:              generic.HoursFromMinutes(deficit),
		AdjustedPremiumA:     generic.HoursFromMinutes(adjustedA),
		FinalPayableOvertime: weightedHours(0, adjustedA, minutes[BandPremiumB], minutes[BandPremiumC]),
		Weighted:             minutes.Weighted(),
		Minutes:              minutes,
		DeficitMinutes:       deficit,
	}
	return totals, rows, nil
}

func duplicateDates(evals []ShiftEvaluation) []generic.TimePoint {
	seen := make(map[string]int, len(evals))
	var dups []generic.TimePoint
	for _, e := range evals {
		key := e.Record.Date().Key()
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, e.Record.Date())
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].Before(dups[j]) })
	return dups
}
