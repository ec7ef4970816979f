/*
evaluator.go - Per-shift band totals

PURPOSE:
  Walks one shift's worked minutes in chronological order and counts how
  many land in each band. The answer depends only on the record, whether
  its date is a non-working day, and the policy.

CLOSED FORM:
  With front or back placement the worked span is one interval measured in
  minutes from the shift start: [break, elapsed) or [0, elapsed-break).
  Classification can only change where that interval crosses a night-window
  edge or where the worked counter passes the daily threshold, so the
  interval is cut at those offsets and each piece is credited to a single
  band in one step.

  Working day, 14:00-23:30, 30 minutes break at the front:
    worked interval   [30, 570)
    threshold offset  30 + 480 = 510 (22:30)
    night edge        480 (22:00)
    [30,480)   standard   450
    [480,510)  premium_a   30  night, under threshold
    [510,570)  premium_b   60  night and over

  Proportional placement scatters break minutes through the span, so there
  is no single interval; it is evaluated by folding over the minutes, which
  is bounded by one day.

SEE ALSO:
  - classifier.go: The band matrix
  - aggregator.go: Sums evaluations over a period
*/
package overtime

import (
	"sort"

	"github.com/warp/overtime-engine/generic"
)

// =============================================================================
// SHIFT EVALUATION
// =============================================================================

// ShiftEvaluation is the derived result for one record. It is recomputed in
// full whenever the record changes and never patched.
type ShiftEvaluation struct {
	Record     ShiftRecord
	NonWorking bool
	Minutes    BandMinutes

	// DeficitMinutes is how far a working day fell short of the daily
	// threshold. Always zero on non-working days.
	DeficitMinutes int

	// Warnings carries non-fatal problems such as *generic.OracleError.
	Warnings []error
}

func (e ShiftEvaluation) NetMinutes() int               { return e.Minutes.Total() }
func (e ShiftEvaluation) NetHours() generic.Amount      { return generic.HoursFromMinutes(e.NetMinutes()) }
func (e ShiftEvaluation) Hours(b Band) generic.Amount   { return e.Minutes.Hours(b) }
func (e ShiftEvaluation) DeficitHours() generic.Amount  { return generic.HoursFromMinutes(e.DeficitMinutes) }
func (e ShiftEvaluation) WeightedHours() generic.Amount { return e.Minutes.Weighted() }
func (e ShiftEvaluation) HasWarnings() bool             { return len(e.Warnings) > 0 }

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluator computes ShiftEvaluations for one policy and holiday oracle.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	Policy Policy
	Oracle generic.HolidayOracle
}

// NewEvaluator validates the policy and requires an oracle.
func NewEvaluator(p Policy, oracle generic.HolidayOracle) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if oracle == nil {
		return nil, &generic.ConfigurationError{Option: "holiday_oracle", Reason: "missing"}
	}
	return &Evaluator{Policy: p, Oracle: oracle}, nil
}

// Evaluate classifies every worked minute of the record.
func (e *Evaluator) Evaluate(rec ShiftRecord) ShiftEvaluation {
	eval := ShiftEvaluation{Record: rec}

	nonWorking, err := e.Oracle.IsNonWorking(rec.Date())
	if err != nil {
		nonWorking = e.Policy.fallbackNonWorking()
		eval.Warnings = append(eval.Warnings, &generic.OracleError{
			Date:     rec.Date(),
			Fallback: e.Policy.fallbackName(),
			Err:      err,
		})
	}
	eval.NonWorking = nonWorking
	eval.Minutes = Partition(e.Policy, rec, nonWorking)

	if !nonWorking {
		if short := e.Policy.DailyThresholdMinutes - eval.Minutes.Total(); short > 0 {
			eval.DeficitMinutes = short
		}
	}
	return eval
}

// Partition returns the per-band worked minutes of a record for a known day
// classification.
func Partition(p Policy, rec ShiftRecord, nonWorking bool) BandMinutes {
	switch p.BreakPlacement {
	case BreakProportional:
		return walkMinutes(p, rec, nonWorking, breakMask(p, rec))
	case BreakBack:
		return partitionInterval(p, rec, nonWorking, 0, rec.WorkedMinutes())
	default:
		return partitionInterval(p, rec, nonWorking, rec.BreakMinutes(), rec.ElapsedMinutes())
	}
}

// partitionInterval cuts the worked interval [from, to) at night-window edges
// and the threshold crossing, crediting each piece to one band.
func partitionInterval(p Policy, rec ShiftRecord, nonWorking bool, from, to int) BandMinutes {
	overAt := from + p.DailyThresholdMinutes

	cuts := []int{from, to}
	if overAt > from && overAt < to {
		cuts = append(cuts, overAt)
	}
	for _, edge := range []generic.ClockTime{p.NightWindow.Start, p.NightWindow.End} {
		first := (int(edge) - int(rec.Start()) + generic.MinutesPerDay) % generic.MinutesPerDay
		for off := first; off < to; off += generic.MinutesPerDay {
			if off > from {
				cuts = append(cuts, off)
			}
		}
	}
	sort.Ints(cuts)

	var minutes BandMinutes
	for i := 0; i+1 < len(cuts); i++ {
		lo, hi := cuts[i], cuts[i+1]
		if lo == hi {
			continue
		}
		night := p.NightWindow.Contains(rec.Start().Add(lo))
		over := lo >= overAt
		minutes[Classify(p, night, nonWorking, over)] += hi - lo
	}
	return minutes
}

// walkMinutes folds over every elapsed minute. isBreak reports which offsets
// are unpaid. The worked counter only advances on paid minutes.
func walkMinutes(p Policy, rec ShiftRecord, nonWorking bool, isBreak func(offset int) bool) BandMinutes {
	var minutes BandMinutes
	worked := 0
	for off := 0; off < rec.ElapsedMinutes(); off++ {
		if isBreak(off) {
			continue
		}
		worked++
		night := p.NightWindow.Contains(rec.Start().Add(off))
		over := worked > p.DailyThresholdMinutes
		minutes[Classify(p, night, nonWorking, over)]++
	}
	return minutes
}

// breakMask reports which elapsed offsets are unpaid under the policy's
// break placement.
func breakMask(p Policy, rec ShiftRecord) func(offset int) bool {
	b, elapsed := rec.BreakMinutes(), rec.ElapsedMinutes()
	switch p.BreakPlacement {
	case BreakBack:
		worked := elapsed - b
		return func(off int) bool { return off >= worked }
	case BreakProportional:
		// An offset is unpaid whenever the running share of break,
		// b×(off+1)/elapsed, crosses a whole minute: exactly b offsets,
		// evenly spaced.
		return func(off int) bool { return (off+1)*b/elapsed > off*b/elapsed }
	default:
		return func(off int) bool { return off < b }
	}
}
