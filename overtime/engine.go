package overtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/workerpool"
)

// =============================================================================
// REPORT
// =============================================================================

// Rejection records a raw tuple that failed parsing. Rejected tuples never
// reach evaluation; the rest of the batch is unaffected.
type Rejection struct {
	Index int
	Raw   RawShift
	Err   error
}

// Report is the outcome of one engine run.
type Report struct {
	ID     string
	Policy Policy
	Period generic.Period

	Rows        []Row
	Rejected    []Rejection
	Totals      PeriodTotals
	Evaluations []ShiftEvaluation
}

// Warnings collects the per-shift warnings in row order.
func (r *Report) Warnings() []error {
	var out []error
	for _, row := range r.Rows {
		out = append(out, row.Warnings...)
	}
	return out
}

// Records returns the accepted records in evaluation order.
func (r *Report) Records() []ShiftRecord {
	recs := make([]ShiftRecord, len(r.Evaluations))
	for i, e := range r.Evaluations {
		recs[i] = e.Record
	}
	return recs
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs parse, evaluate and aggregate as one batch. Pool and Logger are
// optional: without a pool shifts are evaluated sequentially.
type Engine struct {
	Policy Policy
	Oracle generic.HolidayOracle
	Pool   *workerpool.WorkerPool
	Logger *log.Logger
}

// Run parses raws, evaluates the accepted records and aggregates them.
//
// A *generic.ConfigurationError aborts before any record is touched. Parse
// failures are collected in Report.Rejected. A *generic.PeriodError is
// returned together with the report so the caller can still show what was
// rejected.
func (e *Engine) Run(ctx context.Context, raws []RawShift, opts ParseOptions) (*Report, error) {
	evaluator, err := NewEvaluator(e.Policy, e.Oracle)
	if err != nil {
		return nil, err
	}

	var (
		records  []ShiftRecord
		rejected []Rejection
	)
	for i, raw := range raws {
		rec, err := ParseShift(raw, opts)
		if err != nil {
			e.logger().Debug("shift rejected", "index", i, "date", raw.Date, "err", err)
			rejected = append(rejected, Rejection{Index: i, Raw: raw, Err: err})
			continue
		}
		records = append(records, rec)
	}

	report, err := e.run(ctx, evaluator, records)
	if report != nil {
		report.Rejected = rejected
	}
	return report, err
}

// RunRecords evaluates and aggregates records that are already typed.
func (e *Engine) RunRecords(ctx context.Context, records []ShiftRecord) (*Report, error) {
	evaluator, err := NewEvaluator(e.Policy, e.Oracle)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, evaluator, records)
}

// Reevaluate applies a manual net-time correction to the shift on date and
// recomputes the whole report. The break becomes elapsed minus net; the
// previous report is left untouched. A report holding two shifts for one
// date cannot be corrected and yields the duplicate-date *generic.PeriodError.
func (e *Engine) Reevaluate(ctx context.Context, prev *Report, date generic.TimePoint, netMinutes int) (*Report, error) {
	if dups := duplicateDates(prev.Evaluations); len(dups) > 0 {
		return nil, &generic.PeriodError{Code: generic.PeriodDuplicateDates, Dates: dups}
	}
	records := prev.Records()
	found := false
	for i, rec := range records {
		if !rec.Date().Equal(date) {
			continue
		}
		corrected, err := rec.WithNetMinutes(netMinutes)
		if err != nil {
			return nil, err
		}
		records[i] = corrected
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("shift on %s: %w", date, generic.ErrNotFound)
	}

	report, err := e.RunRecords(ctx, records)
	if report != nil {
		report.Rejected = prev.Rejected
	}
	return report, err
}

func (e *Engine) run(ctx context.Context, evaluator *Evaluator, records []ShiftRecord) (*Report, error) {
	evals, err := workerpool.Map(ctx, e.Pool, records, func(_ int, rec ShiftRecord) ShiftEvaluation {
		return evaluator.Evaluate(rec)
	})
	dates := make([]generic.TimePoint, len(records))
	for i, rec := range records {
		dates[i] = rec.Date()
	}
	report := &Report{
		ID:     uuid.NewString(),
		Policy: e.Policy,
		Period: generic.SpanOf(dates),
	}
	if err != nil {
		// Keep the report so Run can still attach the parse rejections.
		return report, fmt.Errorf("evaluate shifts: %w", err)
	}
	report.Evaluations = evals

	for _, ev := range evals {
		for _, w := range ev.Warnings {
			var oe *generic.OracleError
			if errors.As(w, &oe) {
				e.logger().Warn("holiday lookup failed", "date", oe.Date, "fallback", oe.Fallback, "err", oe.Err)
			}
		}
	}

	totals, rows, err := Aggregator{}.Aggregate(evals)
	if err != nil {
		e.logger().Debug("aggregation failed", "err", err)
		for _, ev := range evals {
			report.Rows = append(report.Rows, NewRow(ev))
		}
		return report, err
	}
	report.Rows = rows
	report.Totals = totals

	e.logger().Debug("period evaluated",
		"report", report.ID,
		"shifts", totals.Shifts,
		"payable", totals.FinalPayableOvertime.String(),
	)
	return report, nil
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}
