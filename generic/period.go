package generic

import "time"

// =============================================================================
// PERIOD - Reporting window for aggregation
// =============================================================================

// Period is an inclusive date range [Start, End] that a report covers.
//
// Examples:
//   - Pay month March 2025: Mar 1 - Mar 31
//   - Calendar year 2025: Jan 1 - Dec 31
//   - Whatever range the supplied shifts span
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Validate checks that the period does not end before it starts.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// SpanOf returns the smallest period covering every date given.
// The zero Period is returned for no dates.
func SpanOf(dates []TimePoint) Period {
	if len(dates) == 0 {
		return Period{}
	}
	p := Period{Start: dates[0], End: dates[0]}
	for _, d := range dates[1:] {
		if d.Before(p.Start) {
			p.Start = d
		}
		if d.After(p.End) {
			p.End = d
		}
	}
	return p
}

// PeriodType defines how periods are calculated
type PeriodType string

const (
	PeriodCalendarMonth PeriodType = "calendar_month" // 1st - last day of month
	PeriodCalendarYear  PeriodType = "calendar_year"  // Jan 1 - Dec 31
	PeriodPayMonth      PeriodType = "pay_month"      // Cutoff day to the day before next cutoff
)

// PeriodConfig defines how to calculate reporting periods
type PeriodConfig struct {
	Type PeriodType

	// For pay month: the first day of each pay period (1-28)
	CutoffDay int
}

// =============================================================================
// PERIOD CALCULATOR - Determines which period a date falls into
// =============================================================================

// PeriodFor returns the period that contains the given date
func (pc PeriodConfig) PeriodFor(date TimePoint) Period {
	switch pc.Type {
	case PeriodCalendarYear:
		return Period{Start: StartOfYear(date.Year()), End: EndOfYear(date.Year())}

	case PeriodPayMonth:
		return pc.payMonthPeriod(date)

	default:
		return Period{
			Start: StartOfMonth(date.Year(), date.Month()),
			End:   EndOfMonth(date.Year(), date.Month()),
		}
	}
}

func (pc PeriodConfig) payMonthPeriod(date TimePoint) Period {
	cutoff := pc.CutoffDay
	if cutoff < 1 || cutoff > 28 {
		cutoff = 1
	}
	start := NewTimePoint(date.Year(), date.Month(), cutoff)
	// Before this month's cutoff we're still in last month's pay period
	if date.Before(start) {
		start = DateOf(start.Time.AddDate(0, -1, 0))
	}
	end := DateOf(start.Time.AddDate(0, 1, -1))
	return Period{Start: start, End: end}
}

// NextPeriod returns the period following this one
func (pc PeriodConfig) NextPeriod(p Period) Period {
	return pc.PeriodFor(p.End.AddDays(1))
}

// PreviousPeriod returns the period before this one
func (pc PeriodConfig) PreviousPeriod(p Period) Period {
	return pc.PeriodFor(p.Start.AddDays(-1))
}

// MonthPeriod is shorthand for a calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}
