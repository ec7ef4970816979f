package overtime

import (
	"strconv"

	"github.com/warp/overtime-engine/generic"
)

// =============================================================================
// SHIFT RECORD - One validated day of attendance
// =============================================================================

// ShiftRecord is an immutable, validated attendance span. Build one with
// NewShiftRecord or ParseShift; corrections return a new record.
type ShiftRecord struct {
	date         generic.TimePoint
	start        generic.ClockTime
	end          generic.ClockTime
	breakMinutes int
}

// NewShiftRecord validates and builds a record. An end time at or before the
// start time means the shift crosses midnight.
func NewShiftRecord(date generic.TimePoint, start, end generic.ClockTime, breakMinutes int) (ShiftRecord, error) {
	if date.IsZero() {
		return ShiftRecord{}, &generic.ValidationError{Field: "date", Reason: "missing"}
	}
	if err := checkClock("start", start); err != nil {
		return ShiftRecord{}, err
	}
	if err := checkClock("end", end); err != nil {
		return ShiftRecord{}, err
	}

	elapsed := elapsedMinutes(start, end)
	if elapsed <= 0 {
		return ShiftRecord{}, &generic.ValidationError{Field: "end", Value: end.String(), Reason: "shift has no elapsed time"}
	}
	if breakMinutes < 0 {
		return ShiftRecord{}, &generic.ValidationError{Field: "break", Value: strconv.Itoa(breakMinutes), Reason: "must not be negative"}
	}
	if breakMinutes > elapsed {
		return ShiftRecord{}, &generic.ValidationError{
			Field:  "break",
			Value:  strconv.Itoa(breakMinutes),
			Reason: "exceeds elapsed " + strconv.Itoa(elapsed) + " minutes",
		}
	}

	return ShiftRecord{date: date, start: start, end: end, breakMinutes: breakMinutes}, nil
}

func checkClock(field string, c generic.ClockTime) error {
	if c < 0 || int(c) >= generic.MinutesPerDay {
		return &generic.ValidationError{Field: field, Value: strconv.Itoa(int(c)), Reason: "clock time out of range"}
	}
	return nil
}

func elapsedMinutes(start, end generic.ClockTime) int {
	elapsed := int(end) - int(start)
	if elapsed <= 0 {
		elapsed += generic.MinutesPerDay
	}
	return elapsed
}

func (r ShiftRecord) Date() generic.TimePoint { return r.date }
func (r ShiftRecord) Start() generic.ClockTime { return r.start }
func (r ShiftRecord) End() generic.ClockTime   { return r.end }
func (r ShiftRecord) BreakMinutes() int        { return r.breakMinutes }

// ElapsedMinutes is the span from start to end, including any break.
func (r ShiftRecord) ElapsedMinutes() int { return elapsedMinutes(r.start, r.end) }

// WorkedMinutes is the paid time: elapsed minus break.
func (r ShiftRecord) WorkedMinutes() int { return r.ElapsedMinutes() - r.breakMinutes }

// CrossesMidnight reports whether the shift ends on the following day.
func (r ShiftRecord) CrossesMidnight() bool { return r.end <= r.start }

// Span renders the clock range, e.g. "22:00-06:00".
func (r ShiftRecord) Span() string { return r.start.String() + "-" + r.end.String() }

func (r ShiftRecord) IsZero() bool { return r.date.IsZero() }

// =============================================================================
// CORRECTIONS - Replace and recompute
// =============================================================================

// WithNetMinutes returns a new record whose worked time equals net. The break
// is recomputed as elapsed − net; the receiver is untouched.
func (r ShiftRecord) WithNetMinutes(net int) (ShiftRecord, error) {
	if net < 0 {
		return ShiftRecord{}, &generic.ValidationError{Field: "net", Value: strconv.Itoa(net), Reason: "must not be negative"}
	}
	elapsed := r.ElapsedMinutes()
	if net > elapsed {
		return ShiftRecord{}, &generic.ValidationError{
			Field:  "net",
			Value:  strconv.Itoa(net),
			Reason: "exceeds elapsed " + strconv.Itoa(elapsed) + " minutes",
		}
	}
	return NewShiftRecord(r.date, r.start, r.end, elapsed-net)
}

// WithBreakMinutes returns a new record with a different break.
func (r ShiftRecord) WithBreakMinutes(breakMinutes int) (ShiftRecord, error) {
	return NewShiftRecord(r.date, r.start, r.end, breakMinutes)
}
