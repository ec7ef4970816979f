package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date (shifts are keyed by the day they start on)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return DateOf(t), nil
}

func Today() TimePoint {
	return DateOf(time.Now())
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.Time.AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool       { wd := tp.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// Key is a comparable map key for the date.
func (tp TimePoint) Key() string { return tp.String() }

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

// =============================================================================
// CLOCK TIME - Minute of day, 00:00 through 23:59
// =============================================================================

const MinutesPerDay = 24 * 60

// ClockTime is a local time of day measured in minutes since midnight.
type ClockTime int

func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock time %02d:%02d out of range", hour, minute)
	}
	return ClockTime(hour*60 + minute), nil
}

// MustClockTime panics on an invalid time. For literals and tests.
func MustClockTime(hour, minute int) ClockTime {
	c, err := NewClockTime(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// Add moves the clock forward by n minutes, wrapping at midnight.
func (c ClockTime) Add(n int) ClockTime {
	m := (int(c) + n) % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return ClockTime(m)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// ClockWindow is a half-open daily window [Start, End). A window whose End
// is not after its Start wraps midnight.
type ClockWindow struct {
	Start ClockTime
	End   ClockTime
}

func (w ClockWindow) Contains(c ClockTime) bool {
	if w.Start < w.End {
		return c >= w.Start && c < w.End
	}
	return c >= w.Start || c < w.End
}

// IsEmpty reports a window that selects no minute at all.
func (w ClockWindow) IsEmpty() bool { return w.Start == w.End }

func (w ClockWindow) String() string { return w.Start.String() + "-" + w.End.String() }

// =============================================================================
// HOLIDAY CALENDAR - Company-specific holidays
// =============================================================================

// Holiday represents a recognized public or company holiday.
type Holiday struct {
	ID        string
	CompanyID string    // Empty string = global/default holidays
	Date      TimePoint // The holiday date
	Name      string    // e.g., "Chuseok", "Independence Day"
	Recurring bool      // true = same month/day every year
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	// IsHoliday checks if a date is a holiday for the given company.
	// Checks company-specific holidays first, then global holidays.
	IsHoliday(companyID string, date TimePoint) (bool, error)

	// GetHolidays returns all holidays for a company in a given year.
	GetHolidays(companyID string, year int) ([]Holiday, error)
}

// =============================================================================
// HOLIDAY ORACLE - Is this date a non-working day?
// =============================================================================

// HolidayOracle answers whether a calendar date is non-working. It must be a
// pure function of the date; the engine owns no holiday content.
type HolidayOracle interface {
	IsNonWorking(date TimePoint) (bool, error)
}

// OracleFunc adapts a plain function to HolidayOracle.
type OracleFunc func(date TimePoint) (bool, error)

func (f OracleFunc) IsNonWorking(date TimePoint) (bool, error) { return f(date) }

// WeekendOracle treats Saturday and Sunday as non-working and nothing else.
type WeekendOracle struct{}

func (WeekendOracle) IsNonWorking(date TimePoint) (bool, error) { return date.IsWeekend(), nil }

// CalendarOracle treats weekends and calendar holidays as non-working.
type CalendarOracle struct {
	Calendar  HolidayCalendar
	CompanyID string
}

func (o CalendarOracle) IsNonWorking(date TimePoint) (bool, error) {
	if date.IsWeekend() {
		return true, nil
	}
	if o.Calendar == nil {
		return false, nil
	}
	return o.Calendar.IsHoliday(o.CompanyID, date)
}

// DateSet is a fixed set of non-working dates on top of weekends.
type DateSet map[string]struct{}

func NewDateSet(dates ...TimePoint) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d.Key()] = struct{}{}
	}
	return s
}

func (s DateSet) IsNonWorking(date TimePoint) (bool, error) {
	if date.IsWeekend() {
		return true, nil
	}
	_, ok := s[date.Key()]
	return ok, nil
}

var (
	_ HolidayOracle = WeekendOracle{}
	_ HolidayOracle = CalendarOracle{}
	_ HolidayOracle = DateSet(nil)
	_ HolidayOracle = OracleFunc(nil)
)

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfYear(year int) TimePoint {
	return NewTimePoint(year, time.January, 1)
}

func EndOfYear(year int) TimePoint {
	return NewTimePoint(year, time.December, 31)
}

func StartOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, 1)
}

func EndOfMonth(year int, month time.Month) TimePoint {
	return DateOf(time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}
