package overtime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/warp/overtime-engine/generic"
)

// =============================================================================
// RAW SHIFT - Candidate tuple from an extractor
// =============================================================================

// RawShift is one candidate row as isolated from recognized text or typed by
// a user. Nothing in it is trusted until ParseShift accepts it.
//
// Break and Net are alternatives: Net is the "worked time" column some
// timesheets show instead of a break. When both are present they must agree.
type RawShift struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Break string `json:"break,omitempty"`
	Net   string `json:"net,omitempty"`
}

// ParseOptions supplies context the raw strings may omit.
type ParseOptions struct {
	// Year completes month/day dates such as "03/14".
	Year int
}

var (
	isoDateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02"}

	monthDayPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	clockPattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	breakPattern    = regexp.MustCompile(`^(\d+)\s*(?:m|min|mins|분)?$`)
	netClockPattern = regexp.MustCompile(`^(\d+):(\d{2})$`)
	netUnitPattern  = regexp.MustCompile(`^(?:(\d+)\s*(?:h|H|시간|시))?\s*(?:(\d+)\s*(?:m|M|min|분))?$`)
)

// ParseShift strictly parses a raw tuple into a ShiftRecord. Every failure is
// a *generic.ValidationError naming the offending field.
func ParseShift(raw RawShift, opts ParseOptions) (ShiftRecord, error) {
	date, err := parseDate(raw.Date, opts.Year)
	if err != nil {
		return ShiftRecord{}, err
	}
	start, err := parseClock("start", raw.Start)
	if err != nil {
		return ShiftRecord{}, err
	}
	end, err := parseClock("end", raw.End)
	if err != nil {
		return ShiftRecord{}, err
	}

	breakText := strings.TrimSpace(raw.Break)
	netText := strings.TrimSpace(raw.Net)
	if breakText == "" && netText == "" {
		return ShiftRecord{}, &generic.ValidationError{Field: "break", Reason: "break or net time required"}
	}

	elapsed := elapsedMinutes(start, end)
	breakMinutes := -1
	if breakText != "" {
		breakMinutes, err = parseBreak(breakText)
		if err != nil {
			return ShiftRecord{}, err
		}
	}
	if netText != "" {
		net, err := ParseNetMinutes(netText)
		if err != nil {
			return ShiftRecord{}, err
		}
		if net > elapsed {
			return ShiftRecord{}, &generic.ValidationError{
				Field:  "net",
				Value:  netText,
				Reason: "exceeds elapsed " + strconv.Itoa(elapsed) + " minutes",
			}
		}
		derived := elapsed - net
		if breakMinutes >= 0 && breakMinutes != derived {
			return ShiftRecord{}, &generic.ValidationError{
				Field:  "net",
				Value:  netText,
				Reason: "disagrees with break of " + strconv.Itoa(breakMinutes) + " minutes",
			}
		}
		breakMinutes = derived
	}

	return NewShiftRecord(date, start, end, breakMinutes)
}

func parseDate(s string, year int) (generic.TimePoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return generic.TimePoint{}, &generic.ValidationError{Field: "date", Reason: "missing"}
	}
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return generic.DateOf(t), nil
		}
	}

	m := monthDayPattern.FindStringSubmatch(s)
	if m == nil {
		return generic.TimePoint{}, &generic.ValidationError{Field: "date", Value: s, Reason: "unrecognized date format"}
	}
	if year <= 0 {
		return generic.TimePoint{}, &generic.ValidationError{Field: "date", Value: s, Reason: "year required for month/day dates"}
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 02/30 into March; reject instead
	if t.Month() != time.Month(month) || t.Day() != day {
		return generic.TimePoint{}, &generic.ValidationError{Field: "date", Value: s, Reason: "no such calendar date"}
	}
	return generic.DateOf(t), nil
}

func parseClock(field, s string) (generic.ClockTime, error) {
	s = strings.TrimSpace(s)
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, &generic.ValidationError{Field: field, Value: s, Reason: "expected HH:MM"}
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	c, err := generic.NewClockTime(hour, minute)
	if err != nil {
		return 0, &generic.ValidationError{Field: field, Value: s, Reason: err.Error()}
	}
	return c, nil
}

func parseBreak(s string) (int, error) {
	m := breakPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, &generic.ValidationError{Field: "break", Value: s, Reason: "expected whole minutes"}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &generic.ValidationError{Field: "break", Value: s, Reason: "expected whole minutes"}
	}
	return n, nil
}

// ParseNetMinutes parses a worked-time column such as "8h 30m", "8시간 30분",
// "45m" or "8:30" into minutes.
func ParseNetMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if m := netClockPattern.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		if minutes > 59 {
			return 0, &generic.ValidationError{Field: "net", Value: s, Reason: "minutes out of range"}
		}
		return hours*60 + minutes, nil
	}

	m := netUnitPattern.FindStringSubmatch(s)
	if s == "" || m == nil || (m[1] == "" && m[2] == "") {
		return 0, &generic.ValidationError{Field: "net", Value: s, Reason: "expected worked time like 8h 30m"}
	}
	var total int
	if m[1] != "" {
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, &generic.ValidationError{Field: "net", Value: s, Reason: "hours out of range"}
		}
		total += hours * 60
	}
	if m[2] != "" {
		minutes, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, &generic.ValidationError{Field: "net", Value: s, Reason: "minutes out of range"}
		}
		total += minutes
	}
	return total, nil
}

// FormatNet renders minutes the way ParseNetMinutes reads them back.
func FormatNet(minutes int) string {
	return strconv.Itoa(minutes/60) + "h " + strconv.Itoa(minutes%60) + "m"
}
