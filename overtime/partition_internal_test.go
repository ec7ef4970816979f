package overtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/overtime-engine/generic"
)

func TestPartitionInterval_MatchesMinuteWalk(t *testing.T) {
	// GIVEN: Shifts sampled across the day, crossing midnight and the night
	//   window edges, with breaks of several lengths
	// WHEN: The closed-form split and the minute walk are both applied
	// THEN: They agree on every band for front and back placement

	date := generic.NewTimePoint(2025, time.March, 10)
	windows := []generic.ClockWindow{
		DefaultNightWindow,
		{Start: generic.MustClockTime(1, 0), End: generic.MustClockTime(5, 0)},
	}

	for _, placement := range []BreakPlacement{BreakFront, BreakBack} {
		for _, window := range windows {
			p := DefaultPolicy()
			p.BreakPlacement = placement
			p.NightWindow = window

			for start := 0; start < generic.MinutesPerDay; start += 37 {
				for end := 0; end < generic.MinutesPerDay; end += 53 {
					for _, brk := range []int{0, 30, 61, 240} {
						rec, err := NewShiftRecord(date, generic.ClockTime(start), generic.ClockTime(end), brk)
						if err != nil {
							continue
						}
						for _, nonWorking := range []bool{false, true} {
							want := walkMinutes(p, rec, nonWorking, breakMask(p, rec))
							got := Partition(p, rec, nonWorking)
							require.Equal(t, want, got, "%s window %s shift %s break %d nonWorking %v",
								placement, window, rec.Span(), brk, nonWorking)
						}
					}
				}
			}
		}
	}
}

func TestBreakMask_ProportionalSpreadsExactlyBreakMinutes(t *testing.T) {
	// GIVEN: A 600 minute span with a 60 minute break
	// WHEN: The proportional mask is applied
	// THEN: Exactly 60 offsets are unpaid, one in every 10

	p := ProportionalBreakPolicy()
	rec, err := NewShiftRecord(generic.NewTimePoint(2025, time.March, 10),
		generic.MustClockTime(8, 0), generic.MustClockTime(18, 0), 60)
	require.NoError(t, err)

	mask := breakMask(p, rec)
	var unpaid []int
	for off := 0; off < rec.ElapsedMinutes(); off++ {
		if mask(off) {
			unpaid = append(unpaid, off)
		}
	}

	require.Len(t, unpaid, 60)
	for i := 1; i < len(unpaid); i++ {
		assert.Equal(t, 10, unpaid[i]-unpaid[i-1])
	}
}

func TestBreakMask_ProportionalCount(t *testing.T) {
	date := generic.NewTimePoint(2025, time.March, 10)
	p := ProportionalBreakPolicy()

	for _, elapsed := range []int{1, 7, 480, 601, 1440} {
		for _, brk := range []int{0, 1, elapsed / 3, elapsed} {
			rec, err := NewShiftRecord(date, 0, generic.ClockTime(elapsed%generic.MinutesPerDay), brk)
			require.NoError(t, err)

			mask := breakMask(p, rec)
			n := 0
			for off := 0; off < rec.ElapsedMinutes(); off++ {
				if mask(off) {
					n++
				}
			}
			assert.Equal(t, brk, n, "elapsed %d break %d", elapsed, brk)
		}
	}
}

func TestProportionalPlacement_EveningShift(t *testing.T) {
	// GIVEN: Monday 14:00-23:30, 30 minutes break spread over the span
	// WHEN: Evaluated
	// THEN: One unpaid minute every 19; 25 fall before 22:00, so the
	//   threshold is crossed at 22:26 instead of 22:30

	p := ProportionalBreakPolicy()
	rec, err := NewShiftRecord(generic.NewTimePoint(2025, time.March, 10),
		generic.MustClockTime(14, 0), generic.MustClockTime(23, 30), 30)
	require.NoError(t, err)

	got := Partition(p, rec, false)
	assert.Equal(t, BandMinutes{455, 25, 60, 0}, got)
	assert.Equal(t, walkMinutes(p, rec, false, breakMask(p, rec)), got)
}
