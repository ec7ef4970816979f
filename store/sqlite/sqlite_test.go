package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestShifts_PutReplacesSameDate(t *testing.T) {
	// GIVEN: A shift recorded for March 10
	// WHEN: A corrected shift is stored for the same date
	// THEN: Only the corrected one remains

	store := newTestStore(t)
	ctx := context.Background()
	emp := generic.EntityID("emp-1")

	require.NoError(t, store.Put(ctx, generic.StoredShift{
		EntityID: emp, Date: date(2025, time.March, 10), Start: "09:00", End: "18:00", Break: "60", Source: "ocr",
	}))
	require.NoError(t, store.Put(ctx, generic.StoredShift{
		EntityID: emp, Date: date(2025, time.March, 10), Start: "09:00", End: "18:00", Net: "6h 0m", Source: "correction",
	}))

	got, err := store.Get(ctx, emp, date(2025, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, "6h 0m", got.Net)
	assert.Empty(t, got.Break)
	assert.Equal(t, "correction", got.Source)

	all, err := store.Range(ctx, emp, date(2025, time.March, 1), date(2025, time.March, 31))
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestShifts_RangeOrderedAndScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []int{12, 3, 25, 10} {
		require.NoError(t, store.Put(ctx, generic.StoredShift{
			EntityID: "emp-1", Date: date(2025, time.March, d), Start: "09:00", End: "18:00", Break: "60",
		}))
	}
	require.NoError(t, store.Put(ctx, generic.StoredShift{
		EntityID: "emp-2", Date: date(2025, time.March, 11), Start: "09:00", End: "18:00", Break: "60",
	}))

	got, err := store.Range(ctx, "emp-1", date(2025, time.March, 3), date(2025, time.March, 12))
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "2025-03-03", got[0].Date.String())
	assert.Equal(t, "2025-03-10", got[1].Date.String())
	assert.Equal(t, "2025-03-12", got[2].Date.String())
}

func TestShifts_GetAndDeleteMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "emp-1", date(2025, time.March, 10))
	assert.ErrorIs(t, err, generic.ErrNotFound)

	err = store.Delete(ctx, "emp-1", date(2025, time.March, 10))
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// POLICIES
// =============================================================================

func TestPolicies_SaveBumpsVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := sqlite.PolicyRecord{ID: "kr-labor", Name: "Holiday night stacking", ConfigJSON: `{"id":"kr-labor"}`}
	require.NoError(t, store.SavePolicy(ctx, rec))
	require.NoError(t, store.SavePolicy(ctx, rec))

	got, err := store.GetPolicy(ctx, "kr-labor")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)

	list, err := store.ListPolicies(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = store.GetPolicy(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_RecurringAndCompanyScoped(t *testing.T) {
	// GIVEN: A recurring global holiday, a one-off global holiday,
	//   and a holiday for another company
	// WHEN: Looked up for company "acme"
	// THEN: Recurring matches any year, the one-off only its own year,
	//   and the other company's holiday never

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveHoliday(ctx, generic.Holiday{Date: date(2000, time.March, 1), Name: "Independence Movement Day", Recurring: true})
	require.NoError(t, err)
	_, err = store.SaveHoliday(ctx, generic.Holiday{Date: date(2025, time.October, 6), Name: "Chuseok"})
	require.NoError(t, err)
	_, err = store.SaveHoliday(ctx, generic.Holiday{CompanyID: "other", Date: date(2025, time.April, 1), Name: "Founding Day"})
	require.NoError(t, err)

	for _, tt := range []struct {
		date generic.TimePoint
		want bool
	}{
		{date(2025, time.March, 1), true},
		{date(2031, time.March, 1), true},
		{date(2025, time.October, 6), true},
		{date(2026, time.October, 6), false},
		{date(2025, time.April, 1), false},
	} {
		got, err := store.IsHoliday("acme", tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.date.String())
	}

	holidays, err := store.GetHolidays("acme", 2026)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "2026-03-01", holidays[0].Date.String())
}

func TestHolidays_SaveIsIdempotentAndDeletable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	h := generic.Holiday{Date: date(2025, time.May, 5), Name: "Children's Day"}
	first, err := store.SaveHoliday(ctx, h)
	require.NoError(t, err)
	second, err := store.SaveHoliday(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := store.ListHolidays(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.DeleteHoliday(ctx, first.ID))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, first.ID), generic.ErrNotFound)
}

func TestHolidays_DriveCalendarOracle(t *testing.T) {
	store := newTestStore(t)
	for _, h := range generic.FixedPublicHolidays() {
		_, err := store.SaveHoliday(context.Background(), h)
		require.NoError(t, err)
	}

	oracle := generic.CalendarOracle{Calendar: store, CompanyID: "acme"}

	// Wednesday 2025-10-08 is a regular day, Thursday 2025-10-09 is Hangul Day
	nonWorking, err := oracle.IsNonWorking(date(2025, time.October, 8))
	require.NoError(t, err)
	assert.False(t, nonWorking)

	nonWorking, err = oracle.IsNonWorking(date(2025, time.October, 9))
	require.NoError(t, err)
	assert.True(t, nonWorking)
}
