/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Ad-hoc evaluation (POST /api/evaluate) and its error mapping
- Stored shifts: record, correct, delete, report
- Policy creation and lookup
- Holiday calendar feeding the report
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/overtime-engine/factory"
	"github.com/warp/overtime-engine/overtime"
	"github.com/warp/overtime-engine/store/sqlite"
)

func setupTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store)
	return h, NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// EVALUATE
// =============================================================================

func TestEvaluate_DeficitOffsetsOvertime(t *testing.T) {
	// GIVEN: A 6-hour Monday and a 10-hour Tuesday
	// WHEN: Evaluated under the default policy
	// THEN: The Monday deficit cancels Tuesday's overtime

	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/evaluate", EvaluateRequest{
		Shifts: []overtime.RawShift{
			{Date: "2025-03-10", Start: "09:00", End: "15:00", Break: "0"},
			{Date: "2025-03-11", Start: "08:00", End: "18:00", Break: "0"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[ReportDTO](t, rec)
	assert.Equal(t, "default", report.PolicyID)
	assert.Equal(t, "2025-03-10", report.PeriodStart)
	assert.Equal(t, "2025-03-11", report.PeriodEnd)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, 2.0, report.Rows[1].PremiumA)
	assert.Equal(t, 2.0, report.Rows[0].Deficit)

	require.NotNil(t, report.Totals)
	assert.Equal(t, 16.0, report.Totals.Net)
	assert.Equal(t, 0.0, report.Totals.AdjustedPremiumA)
	assert.Equal(t, 0.0, report.Totals.FinalPayableOvertime)
	assert.Equal(t, 960, report.Totals.NetMinutes)
}

func TestEvaluate_MalformedShiftIsRejected(t *testing.T) {
	// GIVEN: Two valid shifts and one with an impossible clock time
	// WHEN: Evaluated
	// THEN: The valid ones are reported and the bad one is listed with its field

	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/evaluate", EvaluateRequest{
		Year: 2025,
		Shifts: []overtime.RawShift{
			{Date: "03/10", Start: "09:00", End: "18:00", Break: "60"},
			{Date: "03/11", Start: "25:00", End: "18:00", Break: "60"},
			{Date: "03/12", Start: "09:00", End: "18:00", Break: "60"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[ReportDTO](t, rec)
	assert.Len(t, report.Rows, 2)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, 1, report.Rejected[0].Index)
	assert.Equal(t, "start", report.Rejected[0].Field)
	assert.Equal(t, "25:00", report.Rejected[0].Shift.Start)
}

func TestEvaluate_DuplicateDatesIsUnprocessable(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/evaluate", EvaluateRequest{
		Shifts: []overtime.RawShift{
			{Date: "2025-03-10", Start: "09:00", End: "18:00", Break: "60"},
			{Date: "2025-03-10", Start: "19:00", End: "22:00", Break: "0"},
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	report := decode[ReportDTO](t, rec)
	require.NotNil(t, report.Error)
	assert.Equal(t, "duplicate_dates", report.Error.Code)
	assert.Len(t, report.Rows, 2)
	assert.Nil(t, report.Totals)
}

func TestEvaluate_PolicyErrors(t *testing.T) {
	_, router := setupTestServer(t)
	shifts := []overtime.RawShift{{Date: "2025-03-10", Start: "09:00", End: "18:00", Break: "60"}}

	tests := []struct {
		name     string
		req      EvaluateRequest
		wantCode int
		wantErr  string
	}{
		{
			name:     "unknown policy id",
			req:      EvaluateRequest{PolicyID: "missing", Shifts: shifts},
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
		{
			name: "invalid inline policy",
			req: EvaluateRequest{
				Policy: &factory.PolicyJSON{ID: "bad", BreakPlacement: "sideways"},
				Shifts: shifts,
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/evaluate", tt.req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestEvaluate_InvalidBody(t *testing.T) {
	_, router := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestShifts_RecordThenReport(t *testing.T) {
	// GIVEN: An employee posts three shifts, one of them malformed
	// WHEN: The report for the week is requested
	// THEN: Only the two stored shifts are evaluated

	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/shifts", RecordShiftsRequest{
		Source: "ocr",
		Shifts: []overtime.RawShift{
			{Date: "2025-03-10", Start: "09:00", End: "18:00", Break: "60"},
			{Date: "2025-03-11", Start: "09:00", End: "21:00", Break: "60"},
			{Date: "2025-03-12", Start: "09:00", End: "18:00"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	recorded := decode[RecordShiftsResponse](t, rec)
	require.Len(t, recorded.Stored, 2)
	assert.Equal(t, "8h 0m", recorded.Stored[0].Net)
	assert.Equal(t, "ocr", recorded.Stored[0].Source)
	require.Len(t, recorded.Rejected, 1)
	assert.Equal(t, 2, recorded.Rejected[0].Index)

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/shifts?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ShiftDTO](t, rec), 2)

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?from=2025-03-10&to=2025-03-16", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[ReportDTO](t, rec)
	require.NotNil(t, report.Totals)
	assert.Equal(t, 2, report.Totals.Shifts)
	assert.Equal(t, 18.0, report.Totals.Net)
	assert.Equal(t, 2.0, report.Totals.PremiumA)
	assert.Equal(t, 3.0, report.Totals.FinalPayableOvertime)
}

func TestShifts_DuplicateDateInBatchRejected(t *testing.T) {
	// GIVEN: One request carrying two shifts for 2025-03-10
	// WHEN: The shifts are recorded
	// THEN: The first is stored, the second is rejected, and the report
	//   still shows the full 9-hour day

	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/shifts", RecordShiftsRequest{
		Shifts: []overtime.RawShift{
			{Date: "2025-03-10", Start: "09:00", End: "18:00", Break: "60"},
			{Date: "2025-03-10", Start: "09:00", End: "12:00", Break: "0"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	recorded := decode[RecordShiftsResponse](t, rec)
	require.Len(t, recorded.Stored, 1)
	assert.Equal(t, "8h 0m", recorded.Stored[0].Net)
	require.Len(t, recorded.Rejected, 1)
	assert.Equal(t, 1, recorded.Rejected[0].Index)
	assert.Equal(t, "date", recorded.Rejected[0].Field)
	assert.Contains(t, recorded.Rejected[0].Reason, "duplicate date")

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?from=2025-03-10&to=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[ReportDTO](t, rec)
	require.NotNil(t, report.Totals)
	assert.Equal(t, 8.0, report.Totals.Net)
	assert.Equal(t, 0.0, report.Totals.Deficit)
}

func TestShifts_CorrectNetRecomputesBreak(t *testing.T) {
	// GIVEN: A stored 09:00-18:00 shift with an hour's break
	// WHEN: The worked time is corrected to 6 hours
	// THEN: The break becomes 180 minutes and the day shows a 2-hour deficit

	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/shifts", RecordShiftsRequest{
		Shifts: []overtime.RawShift{{Date: "2025-03-10", Start: "09:00", End: "18:00", Break: "60"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/employees/emp-1/shifts/2025-03-10/net", CorrectNetRequest{Net: "6h 0m"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	corrected := decode[ShiftDTO](t, rec)
	assert.Equal(t, "180", corrected.Break)
	assert.Equal(t, "6h 0m", corrected.Net)
	assert.Equal(t, "correction", corrected.Source)

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?from=2025-03-10&to=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[ReportDTO](t, rec)
	assert.Equal(t, 2.0, report.Totals.Deficit)
	assert.Equal(t, 6.0, report.Totals.Net)
}

func TestShifts_CorrectNetErrors(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/shifts", RecordShiftsRequest{
		Shifts: []overtime.RawShift{{Date: "2025-03-10", Start: "09:00", End: "18:00", Break: "60"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name     string
		path     string
		net      string
		wantCode int
	}{
		{"net longer than span", "/api/employees/emp-1/shifts/2025-03-10/net", "10h 0m", http.StatusBadRequest},
		{"unparseable net", "/api/employees/emp-1/shifts/2025-03-10/net", "lots", http.StatusBadRequest},
		{"no shift on date", "/api/employees/emp-1/shifts/2025-03-11/net", "6h 0m", http.StatusNotFound},
		{"bad date", "/api/employees/emp-1/shifts/tuesday/net", "6h 0m", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, tt.path, CorrectNetRequest{Net: tt.net})
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestShifts_Delete(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/shifts", RecordShiftsRequest{
		Shifts: []overtime.RawShift{{Date: "2025-03-10", Start: "09:00", End: "18:00", Break: "60"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/employees/emp-1/shifts/2025-03-10", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/employees/emp-1/shifts/2025-03-10", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?from=2025-03-01&to=2025-03-31", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "empty_period", decode[ReportDTO](t, rec).Error.Code)
}

func TestReport_InvalidPeriod(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/employees/emp-1/report?from=2025-03-31&to=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?from=March", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReport_MonthAndPayMonth(t *testing.T) {
	// GIVEN: Shifts on Mar 24, Mar 25 and Apr 24
	// WHEN: The report is requested by calendar month and by pay month
	//   starting on the 25th
	// THEN: Each selects the shifts inside its own window

	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/employees/emp-1/shifts", RecordShiftsRequest{
		Shifts: []overtime.RawShift{
			{Date: "2025-03-24", Start: "09:00", End: "18:00", Break: "60"},
			{Date: "2025-03-25", Start: "09:00", End: "18:00", Break: "60"},
			{Date: "2025-04-24", Start: "09:00", End: "18:00", Break: "60"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	dates := func(report ReportDTO) []string {
		var out []string
		for _, row := range report.Rows {
			out = append(out, row.Date)
		}
		return out
	}

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?month=2025-03", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"2025-03-24", "2025-03-25"}, dates(decode[ReportDTO](t, rec)))

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?month=2025-03&cutoff_day=25", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"2025-03-25", "2025-04-24"}, dates(decode[ReportDTO](t, rec)))

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?month=2025-03&cutoff_day=31", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// POLICIES
// =============================================================================

func TestPolicies_CreateAndUse(t *testing.T) {
	// GIVEN: A stored policy that stacks holiday night premiums
	// WHEN: A Saturday night shift is evaluated under it
	// THEN: The night hours land in premium_b

	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/policies", CreatePolicyRequest{
		Config: factory.PolicyJSON{ID: "night-stack", Name: "Night stack", HolidayNightOnlyBand: "premium_b"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[PolicyDTO](t, rec)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, "front", created.Config.BreakPlacement)

	rec = do(t, router, http.MethodGet, "/api/policies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ids := map[string]bool{}
	for _, p := range decode[[]PolicyDTO](t, rec) {
		ids[p.ID] = p.Builtin
	}
	assert.Equal(t, map[string]bool{
		"default":            true,
		"kr-labor":           true,
		"proportional-break": true,
		"night-stack":        false,
	}, ids)

	rec = do(t, router, http.MethodGet, "/api/policies/night-stack", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Night stack", decode[PolicyDTO](t, rec).Name)

	rec = do(t, router, http.MethodPost, "/api/evaluate", EvaluateRequest{
		PolicyID: "night-stack",
		Shifts:   []overtime.RawShift{{Date: "2025-03-15", Start: "22:00", End: "02:00", Break: "0"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[ReportDTO](t, rec)
	assert.Equal(t, 4.0, report.Totals.PremiumB)
	assert.Equal(t, 8.0, report.Totals.FinalPayableOvertime)
}

func TestPolicies_Errors(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/policies/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/policies", CreatePolicyRequest{
		Config: factory.PolicyJSON{ID: "bad", NightStart: "22:00"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "configuration", decode[ErrorResponse](t, rec).Code)
}

func TestPolicies_LoadFromStore(t *testing.T) {
	// GIVEN: A policy stored by a previous server instance
	// WHEN: A new handler loads policies
	// THEN: The stored policy is available

	h, router := setupTestServer(t)
	rec := do(t, router, http.MethodPost, "/api/policies", CreatePolicyRequest{
		Config: factory.PolicyJSON{ID: "night-stack", Name: "Night stack", HolidayNightOnlyBand: "premium_b"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	fresh := NewHandler(h.Store)
	_, err := fresh.policy("night-stack")
	require.Error(t, err)

	require.NoError(t, fresh.LoadPolicies(t.Context()))
	p, err := fresh.policy("night-stack")
	require.NoError(t, err)
	assert.Equal(t, overtime.BandPremiumB, p.HolidayNightOnlyBand)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_DefaultsMakeWeekdayNonWorking(t *testing.T) {
	// GIVEN: The fixed public holidays loaded as global holidays
	// WHEN: A shift on Hangul Day (Thursday 2025-10-09) is reported
	// THEN: All of it is holiday premium

	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/holidays/defaults", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/holidays", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[map[string][]HolidayDTO](t, rec)
	assert.Len(t, listed["holidays"], 8)

	rec = do(t, router, http.MethodPost, "/api/employees/emp-1/shifts", RecordShiftsRequest{
		Shifts: []overtime.RawShift{
			{Date: "2025-10-08", Start: "09:00", End: "18:00", Break: "60"},
			{Date: "2025-10-09", Start: "09:00", End: "18:00", Break: "60"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/employees/emp-1/report?from=2025-10-01&to=2025-10-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[ReportDTO](t, rec)
	require.Len(t, report.Rows, 2)
	assert.False(t, report.Rows[0].NonWorking)
	assert.True(t, report.Rows[1].NonWorking)
	assert.Equal(t, 8.0, report.Rows[1].PremiumA)
}

func TestHolidays_CreateAndDelete(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/holidays", CreateHolidayRequest{Date: "2025-06-03", Name: "Election Day"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[HolidayDTO](t, rec)
	require.NotEmpty(t, created.ID)

	rec = do(t, router, http.MethodPost, "/api/holidays", CreateHolidayRequest{Date: "June 3", Name: "Election Day"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/holidays", CreateHolidayRequest{Date: "2025-06-03"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/holidays/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/holidays/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
