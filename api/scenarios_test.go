/*
scenarios_test.go - Tests for demo scenario loading

Each scenario is loaded through the API and its report checked against the
hand-computed breakdown.
*/
package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenarioReport(t *testing.T, router http.Handler, id string) ReportDTO {
	t.Helper()

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	loaded := decode[map[string]string](t, rec)

	rec = do(t, router, http.MethodGet,
		"/api/employees/"+loaded["employee_id"]+"/report?from="+loaded["from"]+"&to="+loaded["to"]+"&policy_id="+loaded["policy_id"], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[ReportDTO](t, rec)
}

func TestScenario_StandardWeek(t *testing.T) {
	_, router := setupTestServer(t)

	report := loadScenarioReport(t, router, "standard-week")

	require.NotNil(t, report.Totals)
	assert.Equal(t, 5, report.Totals.Shifts)
	assert.Equal(t, 40.0, report.Totals.Standard)
	assert.Equal(t, 0.0, report.Totals.FinalPayableOvertime)
	assert.Equal(t, 40.0, report.Totals.Weighted)
}

func TestScenario_DeficitOffset(t *testing.T) {
	_, router := setupTestServer(t)

	report := loadScenarioReport(t, router, "deficit-offset")

	assert.Equal(t, 2.0, report.Totals.PremiumA)
	assert.Equal(t, 2.0, report.Totals.Deficit)
	assert.Equal(t, 0.0, report.Totals.AdjustedPremiumA)
	assert.Equal(t, 0.0, report.Totals.FinalPayableOvertime)
}

func TestScenario_HolidayWork(t *testing.T) {
	// GIVEN: Saturday day work, a Sunday night shift and a long shift on a
	//   weekday public holiday, under the stacking policy
	// WHEN: The report is computed
	// THEN: Day hours are premium_a, night-only hours premium_b, and night
	//   hours past the threshold premium_c

	h, router := setupTestServer(t)

	report := loadScenarioReport(t, router, "holiday-work")

	require.Len(t, report.Rows, 3)
	for _, row := range report.Rows {
		assert.True(t, row.NonWorking, row.Date)
	}
	assert.Equal(t, "kr-labor", report.PolicyID)
	assert.Equal(t, 16.0, report.Totals.PremiumA)
	assert.Equal(t, 4.0, report.Totals.PremiumB)
	assert.Equal(t, 4.0, report.Totals.PremiumC)
	assert.Equal(t, 0.0, report.Totals.Deficit)
	assert.Equal(t, 42.0, report.Totals.FinalPayableOvertime)

	h.mu.RLock()
	assert.Equal(t, "holiday-work", h.currentScenario)
	h.mu.RUnlock()
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]ScenarioDTO](t, rec)
	require.Len(t, listed, len(scenarios))

	for _, s := range listed {
		t.Run(s.ID, func(t *testing.T) {
			report := loadScenarioReport(t, router, s.ID)
			assert.Empty(t, report.Rejected)
			assert.Nil(t, report.Error)

			rec := do(t, router, http.MethodGet, "/api/scenarios/current", nil)
			assert.Equal(t, s.ID, decode[ScenarioDTO](t, rec).ID)
		})
	}
}

func TestScenario_ResetClearsData(t *testing.T) {
	_, router := setupTestServer(t)
	loadScenarioReport(t, router, "standard-week")

	rec := do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/employees/demo-employee/shifts?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]ShiftDTO](t, rec))

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	assert.Equal(t, "null\n", rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": "missing"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
