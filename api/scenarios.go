/*
scenarios.go - Demo timesheets for testing and demonstrations

PURPOSE:

	Provides pre-built timesheets that populate the database with shifts
	showing specific classification rules. After loading, fetch the report
	for the scenario's employee and period to see the breakdown.

AVAILABLE SCENARIOS:

	standard-week:    Five ordinary 9-to-6 days, no premium
	evening-overrun:  Late shifts running past the threshold into the night
	holiday-work:     Weekend and public-holiday shifts, night stacking
	deficit-offset:   A short day cancelling out a long day's overtime
	night-shift:      Cross-midnight shifts with proportional breaks

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Store the scenario's holidays
 3. Store the scenario's raw shifts for the demo employee

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "deficit-offset"}

	GET /api/employees/demo-employee/report?from=...&to=...&policy_id=...

ADDING NEW SCENARIOS:
 1. Add an entry to 'scenarios' with its shifts and holidays

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: GetReport handler
  - overtime/policies.go: Built-in policies referenced by scenarios
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/overtime"
)

// DemoEmployee owns every scenario's shifts.
const DemoEmployee generic.EntityID = "demo-employee"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	shifts   []overtime.RawShift
	holidays []generic.Holiday
}

func week(start, end, brk string, dates ...string) []overtime.RawShift {
	shifts := make([]overtime.RawShift, len(dates))
	for i, d := range dates {
		shifts[i] = overtime.RawShift{Date: d, Start: start, End: end, Break: brk}
	}
	return shifts
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "standard-week",
			Name:        "Standard Week",
			Description: "Five 9-to-6 days with an hour's break: all standard time",
			PolicyID:    "default",
			From:        "2025-03-10",
			To:          "2025-03-14",
		},
		shifts: week("09:00", "18:00", "60", "2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13", "2025-03-14"),
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "evening-overrun",
			Name:        "Evening Overrun",
			Description: "Late shifts crossing the 8-hour threshold and 22:00",
			PolicyID:    "default",
			From:        "2025-03-10",
			To:          "2025-03-12",
		},
		shifts: []overtime.RawShift{
			{Date: "2025-03-10", Start: "14:00", End: "23:30", Break: "30"},
			{Date: "2025-03-11", Start: "09:00", End: "20:00", Break: "60"},
			{Date: "2025-03-12", Start: "13:00", End: "01:00", Net: "10h 30m"},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "holiday-work",
			Name:        "Holiday Work",
			Description: "Saturday, holiday-night and long holiday shifts with night stacking",
			PolicyID:    "kr-labor",
			From:        "2025-03-01",
			To:          "2025-03-03",
		},
		shifts: []overtime.RawShift{
			{Date: "2025-03-01", Start: "10:00", End: "18:00", Break: "0"},
			{Date: "2025-03-02", Start: "22:00", End: "02:00", Break: "0"},
			{Date: "2025-03-03", Start: "14:00", End: "02:00", Break: "0"},
		},
		holidays: []generic.Holiday{
			{Date: generic.NewTimePoint(2025, time.March, 3), Name: "Substitute Holiday"},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "deficit-offset",
			Name:        "Deficit Offset",
			Description: "A 6-hour Monday cancels Tuesday's 2 hours of overtime",
			PolicyID:    "default",
			From:        "2025-03-10",
			To:          "2025-03-11",
		},
		shifts: []overtime.RawShift{
			{Date: "2025-03-10", Start: "09:00", End: "15:00", Break: "0"},
			{Date: "2025-03-11", Start: "08:00", End: "18:00", Break: "0"},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "night-shift",
			Name:        "Night Shift",
			Description: "Cross-midnight shifts with the break spread across the span",
			PolicyID:    "proportional-break",
			From:        "2025-03-10",
			To:          "2025-03-15",
		},
		shifts: week("20:00", "06:30", "60", "2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13", "2025-03-14", "2025-03-15"),
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	s, _ := findScenario(current)
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the database and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.loadScenario(ctx, s); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = s.ID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "loaded",
		"scenario":    s.ID,
		"employee_id": string(DemoEmployee),
		"policy_id":   s.PolicyID,
		"from":        s.From,
		"to":          s.To,
	})
}

// ResetDatabase clears all stored data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// reset clears the store and drops stored policies from the cache.
func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = ""
	h.seedPresets()
	return nil
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) error {
	for _, hol := range s.holidays {
		if _, err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}
	for i, raw := range s.shifts {
		date, err := generic.ParseDate(raw.Date)
		if err != nil {
			return fmt.Errorf("shift %d: %w", i, err)
		}
		err = h.Store.Put(ctx, generic.StoredShift{
			EntityID: DemoEmployee,
			Date:     date,
			Start:    raw.Start,
			End:      raw.End,
			Break:    raw.Break,
			Net:      raw.Net,
			Source:   "scenario",
		})
		if err != nil {
			return err
		}
	}
	return nil
}
