/*
handlers.go - HTTP API handlers for the overtime engine

PURPOSE:
  Exposes the overtime engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine pipeline.

ENDPOINTS:
  Evaluation:
    POST   /api/evaluate                           Evaluate an ad-hoc batch

  Employees:
    GET    /api/employees/{id}/shifts              Stored shifts (from, to)
    POST   /api/employees/{id}/shifts              Record raw shifts
    PUT    /api/employees/{id}/shifts/{date}/net   Correct worked time
    DELETE /api/employees/{id}/shifts/{date}       Remove a shift
    GET    /api/employees/{id}/report              Evaluate stored shifts

  Policies:
    GET    /api/policies                           Built-in and stored policies
    POST   /api/policies                           Create policy from JSON
    GET    /api/policies/{id}                      Get one policy

  Holidays:
    GET    /api/holidays                           List holidays
    POST   /api/holidays                           Create holiday
    POST   /api/holidays/defaults                  Add fixed public holidays
    DELETE /api/holidays/{id}                      Delete holiday

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - PolicyFactory: JSON to Policy conversion
  - Pool: Shared worker pool for shift evaluation
  - Cached policies (presets + stored) for quick lookups

REQUEST FLOW:
  1. Parse HTTP request
  2. Resolve policy and holiday oracle
  3. Run the engine (parse, evaluate, aggregate)
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation or configuration errors, invalid input
  - 404: Policy, holiday or shift not found
  - 422: Period cannot be aggregated (duplicate dates, nothing accepted);
         the body still lists rejected shifts
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/warp/overtime-engine/factory"
	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/overtime"
	"github.com/warp/overtime-engine/store/sqlite"
	"github.com/warp/overtime-engine/workerpool"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *sqlite.Store
	PolicyFactory *factory.PolicyFactory
	Pool          *workerpool.WorkerPool
	Logger        *log.Logger

	// CompanyID scopes holiday lookups when a request names none.
	CompanyID string
	// DefaultPolicyID is used when a request names no policy.
	DefaultPolicyID generic.PolicyID

	mu              sync.RWMutex
	policies        map[generic.PolicyID]overtime.Policy
	builtin         map[generic.PolicyID]bool
	currentScenario string
}

// NewHandler creates a new handler with the given store. Built-in policies
// are available immediately.
func NewHandler(store *sqlite.Store) *Handler {
	h := &Handler{
		Store:           store,
		PolicyFactory:   factory.NewPolicyFactory(),
		Logger:          log.Default(),
		DefaultPolicyID: overtime.DefaultPolicy().ID,
	}
	h.seedPresets()
	return h
}

// seedPresets replaces the policy cache with the built-in policies.
// Callers hold mu or own h exclusively.
func (h *Handler) seedPresets() {
	h.policies = make(map[generic.PolicyID]overtime.Policy)
	h.builtin = make(map[generic.PolicyID]bool)
	for id, p := range overtime.Presets() {
		h.policies[id] = p
		h.builtin[id] = true
	}
}

// LoadPolicies loads all stored policies into the cache. A stored policy
// with a built-in ID replaces the built-in.
func (h *Handler) LoadPolicies(ctx context.Context) error {
	records, err := h.Store.ListPolicies(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range records {
		policy, err := h.PolicyFactory.ParsePolicy(r.ConfigJSON)
		if err != nil {
			h.Logger.Warn("skipping invalid stored policy", "id", r.ID, "err", err)
			continue
		}
		h.policies[policy.ID] = *policy
		delete(h.builtin, policy.ID)
	}
	return nil
}

func (h *Handler) policy(id string) (overtime.Policy, error) {
	pid := generic.PolicyID(id)
	if pid == "" {
		pid = h.DefaultPolicyID
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.policies[pid]
	if !ok {
		return overtime.Policy{}, fmt.Errorf("policy %s: %w", pid, generic.ErrNotFound)
	}
	return p, nil
}

func (h *Handler) engine(p overtime.Policy, companyID string) *overtime.Engine {
	if companyID == "" {
		companyID = h.CompanyID
	}
	return &overtime.Engine{
		Policy: p,
		Oracle: generic.CalendarOracle{Calendar: h.Store, CompanyID: companyID},
		Pool:   h.Pool,
		Logger: h.Logger,
	}
}

// =============================================================================
// EVALUATION HANDLERS
// =============================================================================

// Evaluate runs an ad-hoc batch of raw shifts through the engine.
// POST /api/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		policy overtime.Policy
		err    error
	)
	if req.Policy != nil {
		var p *overtime.Policy
		p, err = h.PolicyFactory.FromJSON(*req.Policy)
		if p != nil {
			policy = *p
		}
	} else {
		policy, err = h.policy(req.PolicyID)
	}
	if err != nil {
		writeDomainError(w, "Invalid policy", err)
		return
	}

	report, err := h.engine(policy, req.CompanyID).Run(r.Context(), req.Shifts, overtime.ParseOptions{Year: req.Year})
	writeReport(w, report, err)
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns the stored shifts of an employee.
// GET /api/employees/{id}/shifts?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	entityID := generic.EntityID(chi.URLParam(r, "id"))
	period, err := periodParam(r)
	if err != nil {
		writeDomainError(w, "Invalid period", err)
		return
	}

	shifts, err := h.Store.Range(r.Context(), entityID, period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, toShiftDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordShifts validates and stores raw shifts. Valid shifts are stored even
// when others in the same request are rejected. A second shift for a date
// already seen in the batch is rejected; a shift for a date stored by an
// earlier request replaces it.
// POST /api/employees/{id}/shifts
func (h *Handler) RecordShifts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID := generic.EntityID(chi.URLParam(r, "id"))

	var req RecordShiftsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	source := req.Source
	if source == "" {
		source = "manual"
	}

	resp := RecordShiftsResponse{Stored: []ShiftDTO{}}
	var rejected []overtime.Rejection
	seen := make(map[string]bool, len(req.Shifts))
	for i, raw := range req.Shifts {
		rec, err := overtime.ParseShift(raw, overtime.ParseOptions{Year: req.Year})
		if err != nil {
			rejected = append(rejected, overtime.Rejection{Index: i, Raw: raw, Err: err})
			continue
		}
		if seen[rec.Date().Key()] {
			rejected = append(rejected, overtime.Rejection{Index: i, Raw: raw, Err: &generic.ValidationError{
				Field:  "date",
				Value:  rec.Date().String(),
				Reason: "duplicate date in batch",
			}})
			continue
		}
		seen[rec.Date().Key()] = true
		stored := generic.StoredShift{
			EntityID: entityID,
			Date:     rec.Date(),
			Start:    rec.Start().String(),
			End:      rec.End().String(),
			Break:    strconv.Itoa(rec.BreakMinutes()),
			Net:      overtime.FormatNet(rec.WorkedMinutes()),
			Source:   source,
		}
		if err := h.Store.Put(ctx, stored); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store shift", err)
			return
		}
		resp.Stored = append(resp.Stored, toShiftDTO(stored))
	}
	resp.Rejected = toRejectionDTOs(rejected)

	writeJSON(w, http.StatusCreated, resp)
}

// CorrectNet replaces a stored shift's worked time. The break is recomputed
// as elapsed minus net and the corrected tuple replaces the stored one.
// PUT /api/employees/{id}/shifts/{date}/net
func (h *Handler) CorrectNet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID := generic.EntityID(chi.URLParam(r, "id"))

	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	var req CorrectNetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	net, err := overtime.ParseNetMinutes(req.Net)
	if err != nil {
		writeDomainError(w, "Invalid net time", err)
		return
	}

	stored, err := h.Store.Get(ctx, entityID, date)
	if err != nil {
		writeDomainError(w, "Shift not found", err)
		return
	}
	rec, err := overtime.ParseShift(rawShift(stored), overtime.ParseOptions{})
	if err != nil {
		writeDomainError(w, "Stored shift is invalid", err)
		return
	}
	corrected, err := rec.WithNetMinutes(net)
	if err != nil {
		writeDomainError(w, "Invalid net time", err)
		return
	}

	stored.Break = strconv.Itoa(corrected.BreakMinutes())
	stored.Net = overtime.FormatNet(corrected.WorkedMinutes())
	stored.Source = "correction"
	if err := h.Store.Put(ctx, stored); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store correction", err)
		return
	}

	writeJSON(w, http.StatusOK, toShiftDTO(stored))
}

// DeleteShift removes a stored shift.
// DELETE /api/employees/{id}/shifts/{date}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	entityID := generic.EntityID(chi.URLParam(r, "id"))
	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := h.Store.Delete(r.Context(), entityID, date); err != nil {
		writeDomainError(w, "Failed to delete shift", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// GetReport evaluates an employee's stored shifts over a period.
// GET /api/employees/{id}/report?from=...&to=...|month=YYYY-MM[&cutoff_day=N]&policy_id=...
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID := generic.EntityID(chi.URLParam(r, "id"))

	period, err := periodParam(r)
	if err != nil {
		writeDomainError(w, "Invalid period", err)
		return
	}
	policy, err := h.policy(r.URL.Query().Get("policy_id"))
	if err != nil {
		writeDomainError(w, "Invalid policy", err)
		return
	}

	shifts, err := h.Store.Range(ctx, entityID, period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load shifts", err)
		return
	}
	raws := make([]overtime.RawShift, len(shifts))
	for i, s := range shifts {
		raws[i] = rawShift(s)
	}

	report, err := h.engine(policy, r.URL.Query().Get("company_id")).Run(ctx, raws, overtime.ParseOptions{})
	writeReport(w, report, err)
}

// periodParam resolves the reporting period from the query:
//
//	from=YYYY-MM-DD&to=YYYY-MM-DD   explicit range (either end may be given)
//	month=YYYY-MM                   calendar month
//	month=YYYY-MM&cutoff_day=N      pay month starting on day N of that month
//
// Without parameters the current calendar month (or pay month) is used.
func periodParam(r *http.Request) (generic.Period, error) {
	q := r.URL.Query()

	config := generic.PeriodConfig{Type: generic.PeriodCalendarMonth}
	anchor := generic.Today()

	if s := q.Get("cutoff_day"); s != "" {
		day, err := strconv.Atoi(s)
		if err != nil || day < 1 || day > 28 {
			return generic.Period{}, &generic.ValidationError{Field: "cutoff_day", Value: s, Reason: "must be 1-28"}
		}
		config = generic.PeriodConfig{Type: generic.PeriodPayMonth, CutoffDay: day}
	}
	if s := q.Get("month"); s != "" {
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return generic.Period{}, &generic.ValidationError{Field: "month", Value: s, Reason: "use YYYY-MM"}
		}
		day := 1
		if config.Type == generic.PeriodPayMonth {
			day = config.CutoffDay
		}
		anchor = generic.NewTimePoint(t.Year(), t.Month(), day)
	}
	period := config.PeriodFor(anchor)

	if s := q.Get("from"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			return generic.Period{}, &generic.ValidationError{Field: "from", Value: s, Reason: "use YYYY-MM-DD"}
		}
		period.Start = d
	}
	if s := q.Get("to"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			return generic.Period{}, &generic.ValidationError{Field: "to", Value: s, Reason: "use YYYY-MM-DD"}
		}
		period.End = d
	}
	return period, period.Validate()
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns built-in and stored policies.
// GET /api/policies
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list policies", err)
		return
	}

	stored := make(map[string]sqlite.PolicyRecord, len(records))
	for _, rec := range records {
		stored[rec.ID] = rec
	}

	h.mu.RLock()
	dtos := make([]PolicyDTO, 0, len(h.policies))
	for id, p := range h.policies {
		dto := PolicyDTO{
			ID:      string(id),
			Name:    p.Name,
			Config:  h.PolicyFactory.ToJSON(p),
			Builtin: h.builtin[id],
		}
		if rec, ok := stored[string(id)]; ok {
			dto.Version = rec.Version
			dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
		}
		dtos = append(dtos, dto)
	}
	h.mu.RUnlock()

	sort.Slice(dtos, func(i, j int) bool { return dtos[i].ID < dtos[j].ID })
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePolicy validates and stores a policy.
// POST /api/policies
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy, err := h.PolicyFactory.FromJSON(req.Config)
	if err != nil {
		writeDomainError(w, "Invalid policy configuration", err)
		return
	}

	configJSON, err := h.PolicyFactory.Marshal(*policy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode policy", err)
		return
	}
	record := sqlite.PolicyRecord{
		ID:         string(policy.ID),
		Name:       policy.Name,
		ConfigJSON: configJSON,
	}
	if err := h.Store.SavePolicy(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create policy", err)
		return
	}
	saved, err := h.Store.GetPolicy(r.Context(), record.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload policy", err)
		return
	}

	h.mu.Lock()
	h.policies[policy.ID] = *policy
	delete(h.builtin, policy.ID)
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, PolicyDTO{
		ID:        saved.ID,
		Name:      saved.Name,
		Config:    h.PolicyFactory.ToJSON(*policy),
		Version:   saved.Version,
		CreatedAt: saved.CreatedAt.Format(time.RFC3339),
	})
}

// GetPolicy returns a single policy.
// GET /api/policies/{id}
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	policy, err := h.policy(id)
	if err != nil {
		writeDomainError(w, "Policy not found", err)
		return
	}

	h.mu.RLock()
	builtin := h.builtin[policy.ID]
	h.mu.RUnlock()

	dto := PolicyDTO{
		ID:      string(policy.ID),
		Name:    policy.Name,
		Config:  h.PolicyFactory.ToJSON(policy),
		Builtin: builtin,
	}
	if !builtin {
		if rec, err := h.Store.GetPolicy(r.Context(), id); err == nil {
			dto.Version = rec.Version
			dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays visible to a company.
// GET /api/holidays?company_id=...
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		companyID = h.CompanyID
	}

	holidays, err := h.Store.ListHolidays(r.Context(), companyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Date == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Date and name are required", nil)
		return
	}

	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday, err := h.Store.SaveHoliday(r.Context(), generic.Holiday{
		CompanyID: req.CompanyID,
		Date:      date,
		Name:      req.Name,
		Recurring: req.Recurring,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// AddDefaultHolidays adds the fixed-date public holidays as recurring
// holidays for a company (global when company_id is empty).
// POST /api/holidays/defaults
func (h *Handler) AddDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID string `json:"company_id"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	defaults := generic.FixedPublicHolidays()
	for _, hol := range defaults {
		hol.CompanyID = req.CompanyID
		if _, err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to add holiday "+hol.Name, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "created",
		"count":  len(defaults),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to a status and error code.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, resp := errorResponse(message, err)
	writeJSON(w, status, resp)
}

func errorResponse(message string, err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: message, Details: err.Error()}

	var (
		verr *generic.ValidationError
		cerr *generic.ConfigurationError
		perr *generic.PeriodError
	)
	switch {
	case errors.As(err, &perr):
		resp.Code = string(perr.Code)
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &cerr):
		resp.Code = "configuration"
		return http.StatusBadRequest, resp
	case errors.As(err, &verr):
		resp.Code = "validation"
		return http.StatusBadRequest, resp
	case generic.IsNotFound(err):
		resp.Code = "not_found"
		return http.StatusNotFound, resp
	case generic.IsClientError(err):
		resp.Code = "invalid"
		return http.StatusBadRequest, resp
	default:
		resp.Code = "internal"
		return http.StatusInternalServerError, resp
	}
}

// writeReport writes an engine result. A period error still returns the
// report so rejected shifts can be shown.
func writeReport(w http.ResponseWriter, report *overtime.Report, err error) {
	if report == nil {
		writeDomainError(w, "Evaluation failed", err)
		return
	}
	dto := toReportDTO(report)
	if err != nil {
		status, resp := errorResponse("Period cannot be aggregated", err)
		dto.Error = &resp
		writeJSON(w, status, dto)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}
