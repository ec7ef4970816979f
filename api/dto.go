/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

HOURS:
  Every hour figure is derived from exact minute counts and rounded to two
  decimals only here, at the edge. Minute fields carry the exact value.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type
*/
package api

import (
	"errors"

	"github.com/warp/overtime-engine/factory"
	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/overtime"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EvaluateRequest evaluates an ad-hoc batch of raw shifts. Policy, when set,
// takes precedence over PolicyID.
type EvaluateRequest struct {
	PolicyID  string              `json:"policy_id,omitempty"`
	Policy    *factory.PolicyJSON `json:"policy,omitempty"`
	Year      int                 `json:"year,omitempty"`
	CompanyID string              `json:"company_id,omitempty"`
	Shifts    []overtime.RawShift `json:"shifts"`
}

// ReportDTO is an evaluated period.
type ReportDTO struct {
	ID          string         `json:"id"`
	PolicyID    string         `json:"policy_id"`
	PeriodStart string         `json:"period_start,omitempty"`
	PeriodEnd   string         `json:"period_end,omitempty"`
	Rows        []RowDTO       `json:"rows"`
	Rejected    []RejectionDTO `json:"rejected"`
	Totals      *TotalsDTO     `json:"totals,omitempty"`
	Error       *ErrorResponse `json:"error,omitempty"`
}

// RowDTO is one shift's unadjusted breakdown.
type RowDTO struct {
	Date         string   `json:"date"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	BreakMinutes int      `json:"break_minutes"`
	NonWorking   bool     `json:"non_working"`
	Net          float64  `json:"net_hours"`
	Standard     float64  `json:"standard"`
	PremiumA     float64  `json:"premium_a"`
	PremiumB     float64  `json:"premium_b"`
	PremiumC     float64  `json:"premium_c"`
	Deficit      float64  `json:"deficit"`
	Weighted     float64  `json:"weighted"`
	Warnings     []string `json:"warnings,omitempty"`
}

// TotalsDTO is the netted period summary.
type TotalsDTO struct {
	Shifts               int     `json:"shifts"`
	Standard             float64 `json:"standard"`
	PremiumA             float64 `json:"premium_a"`
	PremiumB             float64 `json:"premium_b"`
	PremiumC             float64 `json:"premium_c"`
	Net                  float64 `json:"net"`
	Deficit              float64 `json:"deficit"`
	AdjustedPremiumA     float64 `json:"adjusted_premium_a"`
	FinalPayableOvertime float64 `json:"final_payable_overtime"`
	Weighted             float64 `json:"weighted"`
	NetMinutes           int     `json:"net_minutes"`
	DeficitMinutes       int     `json:"deficit_minutes"`
}

// RejectionDTO is a raw shift that failed validation.
type RejectionDTO struct {
	Index  int               `json:"index"`
	Shift  overtime.RawShift `json:"shift"`
	Field  string            `json:"field,omitempty"`
	Reason string            `json:"reason"`
}

// PolicyDTO represents a policy in API responses.
type PolicyDTO struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Config    factory.PolicyJSON `json:"config"`
	Version   int                `json:"version"`
	Builtin   bool               `json:"builtin,omitempty"`
	CreatedAt string             `json:"created_at,omitempty"`
}

// CreatePolicyRequest is the request to create a policy.
type CreatePolicyRequest struct {
	Config factory.PolicyJSON `json:"config"`
}

// HolidayDTO represents a holiday.
type HolidayDTO struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// CreateHolidayRequest is the request to create a holiday.
type CreateHolidayRequest struct {
	CompanyID string `json:"company_id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// ShiftDTO is a stored raw shift.
type ShiftDTO struct {
	Date   string `json:"date"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Break  string `json:"break,omitempty"`
	Net    string `json:"net,omitempty"`
	Source string `json:"source,omitempty"`
}

// RecordShiftsRequest stores raw shifts for an employee.
type RecordShiftsRequest struct {
	Year   int                 `json:"year,omitempty"`
	Source string              `json:"source,omitempty"`
	Shifts []overtime.RawShift `json:"shifts"`
}

// RecordShiftsResponse reports what was stored and what was rejected.
type RecordShiftsResponse struct {
	Stored   []ShiftDTO     `json:"stored"`
	Rejected []RejectionDTO `json:"rejected"`
}

// CorrectNetRequest replaces a shift's worked time.
type CorrectNetRequest struct {
	Net string `json:"net"`
}

// ScenarioDTO describes a demo timesheet.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PolicyID    string `json:"policy_id"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func hours(a generic.Amount) float64 { return a.Round(2).Float64() }

func toReportDTO(r *overtime.Report) ReportDTO {
	dto := ReportDTO{
		ID:       r.ID,
		PolicyID: string(r.Policy.ID),
		Rows:     make([]RowDTO, 0, len(r.Rows)),
		Rejected: toRejectionDTOs(r.Rejected),
	}
	if !r.Period.Start.IsZero() {
		dto.PeriodStart = r.Period.Start.String()
		dto.PeriodEnd = r.Period.End.String()
	}
	for _, row := range r.Rows {
		dto.Rows = append(dto.Rows, toRowDTO(row))
	}
	if r.Totals.Shifts > 0 {
		dto.Totals = toTotalsDTO(r.Totals)
	}
	return dto
}

func toRowDTO(row overtime.Row) RowDTO {
	dto := RowDTO{
		Date:         row.Date.String(),
		Start:        row.Start.String(),
		End:          row.End.String(),
		BreakMinutes: row.BreakMinutes,
		NonWorking:   row.NonWorking,
		Net:          hours(row.Net),
		Standard:     hours(row.Standard),
		PremiumA:     hours(row.PremiumA),
		PremiumB:     hours(row.PremiumB),
		PremiumC:     hours(row.PremiumC),
		Deficit:      hours(row.Deficit),
		Weighted:     hours(row.Weighted),
	}
	for _, w := range row.Warnings {
		dto.Warnings = append(dto.Warnings, w.Error())
	}
	return dto
}

func toTotalsDTO(t overtime.PeriodTotals) *TotalsDTO {
	return &TotalsDTO{
		Shifts:               t.Shifts,
		Standard:             hours(t.Standard),
		PremiumA:             hours(t.PremiumA),
		PremiumB:             hours(t.PremiumB),
		PremiumC:             hours(t.PremiumC),
		Net:                  hours(t.Net),
		Deficit:              hours(t.Deficit),
		AdjustedPremiumA:     hours(t.AdjustedPremiumA),
		FinalPayableOvertime: hours(t.FinalPayableOvertime),
		Weighted:             hours(t.Weighted),
		NetMinutes:           t.Minutes.Total(),
		DeficitMinutes:       t.DeficitMinutes,
	}
}

func toRejectionDTOs(rejected []overtime.Rejection) []RejectionDTO {
	dtos := make([]RejectionDTO, 0, len(rejected))
	for _, rj := range rejected {
		dto := RejectionDTO{Index: rj.Index, Shift: rj.Raw, Reason: rj.Err.Error()}
		var verr *generic.ValidationError
		if errors.As(rj.Err, &verr) {
			dto.Field = verr.Field
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:        h.ID,
		CompanyID: h.CompanyID,
		Date:      h.Date.String(),
		Name:      h.Name,
		Recurring: h.Recurring,
	}
}

func toShiftDTO(s generic.StoredShift) ShiftDTO {
	return ShiftDTO{
		Date:   s.Date.String(),
		Start:  s.Start,
		End:    s.End,
		Break:  s.Break,
		Net:    s.Net,
		Source: s.Source,
	}
}

func rawShift(s generic.StoredShift) overtime.RawShift {
	return overtime.RawShift{Date: s.Date.String(), Start: s.Start, End: s.End, Break: s.Break, Net: s.Net}
}
