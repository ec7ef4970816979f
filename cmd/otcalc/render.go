package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/overtime"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
	holidayStyle = cellStyle.Foreground(lipgloss.Color("214"))
	errorStyle   = cellStyle.Foreground(lipgloss.Color("196"))
)

// hours renders an amount with one decimal, as payroll sheets show it.
func hours(a generic.Amount) string { return a.Value.StringFixed(1) }

func renderReport(r *overtime.Report) string {
	sections := []string{titleStyle.Render(fmt.Sprintf("Policy %s (%s)", r.Policy.ID, r.Policy.Name))}
	if len(r.Rows) > 0 {
		sections = append(sections, renderRows(r.Rows))
	}
	if len(r.Rejected) > 0 {
		sections = append(sections, titleStyle.Render("Rejected"), renderRejected(r.Rejected))
	}
	if r.Totals.Shifts > 0 {
		sections = append(sections, titleStyle.Render("Summary"), renderSummary(r.Totals))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderRows(rows []overtime.Row) string {
	data := make([][]string, len(rows))
	for i, row := range rows {
		var notes []string
		if row.NonWorking {
			notes = append(notes, "holiday")
		}
		for _, w := range row.Warnings {
			notes = append(notes, w.Error())
		}
		data[i] = []string{
			row.Date.String(),
			row.Span(),
			hours(row.Net),
			strconv.Itoa(row.BreakMinutes) + "m",
			hours(row.Standard),
			hours(row.PremiumA),
			hours(row.PremiumB),
			hours(row.PremiumC),
			hours(row.Weighted),
			strings.Join(notes, "; "),
		}
	}

	nonWorking := func(i int) bool { return i >= 0 && i < len(rows) && rows[i].NonWorking }

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Range", "Net", "Break", "x1.0", "x1.5", "x2.0", "x2.5", "Weighted", "Notes").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0 && nonWorking(row):
				return holidayStyle
			case col >= 2 && col <= 8:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func renderRejected(rejected []overtime.Rejection) string {
	data := make([][]string, len(rejected))
	for i, rj := range rejected {
		field := ""
		var verr *generic.ValidationError
		if errors.As(rj.Err, &verr) {
			field = verr.Field
		}
		data[i] = []string{
			strconv.Itoa(rj.Index + 1),
			rj.Raw.Date,
			rj.Raw.Start + "-" + rj.Raw.End,
			field,
			rj.Err.Error(),
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Line", "Date", "Range", "Field", "Reason").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4:
				return errorStyle
			default:
				return cellStyle
			}
		}).
		String()
}

// renderSummary prints total worked time, the netted overtime per rate and
// the payable total.
func renderSummary(t overtime.PeriodTotals) string {
	return strings.Join([]string{
		fmt.Sprintf("1. Total worked: %sh over %d shifts", hours(t.Net), t.Shifts),
		fmt.Sprintf("2. Overtime: x1.5 (%sh, %sh before %sh deficit), x2.0 (%sh), x2.5 (%sh)",
			hours(t.AdjustedPremiumA), hours(t.PremiumA), hours(t.Deficit), hours(t.PremiumB), hours(t.PremiumC)),
		fmt.Sprintf("3. Payable overtime: %sh", hours(t.FinalPayableOvertime)),
	}, "\n")
}

func renderPolicies(policies []overtime.Policy) string {
	data := make([][]string, len(policies))
	for i, p := range policies {
		data[i] = []string{
			string(p.ID),
			p.Name,
			string(p.BreakPlacement),
			p.HolidayNightOnlyBand.String(),
			string(p.OracleFallback),
			strconv.Itoa(p.DailyThresholdMinutes),
			p.NightWindow.String(),
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Break", "Holiday night", "Fallback", "Threshold", "Night").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
