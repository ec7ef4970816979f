/*
Package generic provides the domain-agnostic primitives of the overtime engine.

PURPOSE:
  This package contains the value types every other package builds on:
  hour quantities, calendar dates, clock times, reporting periods, the
  holiday oracle seam and the error taxonomy. None of it knows about
  multiplier bands or netting; that lives in the overtime package.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity of time with a unit (hours or minutes)
  - Identifiers: Type-safe entity and policy IDs

DESIGN PRINCIPLES:
  1. Precision: Amounts use decimal.Decimal; the engine counts whole minutes
     and converts to hours exactly once, when a report is produced
  2. Immutability: Records and evaluations are values; corrections create
     new values
  3. Type Safety: Strong typing for IDs prevents mixing entity/policy IDs

USAGE:
  worked := generic.HoursFromMinutes(510) // 8.5 hours
  paid := worked.Mul(decimal.NewFromFloat(1.5))

SEE ALSO:
  - time.go: TimePoint, ClockTime and holiday lookup
  - period.go: Reporting periods
  - errors.go: Error taxonomy
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity of time with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
)

var minutesPerHour = decimal.NewFromInt(60)

// HoursFromMinutes converts a whole number of minutes to an hour amount.
func HoursFromMinutes(minutes int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(minutes)).Div(minutesPerHour), Unit: UnitHours}
}

// Hours returns zero hours.
func Hours() Amount { return Amount{Value: decimal.Zero, Unit: UnitHours} }

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) && a.Unit == b.Unit }

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Round returns the amount rounded for display. Only presentation code
// should call this.
func (a Amount) Round(places int32) Amount {
	return Amount{Value: a.Value.Round(places), Unit: a.Unit}
}

// Float64 returns the value as a float for DTOs.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntityID string
type PolicyID string
