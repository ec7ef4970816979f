/*
errors.go - Centralized error types for the overtime engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors - A malformed or inconsistent shift record. Reported
     per record; the batch continues.
  2. Configuration errors - Missing or contradictory policy options. Fatal;
     nothing is evaluated.
  3. Oracle errors - The holiday oracle could not answer for a date. Attached
     to that shift's evaluation as a warning.
  4. Period errors - Aggregation-level problems (duplicate dates, nothing
     to aggregate). One error names every offending date.

USAGE:
  if errors.Is(err, generic.ErrValidation) {
      // show the record as rejected
  }

  var perr *generic.PeriodError
  if errors.As(err, &perr) {
      log.Printf("duplicate dates: %v", perr.Dates)
  }

SEE ALSO:
  - overtime/record.go: Produces ValidationError
  - overtime/policy.go: Produces ConfigurationError
  - overtime/aggregator.go: Produces PeriodError
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for a shift record that cannot be accepted.
	ErrValidation = errors.New("invalid shift record")

	// ErrConfiguration is returned when policy options are missing or contradictory.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrOracle is returned when the holiday oracle cannot classify a date.
	ErrOracle = errors.New("holiday oracle failed")

	// ErrDuplicateDate is returned when a period holds two records for one date.
	ErrDuplicateDate = errors.New("duplicate shift date in period")

	// ErrEmptyPeriod is returned when there is nothing to aggregate.
	ErrEmptyPeriod = errors.New("no accepted shifts in period")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrNotFound is returned when a referenced policy, holiday or shift doesn't exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes why one shift record was rejected.
type ValidationError struct {
	Field  string // e.g. "date", "start", "break"
	Value  string // offending input, if any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConfigurationError names the policy option that is missing or contradictory.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Option, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// OracleError records a failed holiday lookup. The shift is still evaluated
// using the policy's fallback day classification.
type OracleError struct {
	Date     TimePoint
	Fallback string // day classification used instead, e.g. "working"
	Err      error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("holiday lookup for %s failed, treated as %s day: %v", e.Date, e.Fallback, e.Err)
}

func (e *OracleError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrOracle}
	}
	return []error{ErrOracle, e.Err}
}

// PeriodErrorCode classifies aggregation failures.
type PeriodErrorCode string

const (
	PeriodDuplicateDates PeriodErrorCode = "duplicate_dates"
	PeriodEmpty          PeriodErrorCode = "empty_period"
)

// PeriodError is a single aggregation-level failure naming the offending dates.
type PeriodError struct {
	Code  PeriodErrorCode
	Dates []TimePoint
}

func (e *PeriodError) Error() string {
	if len(e.Dates) == 0 {
		return string(e.Code)
	}
	dates := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		dates[i] = d.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, strings.Join(dates, ", "))
}

func (e *PeriodError) Unwrap() error {
	if e.Code == PeriodEmpty {
		return ErrEmptyPeriod
	}
	return ErrDuplicateDate
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrDuplicateDate) ||
		errors.Is(err, ErrEmptyPeriod) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
