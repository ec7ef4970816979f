package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/warp/overtime-engine/factory"
	"github.com/warp/overtime-engine/generic"
	"github.com/warp/overtime-engine/generic/store"
	"github.com/warp/overtime-engine/overtime"
	"github.com/warp/overtime-engine/workerpool"
)

// EvalCmd evaluates one timesheet file.
type EvalCmd struct {
	File             string   `help:"Shifts file (.json or .csv)." required:"" type:"existingfile" short:"f"`
	Year             int      `help:"Year for month/day dates such as 03/14."`
	Policy           string   `help:"Built-in policy ID or path to a policy JSON file." default:"default" short:"p"`
	HolidayNightOnly string   `help:"Band for non-working night minutes under the threshold (premium_a, premium_b)."`
	BreakPlacement   string   `help:"Where unpaid breaks fall (front, back, proportional)."`
	Holiday          []string `help:"Extra non-working date (YYYY-MM-DD); repeatable." placeholder:"DATE"`
	PublicHolidays   bool     `help:"Treat fixed-date public holidays as non-working."`
	Workers          int      `help:"Evaluation goroutines; 0 evaluates serially." default:"0"`
}

func (c *EvalCmd) Run(ctx *Context) error {
	policy, err := c.policy()
	if err != nil {
		return err
	}

	oracle, err := c.oracle()
	if err != nil {
		return err
	}

	raws, err := readShifts(c.File)
	if err != nil {
		return err
	}

	engine := &overtime.Engine{Policy: policy, Oracle: oracle, Logger: ctx.Logger}
	if c.Workers > 0 {
		engine.Pool = workerpool.New(c.Workers, c.Workers*4)
		defer engine.Pool.Close()
	}

	report, runErr := engine.Run(context.Background(), raws, overtime.ParseOptions{Year: c.Year})
	if report == nil {
		return runErr
	}

	// A period error is returned after printing so rejected rows stay visible.
	fmt.Fprintln(ctx.Out, renderReport(report))
	return runErr
}

// policy resolves --policy and applies the override flags.
func (c *EvalCmd) policy() (overtime.Policy, error) {
	var policy overtime.Policy
	if p, ok := overtime.Presets()[generic.PolicyID(c.Policy)]; ok {
		policy = p
	} else {
		data, err := os.ReadFile(c.Policy)
		if err != nil {
			return overtime.Policy{}, fmt.Errorf("policy %q is neither a built-in ID nor a readable file: %w", c.Policy, err)
		}
		parsed, err := factory.NewPolicyFactory().ParsePolicy(string(data))
		if err != nil {
			return overtime.Policy{}, err
		}
		policy = *parsed
	}

	if c.HolidayNightOnly != "" {
		band, err := overtime.ParseBand(c.HolidayNightOnly)
		if err != nil {
			return overtime.Policy{}, &generic.ConfigurationError{Option: "holiday_night_only_band", Reason: err.Error()}
		}
		policy.HolidayNightOnlyBand = band
	}
	if c.BreakPlacement != "" {
		policy.BreakPlacement = overtime.BreakPlacement(c.BreakPlacement)
	}
	return policy, policy.Validate()
}

// oracle builds weekend plus holiday lookups from the flags.
func (c *EvalCmd) oracle() (generic.HolidayOracle, error) {
	calendar := store.NewMemory()
	if c.PublicHolidays {
		for _, h := range generic.FixedPublicHolidays() {
			calendar.AddHoliday(h)
		}
	}
	for _, s := range c.Holiday {
		date, err := generic.ParseDate(s)
		if err != nil {
			return nil, &generic.ValidationError{Field: "holiday", Value: s, Reason: "use YYYY-MM-DD"}
		}
		calendar.AddHoliday(generic.Holiday{Date: date, Name: "holiday"})
	}
	return generic.CalendarOracle{Calendar: calendar}, nil
}

// PoliciesCmd lists built-in policies.
type PoliciesCmd struct{}

func (PoliciesCmd) Run(ctx *Context) error {
	presets := overtime.Presets()
	ids := make([]string, 0, len(presets))
	for id := range presets {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	policies := make([]overtime.Policy, len(ids))
	for i, id := range ids {
		policies[i] = presets[generic.PolicyID(id)]
	}
	fmt.Fprintln(ctx.Out, renderPolicies(policies))
	return nil
}
