// Command otcalc evaluates a timesheet file and prints the overtime report.
//
//	otcalc eval --file shifts.csv --year 2025 --policy kr-labor
//	otcalc eval --file shifts.json --policy ./policy.json --holiday 2025-03-03
//	otcalc policies
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/warp/overtime-engine/logging"
)

// Context is passed to every command's Run.
type Context struct {
	Out    io.Writer
	Logger *log.Logger
}

var CLI struct {
	Version  kong.VersionFlag
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn" env:"OT_LOG_LEVEL"`

	Eval     EvalCmd     `cmd:"" help:"Evaluate a JSON or CSV file of raw shifts." default:"withargs"`
	Policies PoliciesCmd `cmd:"" help:"List built-in policies."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("otcalc"),
		kong.Description("Overtime classification and period aggregation"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": "v0.1.0"},
	)

	logger, closer, err := logging.New(logging.Config{Level: CLI.LogLevel, Prefix: "otcalc"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := ctx.Run(&Context{Out: os.Stdout, Logger: logger}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
