package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/tuannvm/ticketsmith/internal/guardrail"
)

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " " + suffix
	return s
}

func printHeader(title string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Println()
	cyan.Println(title)
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", msg)
}

func printWarning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", msg)
}

// reportFailure prints a pipeline error and returns it for cobra's exit status.
// Guardrail trips get the user-facing wording for the stage that produced them.
func reportFailure(tripMsg string, err error) error {
	red := color.New(color.FgRed, color.Bold)
	if errors.Is(err, guardrail.ErrTripwire) {
		red.Printf("✗ %s\n", tripMsg)
		fmt.Printf("  %v\n", err)
		return err
	}
	red.Printf("✗ %v\n", err)
	return err
}
