package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/pipeline"
	"github.com/tuannvm/ticketsmith/internal/store"
)

var testsCmd = &cobra.Command{
	Use:   "tests <file>",
	Short: "Generate unit, integration and end-to-end tests from a markdown ticket",
	Long: `Decompose a markdown ticket, check it is clear enough to test, then generate
one TypeScript file per test category in the tests directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runTests,
}

func runTests(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := store.ReadTicketFile(path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Errorf("Ticket file not found: %s", path)
			return nil
		}
		return err
	}

	orchestrator, err := newOrchestrator()
	if err != nil {
		return err
	}

	stub := pipeline.ExtractSummaryName(content)
	printHeader(fmt.Sprintf("Test generation for %s", stub))
	s := newSpinner("Generating tests...")
	s.Start()
	suite, err := orchestrator.GenerateTests(cmd.Context(), content)
	s.Stop()
	if err != nil {
		return reportFailure("Ticket was marked unclear. Tests were not generated.", err)
	}
	if !suite.Clear {
		printWarning("Ticket was marked unclear; review the generated tests")
	}

	paths, err := store.WriteTestSuite(cfg.TestsDir, stub, suite, time.Now())
	if err != nil {
		return err
	}
	for _, p := range paths {
		printSuccess(fmt.Sprintf("Saved %s", p))
	}
	return nil
}
