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

var tasksCmd = &cobra.Command{
	Use:   "tasks <file>",
	Short: "Append a task breakdown to a markdown ticket",
	Long: `Break a markdown ticket into technical tasks. The updated ticket is written
next to the source as {date}_{title}_with_tasks.md.`,
	Args: cobra.ExactArgs(1),
	RunE: runTasks,
}

func runTasks(cmd *cobra.Command, args []string) error {
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

	printHeader(fmt.Sprintf("Task breakdown for %s", pipeline.ExtractSummaryName(content)))
	s := newSpinner("Decomposing ticket...")
	s.Start()
	result, err := orchestrator.DecomposeTasks(cmd.Context(), content)
	s.Stop()
	if err != nil {
		return reportFailure("Task decomposition failed.", err)
	}
	printSuccess(fmt.Sprintf("%d tasks", len(result.Tasks)))
	for _, task := range result.Tasks {
		fmt.Printf("  - %s\n", task)
	}

	out, err := store.WriteTaskBreakdown(path, content, result.Output, time.Now())
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Saved to %s", out))
	return nil
}
