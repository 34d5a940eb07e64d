package pipeline

import (
	"context"
	"strings"

	"github.com/tuannvm/ticketsmith/internal/agents"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/models"
)

// DecomposeTasks breaks a ticket into ordered steps and appends them to the text
func (o *Orchestrator) DecomposeTasks(ctx context.Context, text string) (models.TaskResult, error) {
	log.Infof("Breaking down tasks from the ticket description")
	out, err := agents.Run[agents.TaskBreakdown](ctx, o.runner, o.catalog.TaskDecomposer, text)
	if err != nil {
		return models.TaskResult{}, err
	}
	steps := out.Steps
	if steps == nil {
		steps = []string{}
	}
	return models.TaskResult{
		Output: InsertTaskBreakdown(text, steps),
		Tasks:  steps,
	}, nil
}

// InsertTaskBreakdown appends a task block with one bullet per step.
// Text that already ends in a breakdown gets a second one.
func InsertTaskBreakdown(text string, steps []string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(text))
	sb.WriteString("\n\n")
	sb.WriteString(taskHeader)
	sb.WriteString("\n")
	for _, step := range steps {
		sb.WriteString("- ")
		sb.WriteString(step)
		sb.WriteString("\n")
	}
	return sb.String()
}
