// Package pipeline sequences agent calls into the ticket, task and test workflows.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/tuannvm/ticketsmith/internal/agents"
	"github.com/tuannvm/ticketsmith/internal/guardrail"
	"github.com/tuannvm/ticketsmith/internal/llm"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/models"
)

const (
	perspectiveHeader = "[perspective_comments]:"
	taskHeader        = "[task_breakdown]:"

	// FinalNotes closes every composed ticket
	FinalNotes = "[final_notes]: Please review all agent comments before finalizing this ticket in JIRA."
)

// Orchestrator runs the ticket, task and test workflows
type Orchestrator struct {
	runner  *agents.Runner
	catalog *agents.Catalog
	policy  guardrail.Policy

	ticketInput guardrail.Guardrail
	readiness   guardrail.Guardrail
	clarity     guardrail.Guardrail
}

// New creates an Orchestrator. A nil catalog means agents.DefaultCatalog().
func New(client llm.Client, catalog *agents.Catalog, policy guardrail.Policy) *Orchestrator {
	if catalog == nil {
		catalog = agents.DefaultCatalog()
	}
	return &Orchestrator{
		runner:      agents.NewRunner(client),
		catalog:     catalog,
		policy:      policy,
		ticketInput: guardrail.TicketInput(catalog.TicketGuardrail),
		readiness:   guardrail.TicketReadiness(catalog.ReadinessCheck),
		clarity:     guardrail.TestClarity(catalog.ClarityGuardrail),
	}
}

// Catalog returns the agents the orchestrator runs
func (o *Orchestrator) Catalog() *agents.Catalog {
	return o.catalog
}

// EnhanceTicket turns a raw description into a structured, reviewed ticket.
// A failed guardrail yields an empty result and an error matching guardrail.ErrTripwire.
func (o *Orchestrator) EnhanceTicket(ctx context.Context, description string) (string, error) {
	runID := uuid.NewString()

	log.Infof("[%s] Running input guardrail", runID)
	if err := o.ticketInput.Enforce(ctx, o.runner, description); err != nil {
		log.Warnf("[%s] Input rejected: %v", runID, err)
		return "", err
	}

	log.Infof("[%s] Running base %s transformation", runID, o.catalog.TicketMaster.Name)
	base, err := o.runner.Text(ctx, o.catalog.TicketMaster, description)
	if err != nil {
		return "", err
	}

	comments, err := o.Review(ctx, base)
	if err != nil {
		return "", err
	}
	final := ComposeTicket(base, comments)

	log.Infof("[%s] Running final output guardrail check", runID)
	final, _, err = o.readiness.Apply(ctx, o.runner, o.policy, final)
	if err != nil {
		log.Warnf("[%s] Output rejected: %v", runID, err)
		return "", err
	}
	return final, nil
}

// Review collects one comment per reviewer, in the catalog's reviewer order.
// Reviewers run concurrently; the first failure cancels the rest.
func (o *Orchestrator) Review(ctx context.Context, ticket string) ([]models.PerspectiveComment, error) {
	comments := make([]models.PerspectiveComment, len(o.catalog.Reviewers))

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, reviewer := range o.catalog.Reviewers {
		p.Go(func(ctx context.Context) error {
			log.Debugf("Running %s", reviewer.Name)
			out, err := agents.Run[agents.CommentOutput](ctx, o.runner, reviewer, ticket)
			if err != nil {
				return err
			}
			comments[i] = models.PerspectiveComment{Role: reviewer.Name, Comment: out.Comments}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("perspective review failed: %w", err)
	}
	return comments, nil
}

// ComposeTicket joins the structured ticket, the reviewer comments and the final notes
func ComposeTicket(ticket string, comments []models.PerspectiveComment) string {
	var sb strings.Builder
	sb.WriteString(ticket)
	sb.WriteString("\n\n")
	sb.WriteString(perspectiveHeader)
	sb.WriteString("\n")
	for _, c := range comments {
		fmt.Fprintf(&sb, "- [%s]: %s\n", c.Role, c.Comment)
	}
	sb.WriteString("\n")
	sb.WriteString(FinalNotes)
	return sb.String()
}
