package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/tuannvm/ticketsmith/internal/agents"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/models"
)

// GenerateTests decomposes a ticket, checks it for clarity and generates
// unit, integration and end-to-end test code from it.
func (o *Orchestrator) GenerateTests(ctx context.Context, text string) (models.TestSuite, error) {
	tasks, err := o.DecomposeTasks(ctx, text)
	if err != nil {
		return models.TestSuite{}, err
	}

	log.Infof("Running clarity guardrail check")
	ticket, verdict, err := o.clarity.Apply(ctx, o.runner, o.policy, tasks.Output)
	if err != nil {
		return models.TestSuite{}, err
	}
	if !verdict.Passed {
		log.Warnf("Ticket content is unclear, generating skeletons for manual completion")
	}

	outputs, err := o.generate(ctx, ticket)
	if err != nil {
		return models.TestSuite{}, err
	}
	return models.TestSuite{
		Outputs:   outputs,
		Tasks:     tasks.Tasks,
		Ticket:    ticket,
		Clear:     verdict.Passed,
		Reasoning: verdict.Reasoning,
	}, nil
}

func (o *Orchestrator) generate(ctx context.Context, ticket string) (models.TestOutputs, error) {
	var (
		mu      sync.Mutex
		outputs models.TestOutputs
	)

	for _, category := range agents.TestCategories {
		if _, ok := o.catalog.TestGenerators[category]; !ok {
			return outputs, fmt.Errorf("no test generator configured for %s tests", category)
		}
	}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, category := range agents.TestCategories {
		agent := o.catalog.TestGenerators[category]
		p.Go(func(ctx context.Context) error {
			log.Infof("Generating %s tests", category)
			out, err := agents.Run[agents.TestOutput](ctx, o.runner, agent, ticket)
			if err != nil {
				return err
			}
			mu.Lock()
			outputs.Set(category, out.TestCode)
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return models.TestOutputs{}, fmt.Errorf("test generation failed: %w", err)
	}
	return outputs, nil
}
