// Package a2a exposes the ticket pipelines as an A2A agent.
package a2a

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	"trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	"github.com/tuannvm/ticketsmith/internal/common"
	"github.com/tuannvm/ticketsmith/internal/config"
	"github.com/tuannvm/ticketsmith/internal/guardrail"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/models"
)

// Skill identifiers accepted by the processor
const (
	SkillEnhanceTicket  = "enhance-ticket"
	SkillDecomposeTasks = "decompose-tasks"
	SkillGenerateTests  = "generate-tests"
)

// Pipeline is the set of workflows the processor can run
type Pipeline interface {
	EnhanceTicket(ctx context.Context, description string) (string, error)
	DecomposeTasks(ctx context.Context, text string) (models.TaskResult, error)
	GenerateTests(ctx context.Context, text string) (models.TestSuite, error)
}

// TicketProcessor implements the TaskProcessor interface from trpc-a2a-go
type TicketProcessor struct {
	pipeline Pipeline
}

// NewTicketProcessor creates a new TicketProcessor
func NewTicketProcessor(p Pipeline) *TicketProcessor {
	return &TicketProcessor{pipeline: p}
}

// Skills describes the processor's skills for the agent card
func Skills() []server.AgentSkill {
	return []server.AgentSkill{
		{
			ID:          SkillEnhanceTicket,
			Name:        "Enhance ticket",
			Description: common.StringPtr("Structure a raw ticket description and add PM, developer, QA, security and design review comments"),
			Tags:        []string{"jira", "ticket"},
			Examples:    []string{"As a user, I want to reset my password, so that I can log in again"},
		},
		{
			ID:          SkillDecomposeTasks,
			Name:        "Decompose tasks",
			Description: common.StringPtr("Break a ticket into small technical tasks and append them to the ticket"),
			Tags:        []string{"jira", "planning"},
		},
		{
			ID:          SkillGenerateTests,
			Name:        "Generate tests",
			Description: common.StringPtr("Generate unit, integration and end-to-end test skeletons from a ticket"),
			Tags:        []string{"testing"},
		},
	}
}

// Process implements the TaskProcessor interface from trpc-a2a-go
func (p *TicketProcessor) Process(ctx context.Context, taskID string, message protocol.Message, handle taskmanager.TaskHandle) error {
	log.Infof("Received task with ID: %s", taskID)

	req, err := common.ExtractSkillRequest(message, SkillEnhanceTicket)
	if err != nil {
		return fmt.Errorf("failed to extract skill request: %w", err)
	}

	if err := handle.UpdateStatus(protocol.TaskState("working"), nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Infof("Running skill %s for task %s", req.Skill, taskID)
	parts, err := p.run(ctx, req)
	if err != nil {
		if errors.Is(err, guardrail.ErrTripwire) {
			// A tripped guardrail is a result, not a processing failure
			log.Warnf("Task %s stopped by guardrail: %v", taskID, err)
			msg := &protocol.Message{Parts: []protocol.Part{protocol.NewTextPart(err.Error())}}
			return handle.UpdateStatus(protocol.TaskState("failed"), msg)
		}
		return fmt.Errorf("skill %s failed: %w", req.Skill, err)
	}

	artifact := protocol.Artifact{
		Name:        common.StringPtr(req.Skill),
		Description: common.StringPtr(fmt.Sprintf("Result of %s", req.Skill)),
		Parts:       parts,
	}
	if err := handle.AddArtifact(artifact); err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}

	done := &protocol.Message{Parts: []protocol.Part{protocol.NewTextPart(fmt.Sprintf("%s completed", req.Skill))}}
	if err := handle.UpdateStatus(protocol.TaskState("completed"), done); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	log.Infof("Task %s completed successfully", taskID)
	return nil
}

func (p *TicketProcessor) run(ctx context.Context, req models.SkillRequest) ([]protocol.Part, error) {
	switch req.Skill {
	case SkillEnhanceTicket:
		out, err := p.pipeline.EnhanceTicket(ctx, req.Content)
		if err != nil {
			return nil, err
		}
		return []protocol.Part{protocol.NewTextPart(out)}, nil
	case SkillDecomposeTasks:
		result, err := p.pipeline.DecomposeTasks(ctx, req.Content)
		if err != nil {
			return nil, err
		}
		return []protocol.Part{protocol.NewTextPart(result.Output), dataPart(result)}, nil
	case SkillGenerateTests:
		suite, err := p.pipeline.GenerateTests(ctx, req.Content)
		if err != nil {
			return nil, err
		}
		return []protocol.Part{dataPart(suite)}, nil
	default:
		return nil, fmt.Errorf("unknown skill: %s", req.Skill)
	}
}

func dataPart(v interface{}) *protocol.DataPart {
	return &protocol.DataPart{
		Type: "data",
		Data: v,
		Metadata: map[string]interface{}{
			"content-type": "application/json",
		},
	}
}

// NewServer wires a TicketProcessor into an A2A server using the shared setup
func NewServer(cfg *config.Config, p Pipeline) (*server.A2AServer, error) {
	return common.SetupServer(common.SetupServerOptions{
		AgentName:    cfg.AgentName,
		AgentVersion: cfg.AgentVersion,
		AgentURL:     cfg.AgentURL,
		AuthType:     cfg.AuthType,
		JWTSecret:    cfg.JWTSecret,
		APIKey:       cfg.APIKey,
		Processor:    NewTicketProcessor(p),
		Skills:       Skills(),
	})
}
