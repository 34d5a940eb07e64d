package common

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/client"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/tuannvm/ticketsmith/internal/config"
	log "github.com/tuannvm/ticketsmith/internal/logging"
)

// SetupA2AClient creates and configures an A2A client with appropriate authentication
func SetupA2AClient(cfg *config.Config, targetURL string) (*client.A2AClient, error) {
	var a2aClient *client.A2AClient
	var err error

	switch cfg.AuthType {
	case "apikey":
		log.Debugf("Using API key authentication for A2A client (API key length: %d)", len(cfg.APIKey))
		a2aClient, err = client.NewA2AClient(targetURL, client.WithAPIKeyAuth(cfg.APIKey, "X-API-Key"))
	default:
		a2aClient, err = client.NewA2AClient(targetURL)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create A2A client: %w", err)
	}

	return a2aClient, nil
}

// SendTask synchronously sends a task via JSON-RPC and returns the finished task
func SendTask(ctx context.Context, a2aClient *client.A2AClient, params protocol.SendTaskParams) (*protocol.Task, error) {
	task, err := a2aClient.SendTasks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("SendTasks RPC failed: %w", err)
	}
	return task, nil
}

// TaskText joins the text parts of a task's status message and artifacts
func TaskText(task *protocol.Task) string {
	var parts []protocol.Part
	if task.Status.Message != nil {
		parts = append(parts, task.Status.Message.Parts...)
	}
	for _, art := range task.Artifacts {
		parts = append(parts, art.Parts...)
	}
	return MessageText(protocol.Message{Parts: parts})
}
