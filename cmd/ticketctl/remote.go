package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"github.com/tuannvm/ticketsmith/internal/a2a"
	"github.com/tuannvm/ticketsmith/internal/common"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/models"
	"github.com/tuannvm/ticketsmith/internal/store"
)

var (
	agentURL      string
	remoteTimeout time.Duration
)

var remoteCmd = &cobra.Command{
	Use:   "remote <skill> <file>",
	Short: "Run a skill on a remote ticketsmith A2A agent",
	Long: fmt.Sprintf(`Send a ticket file to a running A2A agent and print the result.

Skills: %s, %s, %s

Examples:
  ticketctl remote %s ticket.md --agent-url http://localhost:8080`,
		a2a.SkillEnhanceTicket, a2a.SkillDecomposeTasks, a2a.SkillGenerateTests, a2a.SkillDecomposeTasks),
	Args: cobra.ExactArgs(2),
	RunE: runRemote,
}

func init() {
	remoteCmd.Flags().StringVar(&agentURL, "agent-url", "", "A2A agent URL (defaults to AGENT_URL)")
	remoteCmd.Flags().DurationVar(&remoteTimeout, "timeout", 5*time.Minute, "How long to wait for the agent")
}

func runRemote(cmd *cobra.Command, args []string) error {
	skill, path := args[0], args[1]
	switch skill {
	case a2a.SkillEnhanceTicket, a2a.SkillDecomposeTasks, a2a.SkillGenerateTests:
	default:
		return fmt.Errorf("unknown skill: %s", skill)
	}

	content, err := store.ReadTicketFile(path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Errorf("Ticket file not found: %s", path)
			return nil
		}
		return err
	}

	url := agentURL
	if url == "" {
		url = cfg.AgentURL
	}
	client, err := common.SetupA2AClient(cfg, url)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(models.SkillRequest{Skill: skill, Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	params := protocol.SendTaskParams{
		Message: protocol.Message{
			Parts: []protocol.Part{protocol.NewTextPart(string(payload))},
		},
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()

	printHeader(fmt.Sprintf("%s via %s", skill, url))
	s := newSpinner("Waiting for agent...")
	s.Start()
	task, err := common.SendTask(ctx, client, params)
	s.Stop()
	if err != nil {
		return err
	}

	if task.Status.State == protocol.TaskState("failed") {
		return reportFailure("Agent rejected the ticket.", errors.New(common.TaskText(task)))
	}
	printSuccess(fmt.Sprintf("Task %s %s", task.ID, task.Status.State))
	fmt.Println(common.TaskText(task))
	return nil
}
