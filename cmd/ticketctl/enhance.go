package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannvm/ticketsmith/internal/jira"
	"github.com/tuannvm/ticketsmith/internal/store"
)

var (
	issueKey    string
	postComment bool
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [description]",
	Short: "Turn a raw ticket description into a structured, reviewed ticket",
	Long: `Run the enhancement pipeline on a ticket description and save the result
as markdown with YAML front matter.

Examples:
  # Enhance a description given inline
  ticketctl enhance "As a user, I want to reset my password, so that I can log in"

  # Read the description from stdin
  cat story.txt | ticketctl enhance -

  # Enhance a Jira issue and post the result back as a comment
  ticketctl enhance --issue PROJ-42 --post`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnhance,
}

func init() {
	enhanceCmd.Flags().StringVar(&issueKey, "issue", "", "Jira issue key to read the description from")
	enhanceCmd.Flags().BoolVar(&postComment, "post", false, "Post the enhanced ticket to the Jira issue as a comment")
}

func runEnhance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if postComment && issueKey == "" {
		return fmt.Errorf("--post requires --issue")
	}

	var jiraClient *jira.Client
	if issueKey != "" {
		c, err := jira.NewClient(cfg)
		if err != nil {
			return err
		}
		jiraClient = c
	}

	description, err := readDescription(ctx, jiraClient, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("no ticket description given")
	}

	orchestrator, err := newOrchestrator()
	if err != nil {
		return err
	}

	printHeader("Ticket enhancement")
	s := newSpinner("Running guardrail, transform and reviewers...")
	s.Start()
	out, err := orchestrator.EnhanceTicket(ctx, description)
	s.Stop()
	if err != nil {
		return reportFailure("Ticket processing failed or input was invalid.", err)
	}
	printSuccess("Ticket enhanced")

	path, err := store.WriteEnhancedTicket(cfg.OutputDir, description, out, time.Now())
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Saved to %s", path))

	if postComment {
		comment, err := jiraClient.PostComment(ctx, issueKey, out)
		if err != nil {
			return err
		}
		printSuccess(fmt.Sprintf("Posted comment to %s %s", issueKey, comment.URL))
	}
	return nil
}

func readDescription(ctx context.Context, jiraClient *jira.Client, args []string) (string, error) {
	if jiraClient != nil {
		ticket, err := jiraClient.GetTicket(ctx, issueKey)
		if err != nil {
			return "", err
		}
		return jira.TicketDescription(ticket), nil
	}
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return string(data), nil
}
