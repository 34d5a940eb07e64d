package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jirav2 "github.com/ctreminiom/go-atlassian/v2/jira/v2"
	atlassian "github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"

	"github.com/tuannvm/ticketsmith/internal/config"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/models"
)

// ErrNotConfigured is returned when Jira credentials are missing
var ErrNotConfigured = errors.New("jira is not configured: set JIRA_BASE_URL, JIRA_USERNAME and JIRA_API_TOKEN")

// Client is a Jira REST v2 client backed by go-atlassian
type Client struct {
	baseURL string
	api     *jirav2.Client
}

// NewClient creates a new Jira client with basic authentication
func NewClient(cfg *config.Config) (*Client, error) {
	if !cfg.JiraConfigured() {
		return nil, ErrNotConfigured
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	api, err := jirav2.New(httpClient, cfg.JiraBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}
	api.Auth.SetBasicAuth(cfg.JiraUsername, cfg.JiraAPIToken)

	return &Client{
		baseURL: strings.TrimRight(cfg.JiraBaseURL, "/"),
		api:     api,
	}, nil
}

// GetTicket fetches a Jira ticket by its key
func (c *Client) GetTicket(ctx context.Context, key string) (*models.JiraTicket, error) {
	issue, resp, err := c.api.Issue.Get(ctx, key, []string{"summary", "description", "status", "priority", "issuetype", "labels"}, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to get ticket %s: status %d: %w", key, resp.Code, err)
		}
		return nil, fmt.Errorf("failed to get ticket %s: %w", key, err)
	}
	return toTicket(issue), nil
}

// PostComment posts a comment to a Jira ticket
func (c *Client) PostComment(ctx context.Context, key, comment string) (*models.JiraComment, error) {
	payload := &atlassian.CommentPayloadSchemeV2{Body: comment}

	created, resp, err := c.api.Issue.Comment.Add(ctx, key, payload, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to post comment on %s: status %d: %w", key, resp.Code, err)
		}
		return nil, fmt.Errorf("failed to post comment on %s: %w", key, err)
	}

	jiraComment := &models.JiraComment{
		ID:   created.ID,
		Body: comment,
		URL:  fmt.Sprintf("%s/browse/%s?focusedCommentId=%s", c.baseURL, key, created.ID),
	}
	log.Infof("Posted comment to %s: %s", key, jiraComment.URL)
	return jiraComment, nil
}

func toTicket(issue *atlassian.IssueSchemeV2) *models.JiraTicket {
	ticket := &models.JiraTicket{
		ID:  issue.ID,
		Key: issue.Key,
	}
	fields := issue.Fields
	if fields == nil {
		return ticket
	}
	ticket.Summary = fields.Summary
	ticket.Description = fields.Description
	ticket.Labels = fields.Labels
	if fields.Status != nil {
		ticket.Status = fields.Status.Name
	}
	if fields.Priority != nil {
		ticket.Priority = fields.Priority.Name
	}
	if fields.IssueType != nil {
		ticket.IssueType = fields.IssueType.Name
	}
	return ticket
}

// TicketDescription renders a fetched ticket as pipeline input
func TicketDescription(ticket *models.JiraTicket) string {
	var sb strings.Builder
	if ticket.Summary != "" {
		sb.WriteString(ticket.Summary)
		sb.WriteString("\n\n")
	}
	sb.WriteString(ticket.Description)
	return strings.TrimSpace(sb.String())
}
