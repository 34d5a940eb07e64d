package jira

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WebhookPayload is the subset of the Jira webhook payload the service reads
type WebhookPayload struct {
	Timestamp    int64      `json:"timestamp"`
	WebhookEvent string     `json:"webhookEvent"`
	Issue        Issue      `json:"issue"`
	User         User       `json:"user"`
	Changelog    *Changelog `json:"changelog,omitempty"`
}

// Issue represents a Jira issue in the webhook
type Issue struct {
	ID     string                 `json:"id"`
	Key    string                 `json:"key"`
	Fields map[string]interface{} `json:"fields"`
}

// User represents a Jira user in the webhook
type User struct {
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

// Changelog represents changes made in a Jira issue update
type Changelog struct {
	Items []ChangelogItem `json:"items"`
}

// ChangelogItem represents a single change in a Jira changelog
type ChangelogItem struct {
	Field      string `json:"field"`
	FromString string `json:"fromString"`
	ToString   string `json:"toString"`
}

// WebhookEvent is the normalised form of a Jira webhook delivery
type WebhookEvent struct {
	TicketID    string            `json:"ticketId"`
	Event       string            `json:"event"` // "created", "updated", "commented", etc.
	ProjectKey  string            `json:"projectKey"`
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	UserName    string            `json:"userName"`
	UserEmail   string            `json:"userEmail"`
	Changes     map[string]string `json:"changes,omitempty"`
	Timestamp   string            `json:"timestamp"`
}

// TransformJiraWebhook converts a Jira webhook payload to a WebhookEvent
func TransformJiraWebhook(payload []byte) (*WebhookEvent, error) {
	var hook WebhookPayload
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if hook.Issue.Key == "" {
		return nil, fmt.Errorf("webhook payload has no issue key")
	}

	event := &WebhookEvent{
		TicketID:    hook.Issue.Key,
		Event:       eventType(hook.WebhookEvent),
		Summary:     stringField(hook.Issue.Fields, "summary"),
		Description: stringField(hook.Issue.Fields, "description"),
		UserName:    hook.User.Name,
		UserEmail:   hook.User.EmailAddress,
	}

	// Extract project key from ticket key (e.g., "JRA" from "JRA-20002")
	if i := strings.LastIndex(hook.Issue.Key, "-"); i > 0 {
		event.ProjectKey = hook.Issue.Key[:i]
	}

	if hook.Timestamp > 0 {
		event.Timestamp = time.UnixMilli(hook.Timestamp).UTC().Format(time.RFC3339)
	} else {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	if hook.Changelog != nil && len(hook.Changelog.Items) > 0 {
		event.Changes = make(map[string]string, len(hook.Changelog.Items))
		for _, item := range hook.Changelog.Items {
			event.Changes[item.Field] = item.ToString
		}
	}

	return event, nil
}

// eventType extracts the simplified event type from the full webhook event
func eventType(webhookEvent string) string {
	switch webhookEvent {
	case "jira:issue_created":
		return "created"
	case "jira:issue_updated":
		return "updated"
	case "jira:issue_deleted":
		return "deleted"
	case "comment_created":
		return "commented"
	default:
		if parts := strings.SplitN(webhookEvent, ":", 2); len(parts) == 2 {
			return parts[1]
		}
		return webhookEvent
	}
}

func stringField(fields map[string]interface{}, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
