package jira

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/ticketsmith/internal/models"
)

func TestTransformJiraWebhook(t *testing.T) {
	webhookData, err := os.ReadFile("testdata/jira-webhook.json")
	require.NoError(t, err)

	event, err := TransformJiraWebhook(webhookData)
	require.NoError(t, err)

	assert.Equal(t, "JRA-20002", event.TicketID)
	assert.Equal(t, "updated", event.Event)
	assert.Equal(t, "JRA", event.ProjectKey)
	assert.Equal(t, "brollins", event.UserName)
	assert.Equal(t, "bryansemail at atlassian dot com", event.UserEmail)
	assert.Equal(t, "I feel the need for speed", event.Summary)
	assert.Contains(t, event.Description, "I want to load the board faster")
	assert.Equal(t, "2018-05-07T13:03:57Z", event.Timestamp)

	require.Len(t, event.Changes, 2)
	assert.Equal(t, "A new summary.", event.Changes["summary"])
}

func TestTransformJiraWebhookErrors(t *testing.T) {
	_, err := TransformJiraWebhook([]byte("not json"))
	assert.Error(t, err)

	_, err = TransformJiraWebhook([]byte(`{"webhookEvent": "jira:issue_created", "issue": {}}`))
	assert.Error(t, err)
}

func TestEventType(t *testing.T) {
	assert.Equal(t, "created", eventType("jira:issue_created"))
	assert.Equal(t, "commented", eventType("comment_created"))
	assert.Equal(t, "worklog_updated", eventType("jira:worklog_updated"))
	assert.Equal(t, "custom", eventType("custom"))
}

func TestTicketDescription(t *testing.T) {
	ticket := TicketDescription(&models.JiraTicket{
		Key:         "JRA-1",
		Summary:     "Faster board",
		Description: "As a user, I want to load the board faster, so that I can plan.",
	})
	assert.Equal(t, "Faster board\n\nAs a user, I want to load the board faster, so that I can plan.", ticket)
}
