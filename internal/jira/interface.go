package jira

import (
	"context"

	"github.com/tuannvm/ticketsmith/internal/models"
)

// ClientInterface defines the Jira operations the pipelines need
type ClientInterface interface {
	GetTicket(ctx context.Context, key string) (*models.JiraTicket, error)
	PostComment(ctx context.Context, key, comment string) (*models.JiraComment, error)
}
