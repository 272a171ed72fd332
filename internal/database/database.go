// Package database provides the data access layer for the knowledge base
// catalog and the API audit log.
package database

import (
	"context"

	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/factchecker/veracity/internal/models"
)

// Store defines the interface for data persistence.
type Store interface {
	// Knowledge base catalog
	SaveTopic(ctx context.Context, topic knowledge.Topic) error
	DeleteTopic(ctx context.Context, name string) error
	LoadKnowledgeBase(ctx context.Context) (*knowledge.Base, error)
	ListTopics(ctx context.Context) ([]models.TopicSummary, error)

	// Audit logs
	LogRequest(ctx context.Context, log *models.AuditLog) error
	GetAuditLogs(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)

	// Lifecycle
	Close() error
	Migrate() error
}
