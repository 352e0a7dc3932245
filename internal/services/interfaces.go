package services

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/models"
)

// TransactionServicer defines the contract for transaction-related business logic.
// Every method either completes fully or leaves the store untouched.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, fields models.TransactionPatch) (*models.Transaction, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, fields models.TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (*models.Transaction, error)
	GetSummary(ctx context.Context) (*analytics.Summary, error)
	Ping(ctx context.Context) error
}

// EventPublisher delivers notifications about committed transaction changes.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}
