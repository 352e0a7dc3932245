package services

import (
	"context"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/store"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	store     store.Store
	publisher EventPublisher
	now       func() time.Time
}

// NewTransactionService creates a new TransactionServicer. publisher may be
// nil, in which case no events are emitted.
func NewTransactionService(s store.Store, publisher EventPublisher) TransactionServicer {
	return &transactionService{
		store:     s,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateTransaction applies defaults and stores a new transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, fields models.TransactionPatch) (*models.Transaction, error) {
	if fields.Amount == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount is required")
	}
	if fields.Description == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}

	transaction := &models.Transaction{
		Type:     models.TransactionTypeExpense,
		Category: models.DefaultCategory,
		Date:     s.now(),
	}
	normalize(fields, true).Apply(transaction)
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.Add(ctx, transaction)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, amqp.ActionCreated, created)
	return created, nil
}

// ListTransactions returns all transactions, newest first.
func (s *transactionService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.store.List(ctx)
}

// GetTransaction returns a single transaction.
func (s *transactionService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.Get(ctx, id)
}

// UpdateTransaction changes the supplied fields and keeps the others.
func (s *transactionService) UpdateTransaction(ctx context.Context, id string, fields models.TransactionPatch) (*models.Transaction, error) {
	patch := normalize(fields, false)
	if patch.IsEmpty() {
		return s.store.Get(ctx, id)
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, amqp.ActionUpdated, updated)
	return updated, nil
}

// DeleteTransaction removes a transaction and returns it.
func (s *transactionService) DeleteTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, amqp.ActionDeleted, deleted)
	return deleted, nil
}

// GetSummary aggregates the full transaction set against the service clock.
func (s *transactionService) GetSummary(ctx context.Context) (*analytics.Summary, error) {
	transactions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	summary := analytics.Summarize(transactions, s.now())
	return &summary, nil
}

// Ping reports whether the store is reachable.
func (s *transactionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// normalize is the single place where incoming fields are cleaned up:
// text is trimmed, type is lower-cased and a blank category becomes the
// default. On create a blank type also falls back to the default.
func normalize(fields models.TransactionPatch, creating bool) models.TransactionPatch {
	out := fields

	if fields.Description != nil {
		desc := strings.TrimSpace(*fields.Description)
		out.Description = &desc
	}

	if fields.Type != nil {
		txType := models.TransactionType(strings.ToLower(strings.TrimSpace(string(*fields.Type))))
		out.Type = &txType
		if txType == "" && creating {
			out.Type = nil
		}
	}

	if fields.Category != nil {
		category := strings.TrimSpace(*fields.Category)
		if category == "" {
			category = models.DefaultCategory
		}
		out.Category = &category
	}

	if fields.Date != nil && fields.Date.IsZero() {
		out.Date = nil
	}

	return out
}

// publish emits an event for a committed change. Failures are logged and
// never propagate, since the change itself has already succeeded.
func (s *transactionService) publish(ctx context.Context, action amqp.Action, tx *models.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, *tx)); err != nil {
		logger.Get().Errorw("failed to publish transaction event",
			"error", err,
			"action", action,
			"transaction_id", tx.ID,
		)
	}
}
