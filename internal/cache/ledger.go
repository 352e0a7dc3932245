// Package cache keeps a client-side copy of the transaction set and derives
// the dashboard summary from it.
package cache

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/client"
	"fintrack/internal/models"
)

// Backend is the remote API the ledger mirrors.
type Backend interface {
	List(ctx context.Context) ([]models.Transaction, error)
	Create(ctx context.Context, in client.TransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, id string, in client.TransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, id string) (*models.Transaction, error)
}

// Ledger mirrors the server's transactions. Local state changes only after
// the server accepted the corresponding request, so a failed call leaves
// the ledger as it was.
type Ledger struct {
	backend Backend

	mu           sync.RWMutex
	transactions []models.Transaction
}

// NewLedger creates an empty ledger backed by b.
func NewLedger(b Backend) *Ledger {
	return &Ledger{backend: b, transactions: []models.Transaction{}}
}

// Load replaces the local state with the server's full list.
func (l *Ledger) Load(ctx context.Context) error {
	txs, err := l.backend.List(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.transactions = append([]models.Transaction{}, txs...)
	l.mu.Unlock()
	return nil
}

// Add creates a transaction and prepends the stored record.
func (l *Ledger) Add(ctx context.Context, in client.TransactionInput) (*models.Transaction, error) {
	created, err := l.backend.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.transactions = append([]models.Transaction{*created}, l.transactions...)
	l.mu.Unlock()
	return created, nil
}

// Update changes a transaction and replaces the local copy with the
// server's version.
func (l *Ledger) Update(ctx context.Context, id string, in client.TransactionInput) (*models.Transaction, error) {
	updated, err := l.backend.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	for i := range l.transactions {
		if l.transactions[i].ID == id {
			l.transactions[i] = *updated
			break
		}
	}
	l.mu.Unlock()
	return updated, nil
}

// Delete removes a transaction locally once the server confirmed it.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	if _, err := l.backend.Delete(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	kept := l.transactions[:0:0]
	for _, tx := range l.transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	l.transactions = kept
	l.mu.Unlock()
	return nil
}

// Transactions returns a copy of the local state in server order.
func (l *Ledger) Transactions() []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.Transaction{}, l.transactions...)
}

// Summary recomputes the dashboard aggregates from the local state.
func (l *Ledger) Summary(now time.Time) analytics.Summary {
	return analytics.Summarize(l.Transactions(), now)
}
