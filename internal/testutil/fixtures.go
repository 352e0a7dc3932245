package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount parses a decimal literal, failing the test on malformed input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid amount literal %q: %v", s, err)
	}
	return d
}

// NewTransaction builds an unsaved transaction dated now.
func NewTransaction(t *testing.T, txType models.TransactionType, amount, category string) models.Transaction {
	t.Helper()
	return NewTransactionAt(t, txType, amount, category, time.Now())
}

// NewTransactionAt builds an unsaved transaction with the given date.
func NewTransactionAt(t *testing.T, txType models.TransactionType, amount, category string, date time.Time) models.Transaction {
	t.Helper()
	return models.Transaction{
		Amount:      Amount(t, amount),
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Type:        txType,
		Category:    category,
		Date:        date,
	}
}

// CreateTestTransaction inserts a transaction dated now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, txType models.TransactionType, amount, category string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, txType, amount, category, time.Now())
}

// CreateTestTransactionAt inserts a transaction with the given date.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, txType models.TransactionType, amount, category string, date time.Time) *models.Transaction {
	t.Helper()

	tx := NewTransactionAt(t, txType, amount, category, date)
	if err := db.Create(&tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return &tx
}
