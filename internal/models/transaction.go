package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/uuid"
)

// DefaultCategory is assigned when a transaction has no category.
const DefaultCategory = "General"

// AmountPlaces is the number of fractional digits an amount may carry.
const AmountPlaces = 2

func init() {
	// Amounts travel as JSON numbers, matching what browser clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single income or expense entry. Amount is an unsigned
// magnitude; the sign used in balance math comes from Type.
type Transaction struct {
	Base
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Description string          `gorm:"not null" json:"description"`
	Type        TransactionType `gorm:"not null;index" json:"type"`
	Category    string          `gorm:"not null" json:"category"`
	Date        time.Time       `gorm:"index" json:"date"`
}

// Timestamp returns the time used for recency ordering and month bucketing.
// Records stored without a date fall back to the time encoded in their
// UUIDv7 identifier.
func (t *Transaction) Timestamp() time.Time {
	if !t.Date.IsZero() {
		return t.Date
	}
	return uuid.Time(t.ID)
}

// Signed returns the amount with the sign implied by the transaction type.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Validate checks the record invariants. It does not apply defaults.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !t.Amount.Equal(t.Amount.Round(AmountPlaces)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most two decimal places")
	}
	if strings.TrimSpace(t.Description) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !t.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if strings.TrimSpace(t.Category) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	return nil
}

// TransactionPatch holds the mutable fields of a transaction. A nil field is
// left untouched.
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Description *string
	Type        *TransactionType
	Category    *string
	Date        *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Amount == nil && p.Description == nil && p.Type == nil && p.Category == nil && p.Date == nil
}

// Apply copies the non-nil fields of p onto t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
}
