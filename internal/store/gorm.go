package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/uuid"
)

// gormStore keeps transactions in a relational database through GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Add(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	// Dates are compared as text by SQLite, so every row shares one offset.
	t.Date = t.Date.UTC()

	var result *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return classify(err)
		}
		// Re-read so the caller sees the amount as the column stored it.
		created, err := s.find(tx, t.ID)
		if err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func (s *gormStore) List(ctx context.Context) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	if err := s.db.WithContext(ctx).
		Order("date DESC").
		Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, classify(err)
	}
	return transactions, nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*models.Transaction, error) {
	return s.find(s.db.WithContext(ctx), id)
}

// find loads a transaction by id. Malformed identifiers cannot exist in the
// table, so they are reported as not found instead of reaching the driver.
func (s *gormStore) find(db *gorm.DB, id string) (*models.Transaction, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrTransactionNotFound
	}

	var transaction models.Transaction
	if err := db.Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, classify(err)
	}
	return &transaction, nil
}

func (s *gormStore) Update(ctx context.Context, id string, patch models.TransactionPatch) (*models.Transaction, error) {
	var result *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := s.find(tx, id)
		if err != nil {
			return err
		}

		patch.Apply(transaction)
		if err := transaction.Validate(); err != nil {
			return err
		}
		transaction.Date = transaction.Date.UTC()

		if err := tx.Save(transaction).Error; err != nil {
			return classify(err)
		}
		saved, err := s.find(tx, id)
		if err != nil {
			return err
		}
		result = saved
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func (s *gormStore) Delete(ctx context.Context, id string) (*models.Transaction, error) {
	var result *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := s.find(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return classify(err)
		}
		result = transaction
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return classify(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return nil
}
