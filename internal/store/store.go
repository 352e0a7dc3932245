// Package store persists transactions. Implementations enforce record
// invariants at the boundary and translate driver failures into AppErrors:
// unknown identifiers become ErrTransactionNotFound, connectivity problems
// become ErrStoreUnavailable and everything else ErrInternalServer.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// Store is the persistence contract for transactions. Writers are not
// coordinated with each other; the last write wins.
type Store interface {
	// Add stores t and returns it with its identifier assigned.
	Add(ctx context.Context, t *models.Transaction) (*models.Transaction, error)
	// List returns every transaction, newest first.
	List(ctx context.Context) ([]models.Transaction, error)
	Get(ctx context.Context, id string) (*models.Transaction, error)
	// Update applies patch to the transaction with the given id and returns
	// the updated record.
	Update(ctx context.Context, id string, patch models.TransactionPatch) (*models.Transaction, error)
	// Delete removes the transaction and returns the removed record.
	Delete(ctx context.Context, id string) (*models.Transaction, error)
	Ping(ctx context.Context) error
}

// classify maps a driver error onto the application error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.As(err, &netErr),
		mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, mongo.ErrClientDisconnected):
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
