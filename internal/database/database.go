package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/store"
	"fintrack/migrations"
)

const connectTimeout = 10 * time.Second

// Manager handles database operations
type Manager struct {
	config *Config
	db     *gorm.DB
	client *mongo.Client
	coll   *mongo.Collection
}

// NewManager connects to the store selected by config.Driver.
func NewManager(ctx context.Context, config *Config) (*Manager, error) {
	m := &Manager{config: config}

	var err error
	switch config.Driver {
	case DriverMongo:
		err = m.connectMongo(ctx)
	case DriverSQLite:
		m.db, err = gorm.Open(sqlite.Open(config.SQLitePath), &gorm.Config{})
		if err != nil {
			err = fmt.Errorf("failed to open sqlite database: %w", err)
		}
	default:
		err = m.connectPostgres()
	}
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("store connected", "driver", config.Driver)
	return m, nil
}

func (m *Manager) connectPostgres() error {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  m.config.DSN(),
		PreferSimpleProtocol: true, // Required for Supabase Supavisor; harmless for direct connections
	}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	m.db = db
	return nil
}

func (m *Manager) connectMongo(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(m.config.MongoURI).
		SetServerSelectionTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m.client = client
	m.coll = client.Database(m.config.MongoDatabase).Collection(m.config.MongoCollection)
	return nil
}

// RunMigrations brings the schema up to date. PostgreSQL uses the embedded
// SQL migrations, SQLite is auto-migrated from the model and MongoDB only
// needs its indexes.
func (m *Manager) RunMigrations(ctx context.Context) error {
	logger.Get().Info("Running database migrations...")

	switch m.config.Driver {
	case DriverMongo:
		if err := store.EnsureIndexes(ctx, m.coll); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	case DriverSQLite:
		if err := m.db.WithContext(ctx).AutoMigrate(&models.Transaction{}); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	default:
		mig, err := NewMigrate(m.config)
		if err != nil {
			return err
		}
		defer closeMigrate(mig)

		if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// NewMigrate returns a golang-migrate instance reading the embedded
// migrations and targeting the configured PostgreSQL database.
func NewMigrate(config *Config) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source: %w", err)
	}

	mig, err := migrate.NewWithSourceInstance("iofs", src, config.MigrationURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mig, nil
}

func closeMigrate(mig *migrate.Migrate) {
	srcErr, dbErr := mig.Close()
	if srcErr != nil {
		logger.Get().Warnf("migrate source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Get().Warnf("migrate database close error: %v", dbErr)
	}
}

// TransactionStore returns the store backed by the open connection.
func (m *Manager) TransactionStore() store.Store {
	if m.coll != nil {
		return store.NewMongoStore(m.coll)
	}
	return store.NewGormStore(m.db)
}

// Close releases the connection.
func (m *Manager) Close(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
