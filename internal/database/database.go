package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/blakecrosley/941analytics/internal/config"
	"github.com/blakecrosley/941analytics/internal/funnels"
	"github.com/blakecrosley/941analytics/internal/goals"
	"github.com/blakecrosley/941analytics/internal/sites"
	"github.com/blakecrosley/941analytics/internal/visits"
)

// Manager owns the SQLite connection and schema migrations.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger}
}

// Connect opens the database with WAL and a busy timeout suitable for a
// single-writer analytics workload.
func (m *Manager) Connect() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate",
		m.cfg.GetDatabasePath(),
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(m.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(m.cfg.GetMaxIdleConns())

	m.db = db
	return db, nil
}

// NewManagerWithConnection wraps an already-open connection. Tests use it to
// run jobs against an in-memory database.
func NewManagerWithConnection(db *gorm.DB, logger *slog.Logger) *Manager {
	return &Manager{logger: logger, db: db}
}

// GetConnection returns the live connection, nil before Connect.
func (m *Manager) GetConnection() *gorm.DB {
	return m.db
}

// Migrate creates or updates the schema for every persisted model.
func (m *Manager) Migrate() error {
	if m.db == nil {
		return gorm.ErrInvalidDB
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&sites.Site{},
			&visits.Visit{},
			&funnels.Funnel{},
			&goals.Goal{},
		)
	})
	if err != nil {
		m.logger.Error("Failed to auto-migrate database", slog.Any("error", err))
		return err
	}

	if err := m.CheckpointWAL("FULL"); err != nil {
		m.logger.Warn("Failed to checkpoint WAL after migration", slog.Any("error", err))
	}

	m.logger.Info("Database migration completed successfully")
	return nil
}

// CheckpointWAL flushes the write-ahead log. Mode is one of PASSIVE, FULL,
// RESTART, TRUNCATE.
func (m *Manager) CheckpointWAL(mode string) error {
	if m.db == nil {
		return gorm.ErrInvalidDB
	}
	return m.db.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)).Error
}

// Close releases the underlying connection pool.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
