package database

import (
	"fmt"
	"log/slog"
	"time"

	"fincoach/internal/config"
	"fincoach/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the gorm handle together with the config it was opened with
type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

// New opens the configured database. Postgres when a DSN is configured,
// otherwise a local SQLite file, which keeps development setups simple.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	if cfg.IsPostgres() {
		dialector = postgres.Open(cfg.DSN())
	} else {
		dialector = sqlite.Open(cfg.SQLitePath)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// AutoMigrate brings the analyses schema up to date
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.Analysis{},
	)
}

// Close releases the underlying connection pool
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck pings the database
func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Transaction runs fn inside a single transaction
func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

// CreateIndexes adds the query indexes the list and lookup endpoints lean
// on. Index creation is best effort; a failure is logged, not fatal.
func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status)",
		"CREATE INDEX IF NOT EXISTS idx_analyses_source_name ON analyses(source_name)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			slog.Warn("could not create index", "query", query, "error", err.Error())
		}
	}

	return nil
}

// Initialize opens the connection, migrates the schema, and creates indexes
func Initialize(cfg *config.Config) (*gorm.DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := db.CreateIndexes(); err != nil {
		slog.Warn("index creation incomplete", "error", err.Error())
	}

	driver := "sqlite"
	if cfg.Database.IsPostgres() {
		driver = "postgres"
	}
	slog.Info("database initialized", "driver", driver)

	return db.DB, nil
}
