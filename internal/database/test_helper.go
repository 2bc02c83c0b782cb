package database

import (
	"testing"

	"fincoach/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory sqlite database with the analysis schema
// migrated. Each call returns an isolated database.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	testDB := &DB{DB: db, config: &config.DatabaseConfig{}}
	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return testDB
}

// CleanupTestDB removes persisted analyses between tests
func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	if err := db.Exec("DELETE FROM analyses").Error; err != nil {
		t.Logf("cleanup analyses: %v", err)
	}
}
