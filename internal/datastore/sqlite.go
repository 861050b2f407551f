package datastore

import (
	"fmt"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/RustycyberShackleford/WellAtlas3.0/internal/conf"
)

// SQLiteStore implements the record store on SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Output.SQLite.Path == "" {
		return fmt.Errorf("sqlite database path is not set")
	}
	return nil
}

// Open sets up the SQLite database connection and runs schema migration
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err // validateSQLiteConfig returns a properly formatted error
	}

	path := store.Settings.Output.SQLite.Path
	if path != ":memory:" {
		dir, fileName := filepath.Split(path)
		basePath := conf.GetBasePath(dir)
		path = filepath.Join(basePath, fileName)
	}

	// Create a new GORM logger
	newLogger := createGormLogger()

	// Open the SQLite database
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newLogger})
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "SQLite", path)
}

// Close releases the underlying SQLite connection
func (store *SQLiteStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic DB object: %w", err)
	}
	return sqlDB.Close()
}
