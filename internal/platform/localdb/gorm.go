// File: internal/platform/localdb/gorm.go
package localdb

import (
	"fmt"
	"log" // Standard log for critical open errors, before zap is guaranteed
	"os"
	"path/filepath"
	"time"

	"sipaling_preloved_client/internal/config"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open creates the GORM instance backing the client's durable local state
// (session, pending push token, search-history cache). SQLite keeps the
// store a single file that survives process restarts.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if dir := filepath.Dir(cfg.LocalDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create local db directory: %w", err)
		}
	}

	var gormLogLevel gormlogger.LogLevel
	switch cfg.LogLevel {
	case "silent", "fatal", "panic":
		gormLogLevel = gormlogger.Silent
	case "error":
		gormLogLevel = gormlogger.Error
	case "warn", "warning":
		gormLogLevel = gormlogger.Warn
	case "info", "debug":
		gormLogLevel = gormlogger.Info
	default:
		gormLogLevel = gormlogger.Warn
	}

	newLogger := gormlogger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.AppEnv != "release",
		},
	)

	db, err := gorm.Open(sqlite.Open(cfg.LocalDBPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	return db, nil
}

// OpenInMemory opens a throwaway in-memory database for tests. Each call
// gets its own uniquely named database so tests cannot observe each other.
func OpenInMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return db, nil
}

// Close closes the underlying database connection.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying SQL DB for closing: %v\n", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing local database: %v\n", err)
	}
}
