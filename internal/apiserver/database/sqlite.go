package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

// SQLite implements the Database interface using SQLite
type SQLite struct {
	*store
}

// NewSQLite creates a new SQLite instance. dsn is a file path or ":memory:".
func NewSQLite(cfg *config.DatabaseConfig, dsn string) (*SQLite, error) {
	if err := config.EnsureSQLiteDir(dsn); err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isMemoryDSN(dsn) {
		// every connection to :memory: opens a separate empty database, so
		// the single connection is pinned and never recycled
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)

		pinned := *cfg
		pinned.MaxOpenConns, pinned.MaxIdleConns, pinned.ConnMaxLifetime = 0, 0, 0
		cfg = &pinned
	}

	s, err := open(config.DatabaseTypeSQLite, gormDB, cfg)
	if err != nil {
		return nil, err
	}
	return &SQLite{store: s}, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}
