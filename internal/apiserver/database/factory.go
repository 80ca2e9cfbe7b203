package database

import (
	"fmt"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

// NewDatabase creates a new database based on configuration
func NewDatabase(cfg *config.DatabaseConfig) (Database, error) {
	dbType, dsn, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	var (
		db    Database
		dbErr error
	)
	switch dbType {
	case config.DatabaseTypePostgres:
		db, dbErr = unwrap(NewPostgres(cfg, dsn))
	case config.DatabaseTypeSQLite:
		db, dbErr = unwrap(NewSQLite(cfg, dsn))
	case config.DatabaseTypeMySQL:
		db, dbErr = unwrap(NewMySQL(cfg, dsn))
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	if dbErr != nil {
		return nil, dbErr
	}
	return db, nil
}

// unwrap keeps a failed constructor from leaking a typed nil into the interface
func unwrap[T Database](db T, err error) (Database, error) {
	if err != nil {
		return nil, err
	}
	return db, nil
}
