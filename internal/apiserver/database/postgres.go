package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

// Postgres implements the Database interface using PostgreSQL
type Postgres struct {
	*store
}

// NewPostgres creates a new Postgres instance
func NewPostgres(cfg *config.DatabaseConfig, dsn string) (*Postgres, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s, err := open(config.DatabaseTypePostgres, gormDB, cfg)
	if err != nil {
		return nil, err
	}
	return &Postgres{store: s}, nil
}
