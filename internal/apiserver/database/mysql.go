package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

// MySQL implements the Database interface using MySQL
type MySQL struct {
	*store
}

// NewMySQL creates a new MySQL instance
func NewMySQL(cfg *config.DatabaseConfig, dsn string) (*MySQL, error) {
	gormDB, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s, err := open(config.DatabaseTypeMySQL, gormDB, cfg)
	if err != nil {
		return nil, err
	}
	return &MySQL{store: s}, nil
}
