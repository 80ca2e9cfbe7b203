package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

// txKey carries the open transaction through the context
type txKey struct{}

// ContextWithTransaction returns a context carrying tx
func ContextWithTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TransactionFromContext returns the transaction carried by ctx, if any
func TransactionFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// store holds the gorm logic shared by every dialect
type store struct {
	db      *gorm.DB
	dialect string
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	}
}

// open finishes the setup every driver shares: pool limits and migrations
func open(dialect string, gormDB *gorm.DB, cfg *config.DatabaseConfig) (*store, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := gormDB.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &store{db: gormDB, dialect: dialect}, nil
}

// conn returns the transaction in ctx, or a fresh session bound to ctx
func (s *store) conn(ctx context.Context) *gorm.DB {
	if tx := TransactionFromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Close closes the database connection
func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *store) Dialect() string {
	return s.dialect
}

func (s *store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if TransactionFromContext(ctx) != nil {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

// Insert creates each record, inside the context transaction when there is one
func (s *store) Insert(ctx context.Context, records ...any) error {
	db := s.conn(ctx)
	for _, record := range records {
		if err := db.Create(record).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *store) CreateLogin(ctx context.Context, login *Login) error {
	if login.Role == "" {
		login.Role = RoleManager
	}
	if err := s.conn(ctx).Create(login).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *store) GetLoginByEmail(ctx context.Context, email string) (*Login, error) {
	var login Login
	err := s.conn(ctx).Where("email = ?", email).First(&login).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &login, nil
}

func (s *store) CountLogins(ctx context.Context) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&Login{}).Count(&count).Error
	return count, err
}

func (s *store) ListUnidades(ctx context.Context) ([]*Unidade, error) {
	var unidades []*Unidade
	err := s.conn(ctx).Order("id asc").Find(&unidades).Error
	return unidades, err
}

func (s *store) ListPedidos(ctx context.Context) ([]*Pedido, error) {
	var pedidos []*Pedido
	err := s.conn(ctx).Order("id asc").Find(&pedidos).Error
	return pedidos, err
}

func (s *store) GetPedido(ctx context.Context, id uint) (*Pedido, error) {
	var pedido Pedido
	err := s.conn(ctx).First(&pedido, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

func (s *store) ListMetricasDiarias(ctx context.Context) ([]*MetricaDiaria, error) {
	var metricas []*MetricaDiaria
	err := s.conn(ctx).Order("data_referencia asc, id_unidade asc").Find(&metricas).Error
	return metricas, err
}

func (s *store) SumFaturamentoPorUnidade(ctx context.Context) ([]*FaturamentoUnidade, error) {
	var totals []*FaturamentoUnidade
	err := s.conn(ctx).Model(&MetricaDiaria{}).
		Select("id_unidade, SUM(total_faturamento) AS total_faturamento").
		Group("id_unidade").
		Order("id_unidade asc").
		Scan(&totals).Error
	return totals, err
}

// isUniqueViolation recognizes uniqueness errors the driver did not translate
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
