package database

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a login with the same email already exists
	ErrDuplicateEmail = errors.New("email already registered")
)

// Row is a single result row keyed by column name
type Row = map[string]any

// Database defines the methods for database operations.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Dialect reports the SQL dialect: sqlite, postgres or mysql.
	Dialect() string

	// Ping checks that the database answers.
	Ping(ctx context.Context) error

	// Transaction runs fn inside a transaction carried by the context.
	// Nested calls join the outer transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateLogin inserts a user, failing with ErrDuplicateEmail when the email is taken.
	CreateLogin(ctx context.Context, login *Login) error

	// GetLoginByEmail returns the user with the given email or ErrNotFound.
	GetLoginByEmail(ctx context.Context, email string) (*Login, error)

	// CountLogins returns the number of registered users.
	CountLogins(ctx context.Context) (int64, error)

	// ListUnidades returns every unit ordered by id.
	ListUnidades(ctx context.Context) ([]*Unidade, error)

	// ListPedidos returns every order ordered by id.
	ListPedidos(ctx context.Context) ([]*Pedido, error)

	// GetPedido returns the order with the given id or ErrNotFound.
	GetPedido(ctx context.Context, id uint) (*Pedido, error)

	// ListMetricasDiarias returns every daily rollup ordered by date and unit.
	ListMetricasDiarias(ctx context.Context) ([]*MetricaDiaria, error)

	// SumFaturamentoPorUnidade totals the daily rollup revenue per unit.
	SumFaturamentoPorUnidade(ctx context.Context) ([]*FaturamentoUnidade, error)

	// FetchAll runs a parameterised query and returns every row.
	FetchAll(ctx context.Context, query string, args ...any) ([]Row, error)

	// FetchOne runs a parameterised query and returns the first row, or nil when there is none.
	FetchOne(ctx context.Context, query string, args ...any) (Row, error)

	// Seed inserts demo data unless units already exist.
	Seed(ctx context.Context) error
}

// FaturamentoUnidade is the revenue total of one unit
type FaturamentoUnidade struct {
	IDUnidade        uint            `json:"id_unidade"`
	TotalFaturamento decimal.Decimal `json:"total_faturamento"`
}
