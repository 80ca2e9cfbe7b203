package analytics

import (
	"context"
	"fmt"
)

// notCancelled keeps orders that count as revenue
const notCancelled = "(p.status IS NULL OR p.status <> ?)"

// MonthlyRevenue totals non-cancelled revenue per unit and month
func (s *Service) MonthlyRevenue(ctx context.Context, scope Scope, r DateRange) ([]Row, error) {
	month := s.dialect.Month("p.data_pedido")
	f := NewFilter(s.dialect).
		Where("p.data_pedido IS NOT NULL").
		Where(notCancelled, StatusCancelado).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "monthly_revenue",
		sql: fmt.Sprintf(`SELECT u.nome AS unidade, %s AS mes, SUM(p.valor_total) AS faturamento_total
FROM pedidos p JOIN unidades u ON u.id = p.id_unidade%s
GROUP BY u.nome, %s
ORDER BY mes, unidade`, month, f.SQL(), month),
		args:    f.Args(),
		numeric: []string{"faturamento_total"},
		scope:   scope,
	})
}

// OrdersByStatus counts orders per status
func (s *Service) OrdersByStatus(ctx context.Context, scope Scope, r DateRange) ([]Row, error) {
	f := NewFilter(s.dialect).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "orders_by_status",
		sql: `SELECT p.status AS status, COUNT(*) AS total
FROM pedidos p` + f.SQL() + `
GROUP BY p.status
ORDER BY total DESC, status`,
		args:    f.Args(),
		numeric: []string{"total"},
		scope:   scope,
	})
}

// AverageRatings averages feedback ratings per unit
func (s *Service) AverageRatings(ctx context.Context, scope Scope, r DateRange) ([]Row, error) {
	f := NewFilter(s.dialect).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "average_ratings",
		sql: `SELECT u.nome AS unidade, AVG(f.nota) AS media_nota, COUNT(*) AS total_avaliacoes
FROM feedbacks f
JOIN pedidos p ON p.id = f.id_pedido
JOIN unidades u ON u.id = p.id_unidade` + f.SQL() + `
GROUP BY u.nome
ORDER BY u.nome`,
		args:    f.Args(),
		numeric: []string{"media_nota", "total_avaliacoes"},
		scope:   scope,
	})
}

// WeeklyOrders counts orders per week, keyed by the week's Monday
func (s *Service) WeeklyOrders(ctx context.Context, scope Scope, r DateRange) ([]Row, error) {
	week := s.dialect.Week("p.data_pedido")
	f := NewFilter(s.dialect).
		Where("p.data_pedido IS NOT NULL").
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "weekly_orders",
		sql: fmt.Sprintf(`SELECT %s AS semana, COUNT(*) AS total_pedidos
FROM pedidos p%s
GROUP BY %s
ORDER BY semana`, week, f.SQL(), week),
		args:    f.Args(),
		numeric: []string{"total_pedidos"},
		scope:   scope,
	})
}

// TopProducts ranks products by quantity sold
func (s *Service) TopProducts(ctx context.Context, scope Scope, r DateRange, limit int) ([]Row, error) {
	f := NewFilter(s.dialect).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "top_products",
		sql: `SELECT pr.nome AS produto, SUM(ip.quantidade) AS total_vendido
FROM itens_pedido ip
JOIN produtos pr ON pr.id = ip.id_produto
JOIN pedidos p ON p.id = ip.id_pedido` + f.SQL() + `
GROUP BY pr.nome
ORDER BY total_vendido DESC, produto
LIMIT ?`,
		args:    append(f.Args(), limit),
		numeric: []string{"total_vendido"},
		scope:   scope,
	})
}

// TopProductsRevenue ranks products by revenue of non-cancelled orders
func (s *Service) TopProductsRevenue(ctx context.Context, scope Scope, r DateRange, limit int) ([]Row, error) {
	f := NewFilter(s.dialect).
		Where(notCancelled, StatusCancelado).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "top_products_revenue",
		sql: `SELECT pr.nome AS produto, SUM(ip.quantidade) AS quantidade, SUM(ip.quantidade * ip.preco_unitario) AS receita
FROM itens_pedido ip
JOIN produtos pr ON pr.id = ip.id_produto
JOIN pedidos p ON p.id = ip.id_pedido` + f.SQL() + `
GROUP BY pr.nome
ORDER BY receita DESC, produto
LIMIT ?`,
		args:    append(f.Args(), limit),
		numeric: []string{"quantidade", "receita"},
		scope:   scope,
	})
}

// DailyRevenue totals revenue and orders per day; the range must be complete
func (s *Service) DailyRevenue(ctx context.Context, scope Scope, r DateRange) ([]Row, error) {
	day := s.dialect.Day("p.data_pedido")
	f := NewFilter(s.dialect).
		Where("p.data_pedido IS NOT NULL").
		Where(notCancelled, StatusCancelado).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "daily_revenue",
		sql: fmt.Sprintf(`SELECT %s AS dia, SUM(p.valor_total) AS faturamento, COUNT(*) AS pedidos
FROM pedidos p%s
GROUP BY %s
ORDER BY dia`, day, f.SQL(), day),
		args:    f.Args(),
		numeric: []string{"faturamento", "pedidos"},
		scope:   scope,
	})
}

// CancellationCost sums the value of cancelled orders. The row is always
// present and zero valued when nothing was cancelled.
func (s *Service) CancellationCost(ctx context.Context, scope Scope, r DateRange) (Row, error) {
	f := NewFilter(s.dialect).
		Where("p.status = ?", StatusCancelado).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	row, err := s.fetchOne(ctx, query{
		name: "cancellation_cost",
		sql: `SELECT COUNT(*) AS total_cancelados, SUM(p.valor_total) AS custo_cancelamento
FROM pedidos p` + f.SQL(),
		args:    f.Args(),
		numeric: []string{"total_cancelados", "custo_cancelamento"},
		scope:   scope,
	})
	if err != nil {
		return nil, err
	}
	return withZeroDefaults(row, "total_cancelados", "custo_cancelamento"), nil
}

// withZeroDefaults fills missing or NULL numeric columns with 0
func withZeroDefaults(row Row, cols ...string) Row {
	if row == nil {
		row = Row{}
	}
	for _, col := range cols {
		if row[col] == nil {
			row[col] = int64(0)
		}
	}
	return row
}
