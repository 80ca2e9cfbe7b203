package analytics

import (
	"context"
	"fmt"
)

// CancellationReasons ranks cancellation reason and origin pairs by count
func (s *Service) CancellationReasons(ctx context.Context, scope Scope, r DateRange, limit int) ([]Row, error) {
	f := NewFilter(s.dialect).
		Where("p.status = ?", StatusCancelado).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	rows, err := s.fetchAll(ctx, query{
		name: "cancellation_reasons",
		sql: `SELECT p.motivo_cancelamento AS motivo, p.origem_cancelamento AS origem, COUNT(*) AS total, SUM(p.valor_total) AS valor_perdido
FROM pedidos p` + f.SQL() + `
GROUP BY p.motivo_cancelamento, p.origem_cancelamento
ORDER BY total DESC, valor_perdido DESC
LIMIT ?`,
		args:    append(f.Args(), limit),
		numeric: []string{"total", "valor_perdido"},
		scope:   scope,
	})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if m, ok := row["motivo"].(string); !ok || m == "" {
			row["motivo"] = SemMotivo
		}
		withZeroDefaults(row, "valor_perdido")
	}
	return rows, nil
}

// OrdersHeatmap counts orders per weekday (Sunday is 0) and hour
func (s *Service) OrdersHeatmap(ctx context.Context, scope Scope, r DateRange) ([]Row, error) {
	weekday := s.dialect.Weekday("p.data_pedido")
	hour := s.dialect.Hour("p.data_pedido")
	f := NewFilter(s.dialect).
		Where("p.data_pedido IS NOT NULL").
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "orders_heatmap",
		sql: fmt.Sprintf(`SELECT %s AS dia_semana, %s AS hora, COUNT(*) AS total_pedidos
FROM pedidos p%s
GROUP BY %s, %s
ORDER BY dia_semana, hora`, weekday, hour, f.SQL(), weekday, hour),
		args:    f.Args(),
		numeric: []string{"dia_semana", "hora", "total_pedidos"},
		scope:   scope,
	})
}

// DeliveryTimeByRegion averages order to delivery minutes per delivery region, slowest first
func (s *Service) DeliveryTimeByRegion(ctx context.Context, scope Scope, r DateRange) ([]Row, error) {
	f := NewFilter(s.dialect).
		Where("p.data_entrega IS NOT NULL").
		Where("p.id_regiao IS NOT NULL").
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "delivery_time_by_region",
		sql: fmt.Sprintf(`SELECT p.id_regiao AS id_regiao, AVG(%s) AS tempo_medio_entrega, COUNT(*) AS pedidos
FROM pedidos p%s
GROUP BY p.id_regiao
ORDER BY tempo_medio_entrega DESC, id_regiao`, s.dialect.MinutesBetween("p.data_pedido", "p.data_entrega"), f.SQL()),
		args:    f.Args(),
		numeric: []string{"id_regiao", "tempo_medio_entrega", "pedidos"},
		scope:   scope,
	})
}

// UnitRanking ranks every unit by revenue. It compares units against each
// other, so it never applies a unit scope.
func (s *Service) UnitRanking(ctx context.Context, r DateRange, limit int) ([]Row, error) {
	f := NewFilter(s.dialect).
		Where(notCancelled, StatusCancelado).
		DateRange("p.data_pedido", r)

	rows, err := s.fetchAll(ctx, query{
		name: "unit_ranking",
		sql: `SELECT u.nome AS unidade, SUM(p.valor_total) AS faturamento, COUNT(*) AS pedidos
FROM pedidos p JOIN unidades u ON u.id = p.id_unidade` + f.SQL() + `
GROUP BY u.nome
ORDER BY faturamento DESC, unidade
LIMIT ?`,
		args:    append(f.Args(), limit),
		numeric: []string{"faturamento", "pedidos"},
		scope:   Unscoped,
	})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		pedidos := number(row["pedidos"])
		row["ticket_medio"] = int64(0)
		if pedidos.IsPositive() {
			row["ticket_medio"] = number(row["faturamento"]).Div(pedidos).Round(2).InexactFloat64()
		}
	}
	return rows, nil
}
