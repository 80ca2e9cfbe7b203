package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SemMotivo labels cancellations recorded without a reason
const SemMotivo = "Sem motivo"

// DailyOverview gathers the KPIs of one day: order count, revenue, ticket,
// cancellations, mean accept and delivery minutes, rating, the status
// breakdown and new versus returning customers.
func (s *Service) DailyOverview(ctx context.Context, scope Scope, day time.Time) (Row, error) {
	r := Day(day)
	minutesAceite := s.dialect.MinutesBetween("p.data_pedido", "p.data_aceite")
	minutesEntrega := s.dialect.MinutesBetween("p.data_pedido", "p.data_entrega")

	f := NewFilter(s.dialect).
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	kpis, err := s.fetchOne(ctx, query{
		name: "daily_overview",
		sql: fmt.Sprintf(`SELECT COUNT(*) AS total_pedidos,
SUM(CASE WHEN p.status = ? THEN 0 ELSE p.valor_total END) AS faturamento_dia,
SUM(CASE WHEN p.status = ? THEN 1 ELSE 0 END) AS cancelamentos,
AVG(%s) AS tempo_medio_aceite,
AVG(%s) AS tempo_medio_entrega
FROM pedidos p%s`, minutesAceite, minutesEntrega, f.SQL()),
		args:    append([]any{StatusCancelado, StatusCancelado}, f.Args()...),
		numeric: []string{"total_pedidos", "faturamento_dia", "cancelamentos", "tempo_medio_aceite", "tempo_medio_entrega"},
		scope:   scope,
	})
	if err != nil {
		return nil, err
	}
	kpis = withZeroDefaults(kpis, "total_pedidos", "faturamento_dia", "cancelamentos")

	// ticket over the orders that were not cancelled
	validos := number(kpis["total_pedidos"]).Sub(number(kpis["cancelamentos"]))
	kpis["ticket_medio"] = int64(0)
	if validos.IsPositive() {
		kpis["ticket_medio"] = number(kpis["faturamento_dia"]).Div(validos).Round(2).InexactFloat64()
	}

	rating, err := s.fetchOne(ctx, query{
		name: "daily_rating",
		sql: `SELECT AVG(f.nota) AS media_nota
FROM feedbacks f JOIN pedidos p ON p.id = f.id_pedido` + f.SQL(),
		args:    f.Args(),
		numeric: []string{"media_nota"},
		scope:   scope,
	})
	if err != nil {
		return nil, err
	}
	kpis["media_nota"] = nil
	if rating != nil {
		kpis["media_nota"] = rating["media_nota"]
	}

	porStatus, err := s.OrdersByStatus(ctx, scope, r)
	if err != nil {
		return nil, err
	}
	kpis["por_status"] = porStatus

	clientes, err := s.dailyCustomers(ctx, scope, r)
	if err != nil {
		return nil, err
	}
	kpis["clientes"] = clientes

	return kpis, nil
}

// dailyCustomers splits the day's customers into first time and returning,
// looking for earlier orders within the same scope
func (s *Service) dailyCustomers(ctx context.Context, scope Scope, r DateRange) (Row, error) {
	earlier := NewFilter(s.dialect).
		Where("q.id_cliente = p.id_cliente").
		Before("q.data_pedido", *r.Start).
		Unit("q.id_unidade", scope)
	sub := "SELECT 1 FROM pedidos q" + earlier.SQL()

	f := NewFilter(s.dialect).
		Where("p.id_cliente IS NOT NULL").
		DateRange("p.data_pedido", r).
		Unit("p.id_unidade", scope)

	args := append([]any{}, earlier.Args()...)
	args = append(args, earlier.Args()...)
	args = append(args, f.Args()...)

	row, err := s.fetchOne(ctx, query{
		name: "daily_customers",
		sql: fmt.Sprintf(`SELECT COUNT(DISTINCT CASE WHEN NOT EXISTS (%s) THEN p.id_cliente END) AS novos,
COUNT(DISTINCT CASE WHEN EXISTS (%s) THEN p.id_cliente END) AS recorrentes
FROM pedidos p%s`, sub, sub, f.SQL()),
		args:    args,
		numeric: []string{"novos", "recorrentes"},
		scope:   scope,
	})
	if err != nil {
		return nil, err
	}
	return withZeroDefaults(row, "novos", "recorrentes"), nil
}

// DailyCumulativeRevenue lists the day's non-cancelled orders in time order
// with the running revenue total in "acumulado"
func (s *Service) DailyCumulativeRevenue(ctx context.Context, scope Scope, day time.Time) ([]Row, error) {
	f := NewFilter(s.dialect).
		Where(notCancelled, StatusCancelado).
		DateRange("p.data_pedido", Day(day)).
		Unit("p.id_unidade", scope)

	rows, err := s.fetchAll(ctx, query{
		name: "daily_cumulative_revenue",
		sql: fmt.Sprintf(`SELECT p.id AS id, p.data_pedido AS ts, p.valor_total AS valor_total
FROM pedidos p%s
ORDER BY %s, p.id`, f.SQL(), s.dialect.Timestamp("p.data_pedido")),
		args:    f.Args(),
		numeric: []string{"id", "valor_total"},
		scope:   scope,
	})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(number(row["valor_total"]))
		row["acumulado"] = total.Round(2).InexactFloat64()
	}
	return rows, nil
}

// DailyAcceptTimeByHour averages the minutes between order and acceptance per hour
func (s *Service) DailyAcceptTimeByHour(ctx context.Context, scope Scope, day time.Time) ([]Row, error) {
	hour := s.dialect.Hour("p.data_pedido")
	f := NewFilter(s.dialect).
		Where("p.data_aceite IS NOT NULL").
		DateRange("p.data_pedido", Day(day)).
		Unit("p.id_unidade", scope)

	return s.fetchAll(ctx, query{
		name: "daily_accept_time_by_hour",
		sql: fmt.Sprintf(`SELECT %s AS hora, AVG(%s) AS tempo_medio, COUNT(*) AS pedidos
FROM pedidos p%s
GROUP BY %s
ORDER BY hora`, hour, s.dialect.MinutesBetween("p.data_pedido", "p.data_aceite"), f.SQL(), hour),
		args:    f.Args(),
		numeric: []string{"hora", "tempo_medio", "pedidos"},
		scope:   scope,
	})
}

// DailyCancellationsByHour counts cancellations per hour and reason
func (s *Service) DailyCancellationsByHour(ctx context.Context, scope Scope, day time.Time) ([]Row, error) {
	hour := s.dialect.Hour("p.data_pedido")
	f := NewFilter(s.dialect).
		Where("p.status = ?", StatusCancelado).
		DateRange("p.data_pedido", Day(day)).
		Unit("p.id_unidade", scope)

	rows, err := s.fetchAll(ctx, query{
		name: "daily_cancellations_by_hour",
		sql: fmt.Sprintf(`SELECT %s AS hora, p.motivo_cancelamento AS motivo, COUNT(*) AS qtd
FROM pedidos p%s
GROUP BY %s, p.motivo_cancelamento
ORDER BY hora, motivo`, hour, f.SQL(), hour),
		args:    f.Args(),
		numeric: []string{"hora", "qtd"},
		scope:   scope,
	})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if m, ok := row["motivo"].(string); !ok || m == "" {
			row["motivo"] = SemMotivo
		}
	}
	return rows, nil
}
