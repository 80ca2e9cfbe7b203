package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/database"
	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

const (
	unitCentro  uint = 1
	unitSavassi uint = 2
)

func ptr[T any](v T) *T { return &v }

func at(day, hour, minute int, month ...time.Month) time.Time {
	m := time.January
	if len(month) > 0 {
		m = month[0]
	}
	return time.Date(2024, m, day, hour, minute, 0, 0, time.UTC)
}

// newFixture opens an in-memory database holding two units and five orders:
//
//	o1 Centro  2024-01-01 12:10 Entregue  50 (Pizza x1, Suco x1) nota 5
//	o2 Centro  2024-01-01 12:40 Cancelado 40 (Pizza x1) "Cliente desistiu"
//	o3 Savassi 2024-01-01 19:00 Entregue  30 (Suco x3) nota 3
//	o4 Centro  2024-01-08 13:00 Entregue  80 (Pizza x2) nota 4
//	o5 Savassi 2024-02-02 10:00 Cancelado 20 (Suco x2) no reason
func newFixture(t *testing.T) (*database.SQLite, *Service) {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{}, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Insert(ctx,
		// stored mis-decoded to check the repair
		&database.Unidade{ID: unitCentro, Nome: "JoÃ£o Pessoa", Cidade: "JoÃ£o Pessoa", Estado: "PB"},
		&database.Unidade{ID: unitSavassi, Nome: "Savassi", Cidade: "Belo Horizonte", Estado: "MG"},
		&database.Produto{ID: 1, Nome: "Pizza", Preco: decimal.NewFromInt(40)},
		&database.Produto{ID: 2, Nome: "Suco", Preco: decimal.NewFromInt(10)},
	))

	orders := []struct {
		pedido *database.Pedido
		items  map[uint]int
		nota   int
	}{
		{
			pedido: &database.Pedido{ID: 1, IDCliente: ptr(uint(1)), IDUnidade: ptr(unitCentro), IDRegiao: ptr(uint(1)),
				DataPedido: ptr(at(1, 12, 10)), DataAceite: ptr(at(1, 12, 15)), DataEntrega: ptr(at(1, 12, 50)),
				Status: "Entregue", ValorTotal: decimal.NewFromInt(50)},
			items: map[uint]int{1: 1, 2: 1},
			nota:  5,
		},
		{
			pedido: &database.Pedido{ID: 2, IDCliente: ptr(uint(2)), IDUnidade: ptr(unitCentro),
				DataPedido: ptr(at(1, 12, 40)), DataAceite: ptr(at(1, 12, 50)),
				Status: StatusCancelado, ValorTotal: decimal.NewFromInt(40),
				MotivoCancelamento: ptr("Cliente desistiu"), OrigemCancelamento: ptr("cliente")},
			items: map[uint]int{1: 1},
		},
		{
			pedido: &database.Pedido{ID: 3, IDCliente: ptr(uint(1)), IDUnidade: ptr(unitSavassi), IDRegiao: ptr(uint(2)),
				DataPedido: ptr(at(1, 19, 0)), DataAceite: ptr(at(1, 19, 3)), DataEntrega: ptr(at(1, 19, 30)),
				Status: "Entregue", ValorTotal: decimal.NewFromInt(30)},
			items: map[uint]int{2: 3},
			nota:  3,
		},
		{
			pedido: &database.Pedido{ID: 4, IDCliente: ptr(uint(1)), IDUnidade: ptr(unitCentro), IDRegiao: ptr(uint(1)),
				DataPedido: ptr(at(8, 13, 0)), DataAceite: ptr(at(8, 13, 4)), DataEntrega: ptr(at(8, 13, 20)),
				Status: "Entregue", ValorTotal: decimal.NewFromInt(80)},
			items: map[uint]int{1: 2},
			nota:  4,
		},
		{
			pedido: &database.Pedido{ID: 5, IDCliente: ptr(uint(3)), IDUnidade: ptr(unitSavassi),
				DataPedido: ptr(at(2, 10, 0, time.February)),
				Status:     StatusCancelado, ValorTotal: decimal.NewFromInt(20)},
			items: map[uint]int{2: 2},
		},
	}

	prices := map[uint]decimal.Decimal{1: decimal.NewFromInt(40), 2: decimal.NewFromInt(10)}
	for _, o := range orders {
		require.NoError(t, db.Insert(ctx, o.pedido))
		for produto, qtd := range o.items {
			require.NoError(t, db.Insert(ctx, &database.ItemPedido{
				IDPedido: o.pedido.ID, IDProduto: produto, Quantidade: qtd, PrecoUnitario: prices[produto],
			}))
		}
		if o.nota > 0 {
			require.NoError(t, db.Insert(ctx, &database.Feedback{IDPedido: o.pedido.ID, Nota: o.nota, TipoFeedback: "elogio"}))
		}
	}

	svc, err := NewService(db)
	require.NoError(t, err)
	return db, svc
}

func scopeOf(id uint) Scope {
	return Scope{UnitID: &id}
}

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	r, err := NewDateRange(start, end)
	require.NoError(t, err)
	return r
}
