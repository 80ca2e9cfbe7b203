package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// seedAnchor is the first day of the demo data
var seedAnchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Seed inserts a small demo data set: three units, a product catalog, two
// weeks of orders with items and feedback, and the matching daily rollups.
// It does nothing when units already exist.
func (s *store) Seed(ctx context.Context) error {
	var count int64
	if err := s.conn(ctx).Model(&Unidade{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return s.Transaction(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)

		opened := seedAnchor.AddDate(-2, 0, 0)
		unidades := []*Unidade{
			// stored mis-decoded on purpose, the API repairs it on the way out
			{Nome: "Centro", Cidade: "SÃ£o Paulo", Estado: "SP", DataAbertura: &opened},
			{Nome: "Savassi", Cidade: "Belo Horizonte", Estado: "MG", DataAbertura: &opened},
			{Nome: "Boa Viagem", Cidade: "Recife", Estado: "PE", DataAbertura: &opened},
		}
		if err := s.Insert(ctx, &unidades); err != nil {
			return err
		}

		produtos := []*Produto{
			{Nome: "Pizza Margherita", Categoria: "Pizza", Preco: decimal.RequireFromString("45.90")},
			{Nome: "Hambúrguer Clássico", Categoria: "Lanche", Preco: decimal.RequireFromString("32.50")},
			{Nome: "Açaí 500ml", Categoria: "Sobremesa", Preco: decimal.RequireFromString("22.00")},
			{Nome: "Refrigerante Lata", Categoria: "Bebida", Preco: decimal.RequireFromString("6.00")},
		}
		if err := db.Create(&produtos).Error; err != nil {
			return err
		}

		motivos := []string{"Cliente desistiu", "Restaurante fechado", "Atraso na entrega"}
		origens := []string{"cliente", "loja", "plataforma"}

		var metricas []*MetricaDiaria
		for day := 0; day < 14; day++ {
			date := seedAnchor.AddDate(0, 0, day)
			for u, unidade := range unidades {
				rollup := &MetricaDiaria{
					IDUnidade:      unidade.ID,
					DataReferencia: date,
				}
				var notas, avaliacoes int

				for n := 0; n < 3+u; n++ {
					seq := day*10 + u*3 + n
					criado := date.Add(time.Duration(11+(seq%10)) * time.Hour).Add(time.Duration(seq%60) * time.Minute)
					aceite := criado.Add(time.Duration(2+seq%5) * time.Minute)
					despacho := aceite.Add(15 * time.Minute)
					entrega := despacho.Add(time.Duration(20+seq%25) * time.Minute)

					produto := produtos[seq%len(produtos)]
					quantidade := 1 + seq%3
					total := produto.Preco.Mul(decimal.NewFromInt(int64(quantidade)))

					cliente := uint(1000 + seq%37)
					regiao := uint(1 + seq%4)
					pedido := &Pedido{
						IDCliente:  &cliente,
						IDUnidade:  &unidade.ID,
						IDRegiao:   &regiao,
						DataPedido: &criado,
						DataAceite: &aceite,
						Status:     "Entregue",
						ValorTotal: total,
					}
					if seq%7 == 0 {
						motivo := motivos[seq%len(motivos)]
						origem := origens[seq%len(origens)]
						pedido.Status = "Cancelado"
						pedido.MotivoCancelamento = &motivo
						pedido.OrigemCancelamento = &origem
					} else {
						pedido.DataDespacho = &despacho
						pedido.DataEntrega = &entrega
					}
					if err := db.Create(pedido).Error; err != nil {
						return err
					}

					item := &ItemPedido{
						IDPedido:      pedido.ID,
						IDProduto:     produto.ID,
						Quantidade:    quantidade,
						PrecoUnitario: produto.Preco,
					}
					if err := db.Create(item).Error; err != nil {
						return err
					}

					rollup.TotalPedidos++
					if pedido.Status == "Cancelado" {
						rollup.TotalCancelamentos++
						continue
					}
					rollup.TotalFaturamento = rollup.TotalFaturamento.Add(total)

					nota := 3 + seq%3
					tipo := "elogio"
					if nota < 4 {
						tipo = "reclamacao"
					}
					if err := db.Create(&Feedback{IDPedido: pedido.ID, Nota: nota, TipoFeedback: tipo}).Error; err != nil {
						return err
					}
					notas += nota
					avaliacoes++
				}

				if avaliacoes > 0 {
					rollup.MediaNota = decimal.NewFromInt(int64(notas)).
						Div(decimal.NewFromInt(int64(avaliacoes))).Round(2)
				}
				metricas = append(metricas, rollup)
			}
		}

		return db.Create(&metricas).Error
	})
}
