package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/apiserver/database"
	"github.com/amoylab/ifood-dashboard/internal/i18n"
	"github.com/amoylab/ifood-dashboard/pkg/utils"
)

var csvHeader = []string{"id", "id_cliente", "id_unidade", "data_pedido", "status", "valor_total"}

// Orders serves the unscoped listing endpoints: units, orders and rollups
type Orders struct {
	db     database.Database
	logger *zap.Logger
}

// NewOrders creates a new orders handler
func NewOrders(db database.Database, logger *zap.Logger) *Orders {
	return &Orders{db: db, logger: logger.Named("orders")}
}

// ListUnidades handles GET /lojas
func (h *Orders) ListUnidades(c *gin.Context) {
	unidades, err := h.db.ListUnidades(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	for _, u := range unidades {
		repairUnidade(u)
	}
	c.JSON(http.StatusOK, nonNil(unidades))
}

// ListPedidos handles GET /pedidos
func (h *Orders) ListPedidos(c *gin.Context) {
	pedidos, err := h.db.ListPedidos(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	for _, p := range pedidos {
		repairPedido(p)
	}
	c.JSON(http.StatusOK, nonNil(pedidos))
}

// GetPedido handles GET /pedidos/:id
func (h *Orders) GetPedido(c *gin.Context) {
	pedido, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, pedido)
}

// ExportPedido handles GET /pedidos/:id/export, one order as a CSV attachment
func (h *Orders) ExportPedido(c *gin.Context) {
	pedido, ok := h.lookup(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeader)
	_ = w.Write([]string{
		strconv.FormatUint(uint64(pedido.ID), 10),
		optionalID(pedido.IDCliente),
		optionalID(pedido.IDUnidade),
		optionalTime(pedido.DataPedido),
		pedido.Status,
		pedido.ValorTotal.StringFixed(2),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		fail(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=pedido_%d.csv", pedido.ID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ListMetricasDiarias handles GET /metricas
func (h *Orders) ListMetricasDiarias(c *gin.Context) {
	metricas, err := h.db.ListMetricasDiarias(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(metricas))
}

// Relatorios handles GET /relatorios, revenue totals per unit
func (h *Orders) Relatorios(c *gin.Context) {
	totals, err := h.db.SumFaturamentoPorUnidade(c.Request.Context())
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(totals))
}

// lookup resolves the :id parameter. Identifiers that cannot name an order
// answer 404 like missing ones.
func (h *Orders) lookup(c *gin.Context) (*database.Pedido, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		i18n.RespondWithError(c, i18n.ErrPedidoNotFound)
		return nil, false
	}
	pedido, err := h.db.GetPedido(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.RespondWithError(c, i18n.ErrPedidoNotFound)
			return nil, false
		}
		fail(c, h.logger, err)
		return nil, false
	}
	repairPedido(pedido)
	return pedido, true
}

func repairUnidade(u *database.Unidade) {
	u.Nome = utils.RepairMojibake(u.Nome)
	u.Cidade = utils.RepairMojibake(u.Cidade)
}

func repairPedido(p *database.Pedido) {
	p.Status = utils.RepairMojibake(p.Status)
	if p.MotivoCancelamento != nil {
		m := utils.RepairMojibake(*p.MotivoCancelamento)
		p.MotivoCancelamento = &m
	}
	if p.OrigemCancelamento != nil {
		o := utils.RepairMojibake(*p.OrigemCancelamento)
		p.OrigemCancelamento = &o
	}
}

func optionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonNil keeps empty listings encoded as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
