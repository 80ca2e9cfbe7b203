package database

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// money columns are served as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Role of a dashboard user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// Login is a dashboard user. A non-nil IDUnidade restricts the user to one unit.
type Login struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	IDUnidade    *uint     `json:"id_unidade" gorm:"column:id_unidade;index"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:manager"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Login) TableName() string { return "login" }

// Unidade is a physical store
type Unidade struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Nome         string     `json:"nome" gorm:"type:varchar(255);not null;uniqueIndex"`
	Cidade       string     `json:"cidade" gorm:"type:varchar(255)"`
	Estado       string     `json:"estado" gorm:"type:varchar(2)"`
	DataAbertura *time.Time `json:"data_abertura" gorm:"column:data_abertura"`
}

func (Unidade) TableName() string { return "unidades" }

// Pedido is an order, the fact table every metric aggregates
type Pedido struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	IDCliente          *uint           `json:"id_cliente" gorm:"column:id_cliente"`
	IDUnidade          *uint           `json:"id_unidade" gorm:"column:id_unidade;index"`
	IDRegiao           *uint           `json:"id_regiao" gorm:"column:id_regiao"`
	DataPedido         *time.Time      `json:"data_pedido" gorm:"column:data_pedido;index"`
	DataAceite         *time.Time      `json:"data_aceite" gorm:"column:data_aceite"`
	DataDespacho       *time.Time      `json:"data_despacho" gorm:"column:data_despacho"`
	DataEntrega        *time.Time      `json:"data_entrega" gorm:"column:data_entrega"`
	Status             string          `json:"status" gorm:"type:varchar(50)"`
	ValorTotal         decimal.Decimal `json:"valor_total" gorm:"column:valor_total;type:decimal(12,2)"`
	MotivoCancelamento *string         `json:"motivo_cancelamento" gorm:"column:motivo_cancelamento;type:varchar(255)"`
	OrigemCancelamento *string         `json:"origem_cancelamento" gorm:"column:origem_cancelamento;type:varchar(50)"`
}

func (Pedido) TableName() string { return "pedidos" }

type Produto struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Nome      string          `json:"nome" gorm:"type:varchar(255);not null"`
	Categoria string          `json:"categoria" gorm:"type:varchar(100)"`
	Preco     decimal.Decimal `json:"preco" gorm:"type:decimal(12,2)"`
}

func (Produto) TableName() string { return "produtos" }

type ItemPedido struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	IDPedido      uint            `json:"id_pedido" gorm:"column:id_pedido;index"`
	IDProduto     uint            `json:"id_produto" gorm:"column:id_produto;index"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario" gorm:"column:preco_unitario;type:decimal(12,2)"`
}

func (ItemPedido) TableName() string { return "itens_pedido" }

type Feedback struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	IDPedido     uint    `json:"id_pedido" gorm:"column:id_pedido;index"`
	Nota         int     `json:"nota"`
	TipoFeedback string  `json:"tipo_feedback" gorm:"column:tipo_feedback;type:varchar(50)"`
	Comentario   *string `json:"comentario" gorm:"type:text"`
}

func (Feedback) TableName() string { return "feedbacks" }

// MetricaDiaria is the precomputed per unit, per day rollup
type MetricaDiaria struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	IDUnidade          uint            `json:"id_unidade" gorm:"column:id_unidade;index"`
	DataReferencia     time.Time       `json:"data_referencia" gorm:"column:data_referencia;index"`
	TotalFaturamento   decimal.Decimal `json:"total_faturamento" gorm:"column:total_faturamento;type:decimal(12,2)"`
	TotalPedidos       int             `json:"total_pedidos" gorm:"column:total_pedidos"`
	TotalCancelamentos int             `json:"total_cancelamentos" gorm:"column:total_cancelamentos"`
	MediaNota          decimal.Decimal `json:"media_nota" gorm:"column:media_nota;type:decimal(4,2)"`
}

func (MetricaDiaria) TableName() string { return "metricas_diarias" }

func allModels() []any {
	return []any{&Unidade{}, &Login{}, &Pedido{}, &Produto{}, &ItemPedido{}, &Feedback{}, &MetricaDiaria{}}
}
