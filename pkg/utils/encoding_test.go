package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairMojibake(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"Entregue":             "Entregue",
		"SÃ£o Paulo":           "São Paulo",
		"Pedido nÃ£o entregue": "Pedido não entregue",
		"CafÃ© com pÃ£o":       "Café com pão",
		"Itâ€™s late":          "It’s late",
		// already correct text cannot be re-encoded into valid UTF-8
		"São Paulo":  "São Paulo",
		"Açaí 500ml": "Açaí 500ml",
		// runes outside both charsets leave the text untouched
		"Pedido 🍕": "Pedido 🍕",
	}
	for in, want := range cases {
		assert.Equal(t, want, RepairMojibake(in), in)
	}
}

func TestRepairMapStrings(t *testing.T) {
	row := map[string]any{
		"unidade": "SÃ£o Paulo",
		"total":   int64(3),
		"media":   4.5,
		"nil":     nil,
	}
	RepairMapStrings(row)
	assert.Equal(t, "São Paulo", row["unidade"])
	assert.Equal(t, int64(3), row["total"])
	assert.Equal(t, 4.5, row["media"])
	assert.Nil(t, row["nil"])
}
