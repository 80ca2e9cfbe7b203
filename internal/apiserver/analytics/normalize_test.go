package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	assert.Nil(t, toNumber(nil))
	assert.Equal(t, int64(3), toNumber(int64(3)))
	assert.Equal(t, int64(3), toNumber(3))
	assert.Equal(t, 1.23, toNumber(1.2345))
	assert.Equal(t, int64(42), toNumber("42"))
	assert.Equal(t, 42.5, toNumber([]byte("42.50")))
	assert.Equal(t, 0.33, toNumber("0.333333333"))
	assert.Equal(t, 7.1, toNumber(decimal.RequireFromString("7.099")))
	assert.Equal(t, "n/a", toNumber("n/a"))
}

func TestNormalizeRow(t *testing.T) {
	row := normalizeRow(Row{"unidade": "SÃ£o Paulo", "total": "12", "mes": "2024-01"}, []string{"total"})
	assert.Equal(t, "São Paulo", row["unidade"])
	assert.Equal(t, int64(12), row["total"])
	assert.Equal(t, "2024-01", row["mes"])
}

func TestWithZeroDefaults(t *testing.T) {
	row := withZeroDefaults(nil, "a")
	assert.Equal(t, int64(0), row["a"])

	row = withZeroDefaults(Row{"a": nil, "b": 2.5}, "a", "b")
	assert.Equal(t, int64(0), row["a"])
	assert.Equal(t, 2.5, row["b"])
}
