package analytics

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amoylab/ifood-dashboard/pkg/utils"
)

// normalizeRows repairs text values and turns the numeric columns into JSON numbers
func normalizeRows(rows []Row, numeric []string) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeRow(row, numeric))
	}
	return out
}

func normalizeRow(row Row, numeric []string) Row {
	for _, col := range numeric {
		if v, ok := row[col]; ok {
			row[col] = toNumber(v)
		}
	}
	utils.RepairMapStrings(row)
	return row
}

// toNumber converts driver values to int64 or a float rounded to cents.
// Drivers hand back DECIMAL and NUMERIC columns as text.
func toNumber(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return round2(n)
	case float32:
		return round2(float64(n))
	case []byte:
		return parseNumber(string(n), v)
	case string:
		return parseNumber(n, v)
	case decimal.Decimal:
		return n.Round(2).InexactFloat64()
	default:
		return v
	}
}

func parseNumber(s string, fallback any) any {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fallback
	}
	return d.Round(2).InexactFloat64()
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// number reads a normalized numeric value as a decimal, treating nil as zero
func number(v any) decimal.Decimal {
	switch n := v.(type) {
	case int64:
		return decimal.NewFromInt(n)
	case float64:
		return decimal.NewFromFloat(n)
	default:
		return decimal.Zero
	}
}
