package database

import (
	"context"
	"database/sql"
)

func (s *store) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.conn(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows, 0)
}

func (s *store) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := s.conn(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, err := scanRows(rows, 1)
	if err != nil || len(result) == 0 {
		return nil, err
	}
	return result[0], nil
}

// scanRows reads rows into maps keyed by column name, stopping after max rows when max > 0
func scanRows(rows *sql.Rows, max int) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result = append(result, row)

		if max > 0 && len(result) >= max {
			break
		}
	}
	return result, rows.Err()
}

// normalizeValue turns driver byte slices into strings so rows serialize as text
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
