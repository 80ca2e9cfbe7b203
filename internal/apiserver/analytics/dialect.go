package analytics

import (
	"fmt"
	"time"

	"github.com/amoylab/ifood-dashboard/internal/common/config"
)

// Dialect renders the date arithmetic that differs between databases.
// Every bucket expression yields text, every hour and weekday an integer.
type Dialect interface {
	Name() string
	// Month buckets as "YYYY-MM"
	Month(col string) string
	// Week buckets as the "YYYY-MM-DD" of its Monday
	Week(col string) string
	// Day buckets as "YYYY-MM-DD"
	Day(col string) string
	// Hour of day, 0 to 23
	Hour(col string) string
	// Weekday with Sunday as 0
	Weekday(col string) string
	// MinutesBetween is the fractional minutes from one timestamp to another
	MinutesBetween(from, to string) string
	// Timestamp is the column as compared against a Bound
	Timestamp(col string) string
	// Bound is the argument compared against a Timestamp
	Bound(t time.Time) any
}

// DialectFor returns the dialect of a database type
func DialectFor(name string) (Dialect, error) {
	switch name {
	case config.DatabaseTypeSQLite:
		return sqliteDialect{}, nil
	case config.DatabaseTypePostgres:
		return postgresDialect{}, nil
	case config.DatabaseTypeMySQL:
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s", name)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return config.DatabaseTypeSQLite }

func (sqliteDialect) Month(col string) string {
	return fmt.Sprintf("strftime('%%Y-%%m', %s)", col)
}

func (sqliteDialect) Week(col string) string {
	return fmt.Sprintf("date(%s, 'weekday 0', '-6 days')", col)
}

func (sqliteDialect) Day(col string) string {
	return fmt.Sprintf("date(%s)", col)
}

func (sqliteDialect) Hour(col string) string {
	return fmt.Sprintf("CAST(strftime('%%H', %s) AS INTEGER)", col)
}

func (sqliteDialect) Weekday(col string) string {
	return fmt.Sprintf("CAST(strftime('%%w', %s) AS INTEGER)", col)
}

func (sqliteDialect) MinutesBetween(from, to string) string {
	return fmt.Sprintf("((julianday(%s) - julianday(%s)) * 1440.0)", to, from)
}

// SQLite keeps times as text carrying their own offset while date() and
// strftime() bucket in UTC, so ranges compare normalised UTC text too.
const sqliteTimestamp = "2006-01-02 15:04:05"

func (sqliteDialect) Timestamp(col string) string {
	return fmt.Sprintf("datetime(%s)", col)
}

func (sqliteDialect) Bound(t time.Time) any {
	return t.UTC().Format(sqliteTimestamp)
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return config.DatabaseTypePostgres }

func (postgresDialect) Month(col string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM')", col)
}

func (postgresDialect) Week(col string) string {
	return fmt.Sprintf("to_char(date_trunc('week', %s), 'YYYY-MM-DD')", col)
}

func (postgresDialect) Day(col string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col)
}

func (postgresDialect) Hour(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(HOUR FROM %s) AS INTEGER)", col)
}

func (postgresDialect) Weekday(col string) string {
	return fmt.Sprintf("CAST(EXTRACT(DOW FROM %s) AS INTEGER)", col)
}

func (postgresDialect) MinutesBetween(from, to string) string {
	return fmt.Sprintf("(EXTRACT(EPOCH FROM (%s - %s)) / 60.0)", to, from)
}

func (postgresDialect) Timestamp(col string) string { return col }

func (postgresDialect) Bound(t time.Time) any { return t }

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return config.DatabaseTypeMySQL }

func (mysqlDialect) Month(col string) string {
	return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", col)
}

func (mysqlDialect) Week(col string) string {
	return fmt.Sprintf("DATE_FORMAT(DATE_SUB(%s, INTERVAL WEEKDAY(%s) DAY), '%%Y-%%m-%%d')", col, col)
}

func (mysqlDialect) Day(col string) string {
	return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", col)
}

func (mysqlDialect) Hour(col string) string {
	return fmt.Sprintf("HOUR(%s)", col)
}

func (mysqlDialect) Weekday(col string) string {
	return fmt.Sprintf("(DAYOFWEEK(%s) - 1)", col)
}

func (mysqlDialect) MinutesBetween(from, to string) string {
	return fmt.Sprintf("(TIMESTAMPDIFF(SECOND, %s, %s) / 60.0)", from, to)
}

func (mysqlDialect) Timestamp(col string) string { return col }

func (mysqlDialect) Bound(t time.Time) any { return t }
