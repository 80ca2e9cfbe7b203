package analytics

import (
	"strings"
	"time"
)

// Filter accumulates AND-ed predicates and their positional arguments
type Filter struct {
	dialect Dialect
	conds   []string
	args    []any
}

// NewFilter starts an empty filter; time bounds are rendered by d
func NewFilter(d Dialect) *Filter {
	return &Filter{dialect: d}
}

// Where appends a predicate written with ? placeholders
func (f *Filter) Where(cond string, args ...any) *Filter {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
	return f
}

// DateRange bounds column by r; open sides add nothing
func (f *Filter) DateRange(column string, r DateRange) *Filter {
	if r.Start != nil {
		f.Where(f.dialect.Timestamp(column)+" >= ?", f.dialect.Bound(*r.Start))
	}
	if r.End != nil {
		f.Where(f.dialect.Timestamp(column)+" < ?", f.dialect.Bound(r.endExclusive()))
	}
	return f
}

// Before keeps rows whose column lies strictly before t
func (f *Filter) Before(column string, t time.Time) *Filter {
	return f.Where(f.dialect.Timestamp(column)+" < ?", f.dialect.Bound(t))
}

// Unit restricts column to the scope's unit; an unscoped user adds nothing
func (f *Filter) Unit(column string, s Scope) *Filter {
	if s.Scoped() {
		f.Where(column+" = ?", *s.UnitID)
	}
	return f
}

// SQL renders " WHERE a AND b", or an empty string without predicates
func (f *Filter) SQL() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// Args returns the arguments in placeholder order
func (f *Filter) Args() []any {
	return f.args
}
