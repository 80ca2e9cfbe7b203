package analytics

import "github.com/amoylab/ifood-dashboard/internal/apiserver/database"

// Scope restricts a query to one unit when UnitID is set
type Scope struct {
	UnitID *uint
}

// Unscoped sees every unit
var Unscoped = Scope{}

// ScopeFor derives the scope of a user from its home unit
func ScopeFor(user *database.Login) Scope {
	if user == nil || user.IDUnidade == nil {
		return Unscoped
	}
	id := *user.IDUnidade
	return Scope{UnitID: &id}
}

// Scoped reports whether a unit predicate applies
func (s Scope) Scoped() bool {
	return s.UnitID != nil
}
