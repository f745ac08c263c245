package database

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

// whereBuilder collects AND-ed conditions and their positional args.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends cond, where every "?" is replaced with the next $n.
func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an arg appended after the conditions.
func (w *whereBuilder) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

// leadWhere is the single place lead listings turn a LeadFilter into SQL.
func leadWhere(f entity.LeadFilter) *whereBuilder {
	w := &whereBuilder{}
	if len(f.Statuses) > 0 {
		w.add("l.status = ANY(?::text[])", pq.Array(statusStrings(f.Statuses)))
	}
	if f.UserID != "" {
		w.add("l.user_id = ?", f.UserID)
	}
	if f.ClientID != "" {
		w.add("l.client_id = ?", f.ClientID)
	}
	if f.Country != "" {
		w.add("l.country = ?", f.Country)
	}
	if f.From != nil {
		w.add("l.created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("l.created_at < ?", *f.To)
	}
	return w
}

func statusStrings(statuses []entity.LeadStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
