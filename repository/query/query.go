// Package query renders repository filters into SQL predicates with "?"
// placeholders. Dialects that need numbered placeholders rebind the
// result (see sqlx.Rebind).
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// Dialect converts values whose storage representation differs per engine.
type Dialect struct {
	Date func(time.Time) any
}

func (d Dialect) date(t time.Time) any {
	if d.Date == nil {
		return t
	}
	return d.Date(t)
}

// Where accumulates AND-ed conditions.
type Where struct {
	conds []string
	args  []any
}

func (w *Where) Add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *Where) Empty() bool {
	return len(w.conds) == 0
}

// SQL renders " WHERE ..." or an empty string.
func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *Where) Args() []any {
	return w.args
}

// Or widens the accumulated conditions with an alternative predicate.
// An empty Where already matches everything and is left unchanged.
func (w *Where) Or(cond string, args ...any) {
	if len(w.conds) == 0 {
		return
	}
	combined := "((" + strings.Join(w.conds, " AND ") + ") OR " + cond + ")"
	w.conds = []string{combined}
	w.args = append(w.args, args...)
}

// Like builds a case-insensitive containment pattern.
func Like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// Page renders LIMIT/OFFSET. A non-positive limit returns every row.
func Page(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func statusArgs(statuses []domain.Status) []any {
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	return args
}

// Users renders a user filter.
func Users(f repository.UserFilter) *Where {
	w := &Where{}
	if f.ID != "" {
		w.Add("id = ?", f.ID)
	}
	if f.IsStaff != nil {
		w.Add("is_staff = ?", *f.IsStaff)
	}
	if f.IsSuperuser != nil {
		w.Add("is_superuser = ?", *f.IsSuperuser)
	}
	if strings.TrimSpace(f.Search) != "" {
		p := Like(f.Search)
		w.Add("(LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)", p, p, p, p)
	}
	return w
}

// Projects renders a project filter, honouring IncludeID.
func Projects(f repository.ProjectFilter) *Where {
	w := &Where{}
	if f.ID != "" {
		w.Add("id = ?", f.ID)
	}
	if f.OwnerID != "" {
		w.Add("created_by = ?", f.OwnerID)
	}
	if f.Status != "" {
		w.Add("status = ?", string(f.Status))
	}
	if strings.TrimSpace(f.Search) != "" {
		p := Like(f.Search)
		w.Add("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", p, p)
	}
	if f.IncludeID != "" {
		w.Or("id = ?", f.IncludeID)
	}
	return w
}

// Tasks renders a task filter.
func Tasks(d Dialect, f repository.TaskFilter) *Where {
	w := &Where{}
	if f.ID != "" {
		w.Add("id = ?", f.ID)
	}
	if f.CreatorID != "" {
		w.Add("created_by = ?", f.CreatorID)
	}
	if f.AssigneeID != "" {
		w.Add("assigned_to = ?", f.AssigneeID)
	}
	if f.InvolvedUserID != "" {
		w.Add("(created_by = ? OR assigned_to = ?)", f.InvolvedUserID, f.InvolvedUserID)
	}
	if f.ProjectID != "" {
		w.Add("project_id = ?", f.ProjectID)
	}
	if len(f.Statuses) > 0 {
		w.Add("status IN ("+placeholders(len(f.Statuses))+")", statusArgs(f.Statuses)...)
	}
	if len(f.ExcludeStatuses) > 0 {
		w.Add("status NOT IN ("+placeholders(len(f.ExcludeStatuses))+")", statusArgs(f.ExcludeStatuses)...)
	}
	if f.Priority != "" {
		w.Add("priority = ?", string(f.Priority))
	}
	if f.DueBefore != nil {
		w.Add("due_date < ?", d.date(domain.DateOf(*f.DueBefore)))
	}
	if strings.TrimSpace(f.Search) != "" {
		p := Like(f.Search)
		w.Add("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", p, p)
	}
	return w
}

// TaskOrderBy renders the ORDER BY clause for a task listing.
func TaskOrderBy(order repository.TaskOrder) string {
	switch order {
	case repository.OrderByRecent:
		return " ORDER BY created_at DESC, id DESC"
	default:
		return ` ORDER BY CASE priority
		WHEN 'urgent' THEN 4
		WHEN 'high' THEN 3
		WHEN 'medium' THEN 2
		WHEN 'low' THEN 1
		ELSE 0 END DESC, due_date ASC, id ASC`
	}
}

// AdminLog renders an admin history filter.
func AdminLog(f repository.AdminLogFilter) *Where {
	w := &Where{}
	if f.ActorID != "" {
		w.Add("actor_id = ?", f.ActorID)
	}
	if f.ObjectType != "" {
		w.Add("object_type = ?", f.ObjectType)
	}
	if f.ObjectID != "" {
		w.Add("object_id = ?", f.ObjectID)
	}
	return w
}
