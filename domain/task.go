package domain

import "time"

// Task is a unit of work inside a project, created by one user and
// optionally assigned to another.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ProjectID   string     `json:"project_id"`
	AssigneeID  *string    `json:"assigned_to,omitempty"`
	CreatorID   string     `json:"created_by"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     time.Time  `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Task) String() string {
	if t == nil {
		return ""
	}
	return t.Title
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue reports a due date before today on a task that is still open.
func (t *Task) IsOverdue(today time.Time) bool {
	if t == nil || t.Status == StatusCompleted || t.Status == StatusCancelled {
		return false
	}
	return t.DueDate.Before(DateOf(today))
}

// AssignedTo reports whether userID is the assignee.
func (t *Task) AssignedTo(userID string) bool {
	return t != nil && t.AssigneeID != nil && *t.AssigneeID == userID
}

// Clean rejects due dates before today.
func (t *Task) Clean(today time.Time) error {
	if t == nil || t.DueDate.IsZero() {
		return nil
	}
	if t.DueDate.Before(DateOf(today)) {
		return NewFieldError("due_date", MsgDueInPast)
	}
	return nil
}

// ApplyCompletion stamps CompletedAt the first time a task is saved as
// completed and clears it for any other status. Storage calls it on
// every save.
func (t *Task) ApplyCompletion(now time.Time) {
	if t == nil {
		return
	}
	if t.Status == StatusCompleted {
		if t.CompletedAt == nil {
			stamp := now
			t.CompletedAt = &stamp
		}
		return
	}
	t.CompletedAt = nil
}

// Touch maintains the system-managed timestamps and defaults.
func (t *Task) Touch(now time.Time) {
	if t == nil {
		return
	}
	t.UpdatedAt = now
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
}
