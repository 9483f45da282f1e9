package domain

import "time"

// Project groups tasks under a single owner.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	OwnerID     string     `json:"owner_id"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *Project) String() string {
	if p == nil {
		return ""
	}
	return p.Name
}

// Clean checks the date ordering invariant.
func (p *Project) Clean() error {
	if p == nil || p.EndDate == nil || p.StartDate.IsZero() {
		return nil
	}
	if p.EndDate.Before(p.StartDate) {
		return NewFieldError("end_date", MsgEndBeforeStart)
	}
	return nil
}

// Touch maintains the system-managed timestamps and defaults.
func (p *Project) Touch(now time.Time) {
	if p == nil {
		return
	}
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
}
