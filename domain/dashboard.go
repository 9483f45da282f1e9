package domain

// Dashboard aggregates the acting user's projects and tasks.
type Dashboard struct {
	TotalProjects  int       `json:"total_projects"`
	TotalTasks     int       `json:"total_tasks"`
	PendingTasks   int       `json:"pending_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	OverdueTasks   int       `json:"overdue_tasks"`
	RecentProjects []Project `json:"recent_projects"`
	RecentTasks    []Task    `json:"recent_tasks"`
}
