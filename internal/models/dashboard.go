package models

// DashboardSummary is the composed read model behind GET /dashboard.
type DashboardSummary struct {
	TotalGoals         int            `json:"total_goals"`
	CompletedGoals     int            `json:"completed_goals"`
	InProgressGoals    int            `json:"in_progress_goals"`
	NotStartedGoals    int            `json:"not_started_goals"`
	CompletionRate     int            `json:"completion_rate"`
	RecentGoals        []Goal         `json:"recent_goals"`
	AchievementsCount  int            `json:"achievements_count"`
	RecentAchievements []UnlockRecord `json:"recent_achievements"`
	Streak             int            `json:"streak"`
}

// GoalList is the listing response: the filtered goals plus the distinct
// categories present in that filtered set (not in the full catalog).
type GoalList struct {
	Goals      []Goal   `json:"goals"`
	Categories []string `json:"categories"`
}

// Timeline is the cumulative goal count by creation date.
type Timeline struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// StatusCount is one slice of the status distribution report.
type StatusCount struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// CategoryCount is one bar of the category distribution report.
type CategoryCount struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
}

// CompletionSummary is the completed-vs-pending report.
type CompletionSummary struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}
