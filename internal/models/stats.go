package models

// LeaderboardEntry ranks a reporter by the number of profiled issues filed.
type LeaderboardEntry struct {
	UserCompact
	Email      string `json:"email,omitempty"`
	State      string `json:"state,omitempty"`
	District   string `json:"district,omitempty"`
	IssueCount int64  `json:"issueCount"`
}

// DashboardStats summarises issues for an admin's scope.
type DashboardStats struct {
	TotalIssues      int64 `json:"totalIssues"`
	ResolvedIssues   int64 `json:"resolvedIssues"`
	PendingIssues    int64 `json:"pendingIssues"`
	PendingApprovals int64 `json:"pendingApprovals"`
}
