package domain

// TrendPoint one day of traffic
type TrendPoint struct {
	Date     string `json:"date"`
	Views    int    `json:"views"`
	Visitors int    `json:"visitors"`
}

// TopPost a weekly top post ranking entry
type TopPost struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Views int    `json:"views"`
}

// DashboardSummary headline counters
type DashboardSummary struct {
	TotalPosts    int `json:"totalPosts"`
	TotalComments int `json:"totalComments"`
	TodayViews    int `json:"todayViews"`
	TodayVisitors int `json:"todayVisitors"`
}

// Dashboard the GET /analytics/dashboard response: summary counters,
// the traffic trend, recent comments and weekly top posts.
type Dashboard struct {
	Summary        DashboardSummary `json:"summary"`
	Trend          []TrendPoint     `json:"trend"`
	RecentComments []Comment        `json:"recentComments"`
	WeeklyTopPosts []TopPost        `json:"weeklyTopPosts"`
}
