package dto

// DashboardResponse holds the admin dashboard stat cards
type DashboardResponse struct {
	TodayBookings    int   `json:"today_bookings"`
	TodayRevenue     int64 `json:"today_revenue"`
	UpcomingBookings int   `json:"upcoming_bookings"`
	TotalUsers       int   `json:"total_users"`
}

// ReportRow is one date of the range report, with per-turf-type booking
// counts and the summed revenue for non-cancelled bookings.
type ReportRow struct {
	Date         string `json:"date"`
	FootballFull int    `json:"football_full"`
	FootballHalf int    `json:"football_half"`
	Cricket      int    `json:"cricket"`
	Bookings     int    `json:"bookings"`
	Revenue      int64  `json:"revenue"`
}

// ReportResponse is the admin date-range report
type ReportResponse struct {
	From          string      `json:"from"`
	To            string      `json:"to"`
	TotalBookings int         `json:"total_bookings"`
	TotalRevenue  int64       `json:"total_revenue"`
	Rows          []ReportRow `json:"rows"`
}
