package calendar

import "time"

// CalendarDay feeds the activity heatmap on the profile page.
type CalendarDay struct {
	Date     time.Time `json:"date"`
	Active   bool      `json:"active"`
	XPEarned int       `json:"xp_earned"`
	IsToday  bool      `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
