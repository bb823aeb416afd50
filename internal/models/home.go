package models

import "time"

// EventInfo describes the event currently in progress, if any.
type EventInfo struct {
	Title     string `json:"title"`
	Place     string `json:"place"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// UpcomingEvent is a future calendar item from the home endpoint.
type UpcomingEvent struct {
	Title  string `json:"title"`
	Date   string `json:"date"` // dd/MM/yyyy, as rendered by the portal app
	Type   string `json:"type,omitempty"`
	IsExam bool   `json:"is_exam"`
}

// DaysLeft computes the number of days until the event, relative to now.
func (e UpcomingEvent) DaysLeft(now time.Time) (int, error) {
	d, err := time.Parse("02/01/2006", e.Date)
	if err != nil {
		return 0, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(today).Hours() / 24), nil
}

// HomeData aggregates everything the home screen shows.
type HomeData struct {
	UserName       string          `json:"user_name,omitempty"`
	CurrentEvent   *EventInfo      `json:"current_event,omitempty"`
	UpcomingEvents []UpcomingEvent `json:"upcoming_events"`
}
