package models

import "strings"

// ScheduleParams carries the opaque handle the portal hands out for schedule
// queries. All four fields must be echoed back verbatim.
type ScheduleParams struct {
	Hash  string `json:"__hash"`
	Pt    int    `json:"pt"`
	PtMsl int    `json:"ptMsl"`
	Shl   int    `json:"shl"`
}

// ScheduleEntry is a single calendar event from the week-schedule endpoint.
// Date holds the full portal datetime string (ISO 8601); StartTime and
// EndTime keep the raw datetime strings the portal sends.
type ScheduleEntry struct {
	Date      string `json:"date"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Place     string `json:"place,omitempty"`
	MoreInfo  string `json:"more_info,omitempty"`
}

// DateKey returns the day-granularity portion of the entry date (YYYY-MM-DD).
func (e ScheduleEntry) DateKey() string {
	if i := strings.IndexByte(e.Date, 'T'); i >= 0 {
		return e.Date[:i]
	}
	return e.Date
}

// StartClock returns the HH:MM portion of the start datetime. Unparsable
// values fall back to the raw string so sorting stays total instead of
// failing.
func (e ScheduleEntry) StartClock() string {
	return ClockFromDateTime(e.StartTime)
}

// ClockFromDateTime extracts HH:MM from a portal datetime string
// (YYYY-MM-DDTHH:MM...). Short or malformed inputs are returned unchanged.
func ClockFromDateTime(s string) string {
	if len(s) >= 16 {
		return s[11:16]
	}
	return s
}

// ScheduleCourse is one row of the full course-list view, used for
// study-year/semester filtering.
type ScheduleCourse struct {
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Day        string `json:"day"`
	Location   string `json:"location"`
	Semester   string `json:"semester"`
	StudyYear  string `json:"study_year"`
}
