package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Event is a calendar entry destined for an ICS feed.
type Event struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// ICSExporter renders events into an iCalendar document.
type ICSExporter struct {
	prodID string
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter(prodID string) *ICSExporter {
	if prodID == "" {
		prodID = "-//portal-companion//EN"
	}
	return &ICSExporter{prodID: prodID}
}

// Render serialises the events as a VCALENDAR.
func (e *ICSExporter) Render(events []Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.prodID)

	for i, ev := range events {
		uid := ev.UID
		if uid == "" {
			uid = fmt.Sprintf("event-%d@portal-companion", i)
		}
		ve := cal.AddEvent(uid)
		ve.SetSummary(ev.Summary)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetDtStampTime(time.Now().UTC())
	}

	return []byte(cal.Serialize()), nil
}
