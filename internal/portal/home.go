package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/myruppin/portal-companion/internal/models"
)

type homeScheduleRequest struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

type homeEventData struct {
	Title     flexString `json:"title"`
	Place     flexString `json:"place"`
	StartTime flexString `json:"startTime"`
	EndTime   flexString `json:"endTime"`
}

type homeScheduleResponse struct {
	Events []struct {
		Data homeEventData `json:"data"`
	} `json:"events"`
}

// FetchCurrentEvent returns the first event scheduled for today, or nil when
// the day is free.
func (c *Client) FetchCurrentEvent(ctx context.Context, token string, now time.Time) (*models.EventInfo, error) {
	day := now.Format("2006-01-02")
	req := homeScheduleRequest{
		FromDate: day + "T00:00:00",
		ToDate:   day + "T00:00:00",
	}

	var resp homeScheduleResponse
	if err := c.postJSON(ctx, "/api/Home/ScheduleData", token, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Events) == 0 {
		return nil, nil
	}

	data := resp.Events[0].Data
	return &models.EventInfo{
		Title:     data.Title.or("No title"),
		Place:     data.Place.or("No location"),
		StartTime: clockFromISO(data.StartTime.String()),
		EndTime:   clockFromISO(data.EndTime.String()),
	}, nil
}

type homeDataResponse struct {
	Events []struct {
		Title flexString `json:"title"`
		Date  flexString `json:"date"`
		Type  flexString `json:"type"`
	} `json:"events"`
}

// FetchUpcomingEvents lists future deadlines and exam sittings from the home
// endpoint. Dates are reformatted to dd/MM/yyyy the way the app displays them.
func (c *Client) FetchUpcomingEvents(ctx context.Context, token string) ([]models.UpcomingEvent, error) {
	var resp homeDataResponse
	if err := c.postJSON(ctx, "/api/Home/Data", token, nil, &resp); err != nil {
		return nil, err
	}

	events := make([]models.UpcomingEvent, 0, len(resp.Events))
	for _, ev := range resp.Events {
		events = append(events, models.UpcomingEvent{
			Title:  ev.Title.or("No title"),
			Date:   reformatEventDate(ev.Date.String()),
			Type:   ev.Type.String(),
			IsExam: ev.Type.String() == "StudentExams",
		})
	}
	return events, nil
}

// clockFromISO extracts HH:MM from an ISO datetime, tolerating values without
// a time component.
func clockFromISO(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 && len(s) >= i+6 {
		return s[i+1 : i+6]
	}
	return s
}

// reformatEventDate turns YYYY-MM-DD[Txx] into dd/MM/yyyy. Inputs that do
// not match are passed through untouched.
func reformatEventDate(s string) string {
	datePart := s
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		datePart = s[:i]
	}
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return s
	}
	return fmt.Sprintf("%s/%s/%s", parts[2], parts[1], parts[0])
}
