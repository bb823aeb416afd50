package portal

import (
	"context"
	"sort"
	"time"

	"github.com/myruppin/portal-companion/internal/models"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

// WeekKeyLayout renders a week-start date the way the portal expects it and
// the way the cache keys fetched weeks.
const WeekKeyLayout = "2006-01-02T00:00:00.000Z"

type scheduleParamsResponse struct {
	ScheduleParams *models.ScheduleParams `json:"_ScheduleParams"`
}

// FetchScheduleParams obtains the opaque schedule query handle.
func (c *Client) FetchScheduleParams(ctx context.Context, token string) (*models.ScheduleParams, error) {
	var resp scheduleParamsResponse
	if err := c.postJSON(ctx, "/api/StudentSchedule/Data", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.ScheduleParams == nil || resp.ScheduleParams.Hash == "" {
		return nil, appErrors.Clone(appErrors.ErrUpstreamParse, "schedule params missing")
	}
	return resp.ScheduleParams, nil
}

type courseRow struct {
	Name       flexString `json:"krs_shm"`
	Instructor flexString `json:"pm_shm"`
	Start      flexString `json:"krs_moed_meshaa"`
	End        flexString `json:"krs_moed_adshaa"`
	Day        flexString `json:"krs_moed_yom"`
	Location   flexString `json:"hdr_shm"`
	Semester   flexString `json:"krs_moed_sms"`
	StudyYear  flexString `json:"krs_snl"`
}

type coursesResponse struct {
	ScheduleViewItemSms struct {
		ClientData []courseRow `json:"clientData"`
	} `json:"scheduleViewItemSms"`
}

// FetchCourses retrieves the full course list, sorted by start time.
func (c *Client) FetchCourses(ctx context.Context, token string, params *models.ScheduleParams) ([]models.ScheduleCourse, error) {
	var resp coursesResponse
	if err := c.postJSON(ctx, "/api/StudentScheduleCommon/GetSchedule", token, params, &resp); err != nil {
		return nil, err
	}

	courses := make([]models.ScheduleCourse, 0, len(resp.ScheduleViewItemSms.ClientData))
	for _, row := range resp.ScheduleViewItemSms.ClientData {
		courses = append(courses, models.ScheduleCourse{
			Name:       row.Name.String(),
			Instructor: row.Instructor.String(),
			StartTime:  models.ClockFromDateTime(row.Start.or("00:00")),
			EndTime:    models.ClockFromDateTime(row.End.or("00:00")),
			Day:        row.Day.or("Unknown"),
			Location:   row.Location.or("Unknown"),
			Semester:   row.Semester.or("Unknown"),
			StudyYear:  row.StudyYear.or("Unknown"),
		})
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].StartTime < courses[j].StartTime
	})
	return courses, nil
}

type weekRow struct {
	Date     flexString `json:"date"`
	Title    flexString `json:"title"`
	Start    flexString `json:"mar_full_start"`
	End      flexString `json:"mar_full_end"`
	Place    flexString `json:"place"`
	MoreInfo flexString `json:"moreinfo"`
}

type weekResponse struct {
	ScheduleViewItemWeek struct {
		ClientData []weekRow `json:"clientData"`
	} `json:"scheduleViewItemWeek"`
}

type weekRequest struct {
	ScheduleParams *models.ScheduleParams `json:"_ScheduleParams"`
	Date           string                 `json:"date"`
}

// FetchWeekSchedule retrieves the 7-day window anchored at weekStart.
func (c *Client) FetchWeekSchedule(ctx context.Context, token string, params *models.ScheduleParams, weekStart time.Time) ([]models.ScheduleEntry, error) {
	req := weekRequest{
		ScheduleParams: params,
		Date:           weekStart.Format(WeekKeyLayout),
	}

	var resp weekResponse
	if err := c.postJSON(ctx, "/api/StudentScheduleCommon/DateChanged", token, req, &resp); err != nil {
		return nil, err
	}

	entries := make([]models.ScheduleEntry, 0, len(resp.ScheduleViewItemWeek.ClientData))
	for _, row := range resp.ScheduleViewItemWeek.ClientData {
		entries = append(entries, models.ScheduleEntry{
			Date:      row.Date.String(),
			Title:     row.Title.String(),
			StartTime: row.Start.String(),
			EndTime:   row.End.String(),
			Place:     row.Place.String(),
			MoreInfo:  row.MoreInfo.String(),
		})
	}
	return entries, nil
}
