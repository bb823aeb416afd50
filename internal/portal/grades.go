package portal

import (
	"context"

	"github.com/myruppin/portal-companion/internal/models"
)

type gradeSubRow struct {
	GroupName flexString `json:"zin_sug"`
	Date      flexString `json:"bhn_moed_dtmoed"`
	Time      flexString `json:"bhn_moed_time"`
	Grade     flexString `json:"moed_1_zin"`
}

type gradeDetailRow struct {
	Name       flexString    `json:"krs_shm"`
	FinalGrade flexString    `json:"bhnzin"`
	Body       []gradeSubRow `json:"__body"`
}

type gradeCourseRow struct {
	Name      flexString       `json:"krs_shm"`
	Grade     flexString       `json:"moed_1_zin"`
	StudyYear flexString       `json:"krs_snl"`
	Weight    flexString       `json:"zikui_mishkal"`
	Body      []gradeDetailRow `json:"__body"`
}

type gradeAverageRow struct {
	CumulativeAverage flexString `json:"cumulativeAverage"`
	AnnualAverage     flexString `json:"annualAverage"`
}

type gradesResponse struct {
	Averages         []gradeAverageRow `json:"averages"`
	CollapsedCourses struct {
		ClientData []gradeCourseRow `json:"clientData"`
	} `json:"collapsedCourses"`
}

// FetchGrades retrieves the complete grades tree plus averages. Courses with
// no grade yet carry models.NoGradeSentinel.
func (c *Client) FetchGrades(ctx context.Context, token string) (*models.GradesData, error) {
	var resp gradesResponse
	if err := c.postJSON(ctx, "/api/Grades/Data", token, nil, &resp); err != nil {
		return nil, err
	}

	averages := models.GradesAverages{}
	if len(resp.Averages) > 0 {
		averages.CumulativeAverage = resp.Averages[0].CumulativeAverage.String()
		annual := make([]string, 0, len(resp.Averages))
		for _, row := range resp.Averages {
			annual = append(annual, row.AnnualAverage.String())
		}
		// Portal lists years newest-last; the app shows newest-first.
		for i, j := 0, len(annual)-1; i < j; i, j = i+1, j-1 {
			annual[i], annual[j] = annual[j], annual[i]
		}
		averages.AnnualAverages = annual
	}

	courses := make([]models.Course, 0, len(resp.CollapsedCourses.ClientData))
	for _, row := range resp.CollapsedCourses.ClientData {
		courses = append(courses, models.Course{
			Name:      row.Name.String(),
			Grade:     row.Grade.or(models.NoGradeSentinel),
			StudyYear: row.StudyYear.String(),
			Weight:    row.Weight.String(),
			Details:   parseGradeDetails(row.Body),
		})
	}

	return &models.GradesData{Courses: courses, Averages: averages}, nil
}

func parseGradeDetails(rows []gradeDetailRow) []models.Detail {
	if len(rows) == 0 {
		return nil
	}
	details := make([]models.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, models.Detail{
			Name:       row.Name.or("No name"),
			FinalGrade: row.FinalGrade.or("No final grade"),
			SubDetails: parseGradeSubDetails(row.Body),
		})
	}
	return details
}

func parseGradeSubDetails(rows []gradeSubRow) []models.SubDetail {
	if len(rows) == 0 {
		return nil
	}
	subs := make([]models.SubDetail, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, models.SubDetail{
			GroupName: row.GroupName.or("No group name"),
			Date:      row.Date.String(),
			Time:      row.Time.String(),
			Grade:     row.Grade.or(models.NoGradeSentinel),
		})
	}
	return subs
}
