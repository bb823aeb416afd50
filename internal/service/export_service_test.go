package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/internal/models"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

type staticScheduleSource struct {
	byDay map[string][]models.ScheduleEntry
}

func (s *staticScheduleSource) EntriesForMonth(year int, month time.Month) map[string][]models.ScheduleEntry {
	return s.byDay
}

func TestExportServiceGradesCSV(t *testing.T) {
	fetcher := &mockGradesFetcher{data: &models.GradesData{Courses: []models.Course{
		{Name: "Math", Grade: "95", StudyYear: "1", Weight: "4"},
		{Name: "Seminar", Grade: models.NoGradeSentinel, StudyYear: "1", Weight: "2"},
	}}}
	svc := NewExportService(fetcher, &staticScheduleSource{}, &staticTokenReader{token: "tok"}, zap.NewNop())

	out, err := svc.GradesCSV(context.Background())
	require.NoError(t, err)

	text := string(out)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Course,Grade,Study Year,Weight", lines[0])
	assert.Contains(t, text, "Math,95,1,4")
	assert.Contains(t, text, "Seminar,Not graded yet,1,2")
}

func TestExportServiceGradesPDF(t *testing.T) {
	fetcher := &mockGradesFetcher{data: &models.GradesData{Courses: []models.Course{
		{Name: "Math", Grade: "95", StudyYear: "1", Weight: "4"},
	}}}
	svc := NewExportService(fetcher, &staticScheduleSource{}, &staticTokenReader{token: "tok"}, zap.NewNop())

	out, err := svc.GradesPDF(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestExportServiceRequiresToken(t *testing.T) {
	svc := NewExportService(&mockGradesFetcher{}, &staticScheduleSource{}, &staticTokenReader{err: appErrors.ErrNoToken}, zap.NewNop())

	_, err := svc.GradesCSV(context.Background())
	require.ErrorIs(t, err, appErrors.ErrNoToken)
}

func TestExportServiceScheduleICS(t *testing.T) {
	source := &staticScheduleSource{byDay: map[string][]models.ScheduleEntry{
		"2025-03-03": {
			{
				Date:      "2025-03-03T00:00:00",
				Title:     "Calculus",
				StartTime: "2025-03-03T08:30:00",
				EndTime:   "2025-03-03T10:00:00",
				Place:     "Bldg 7",
			},
			{
				Date:      "2025-03-03T00:00:00",
				Title:     "Broken entry",
				StartTime: "garbage",
			},
		},
	}}
	svc := NewExportService(&mockGradesFetcher{}, source, &staticTokenReader{token: "tok"}, zap.NewNop())

	out, err := svc.ScheduleICS(2025, time.March)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.Contains(t, text, "SUMMARY:Calculus")
	assert.Contains(t, text, "LOCATION:Bldg 7")
	assert.NotContains(t, text, "Broken entry")
}
