package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/internal/models"
	"github.com/myruppin/portal-companion/pkg/export"
)

type exportGradesFetcher interface {
	FetchGrades(ctx context.Context, token string) (*models.GradesData, error)
}

type scheduleEntrySource interface {
	EntriesForMonth(year int, month time.Month) map[string][]models.ScheduleEntry
}

// ExportService turns grades and schedule data into downloadable documents.
type ExportService struct {
	grades   exportGradesFetcher
	schedule scheduleEntrySource
	tokens   tokenReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	ics      *export.ICSExporter
	logger   *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(grades exportGradesFetcher, schedule scheduleEntrySource, tokens tokenReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		grades:   grades,
		schedule: schedule,
		tokens:   tokens,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		ics:      export.NewICSExporter(""),
		logger:   logger,
	}
}

var gradeExportHeaders = []string{"Course", "Grade", "Study Year", "Weight"}

func gradeDataset(data *models.GradesData) export.Dataset {
	rows := make([]map[string]string, 0, len(data.Courses))
	for _, c := range data.Courses {
		rows = append(rows, map[string]string{
			"Course":     c.Name,
			"Grade":      c.Grade,
			"Study Year": c.StudyYear,
			"Weight":     c.Weight,
		})
	}
	return export.Dataset{Headers: gradeExportHeaders, Rows: rows}
}

// GradesCSV renders the current grades view as CSV.
func (s *ExportService) GradesCSV(ctx context.Context) ([]byte, error) {
	data, err := s.fetchGrades(ctx)
	if err != nil {
		return nil, err
	}
	return s.csv.Render(gradeDataset(data))
}

// GradesPDF renders the current grades view as a tabular PDF.
func (s *ExportService) GradesPDF(ctx context.Context) ([]byte, error) {
	data, err := s.fetchGrades(ctx)
	if err != nil {
		return nil, err
	}
	return s.pdf.Render(gradeDataset(data), "Grades Report")
}

func (s *ExportService) fetchGrades(ctx context.Context) (*models.GradesData, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.grades.FetchGrades(ctx, token)
}

// ScheduleICS renders a month of cached schedule entries as an iCalendar
// feed. Entries whose datetimes fail to parse are skipped rather than
// aborting the whole export.
func (s *ExportService) ScheduleICS(year int, month time.Month) ([]byte, error) {
	byDay := s.schedule.EntriesForMonth(year, month)
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	var entries []models.ScheduleEntry
	for _, day := range days {
		entries = append(entries, byDay[day]...)
	}

	events := make([]export.Event, 0, len(entries))
	for _, entry := range entries {
		start, err := parsePortalDateTime(entry.StartTime)
		if err != nil {
			s.logger.Debug("skipping unparsable schedule entry",
				zap.String("title", entry.Title),
				zap.String("start", entry.StartTime))
			continue
		}
		end, err := parsePortalDateTime(entry.EndTime)
		if err != nil {
			end = start.Add(time.Hour)
		}
		events = append(events, export.Event{
			Summary:     entry.Title,
			Location:    entry.Place,
			Description: entry.MoreInfo,
			Start:       start,
			End:         end,
		})
	}
	return s.ics.Render(events)
}

var portalDateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04",
}

func parsePortalDateTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range portalDateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
