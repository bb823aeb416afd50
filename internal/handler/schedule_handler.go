package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myruppin/portal-companion/internal/service"
	"github.com/myruppin/portal-companion/internal/store"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
	"github.com/myruppin/portal-companion/pkg/response"
)

const monthLayout = "2006-01"

// ScheduleHandler exposes the cached schedule views.
type ScheduleHandler struct {
	cache   *service.ScheduleCache
	exports *service.ExportService
	tokens  *store.TokenStore
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(cache *service.ScheduleCache, exports *service.ExportService, tokens *store.TokenStore) *ScheduleHandler {
	return &ScheduleHandler{cache: cache, exports: exports, tokens: tokens}
}

// Month loads (if needed) and returns the schedule for a month, keyed by day.
// Path param month is YYYY-MM.
func (h *ScheduleHandler) Month(c *gin.Context) {
	ref, err := time.Parse(monthLayout, c.Param("month"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "month must be YYYY-MM"))
		return
	}
	if err := h.ensureMonth(c.Request.Context(), ref.Year(), ref.Month()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.cache.EntriesForMonth(ref.Year(), ref.Month()), map[string]interface{}{
		"fetched_weeks": h.cache.FetchedWeekCount(),
	})
}

// Day returns the entries for one day, sorted by start time. Path param date
// is YYYY-MM-DD. The day's month is loaded on demand.
func (h *ScheduleHandler) Day(c *gin.Context) {
	day, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date must be YYYY-MM-DD"))
		return
	}
	if err := h.ensureMonth(c.Request.Context(), day.Year(), day.Month()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.cache.EntriesForDay(day), map[string]interface{}{
		"has_entries": h.cache.HasEntriesForDay(day),
	})
}

// Courses returns the full course list with semester and study-year fields.
func (h *ScheduleHandler) Courses(c *gin.Context) {
	token, err := h.tokens.Token(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	courses, err := h.cache.Courses(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// ExportICS streams a month of schedule entries as an iCalendar file. Query
// param month is YYYY-MM and defaults to the current month.
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	ref := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse(monthLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "month must be YYYY-MM"))
			return
		}
		ref = parsed
	}
	if err := h.ensureMonth(c.Request.Context(), ref.Year(), ref.Month()); err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.exports.ScheduleICS(ref.Year(), ref.Month())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
	c.Data(http.StatusOK, "text/calendar", data)
}

func (h *ScheduleHandler) ensureMonth(ctx context.Context, year int, month time.Month) error {
	token, err := h.tokens.Token(ctx)
	if err != nil {
		return err
	}
	return h.cache.EnsureMonthLoaded(ctx, token, year, month)
}
