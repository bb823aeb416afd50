package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/internal/models"
	"github.com/myruppin/portal-companion/internal/portal"
)

const dayKeyLayout = "2006-01-02"

// scheduleFetcher is the slice of the portal client the cache needs.
type scheduleFetcher interface {
	FetchScheduleParams(ctx context.Context, token string) (*models.ScheduleParams, error)
	FetchWeekSchedule(ctx context.Context, token string, params *models.ScheduleParams, weekStart time.Time) ([]models.ScheduleEntry, error)
	FetchCourses(ctx context.Context, token string, params *models.ScheduleParams) ([]models.ScheduleCourse, error)
}

// ScheduleCache serves per-day and per-month schedule queries while fetching
// each Sunday-aligned 7-day window from the portal at most once. Entries are
// merged append-only into a per-date index; a week whose fetch failed stays
// marked so a retry storm cannot develop (the data is simply absent until the
// process restarts).
//
// One cache instance expects one logical caller; a single in-flight flag
// keeps overlapping EnsureMonthLoaded calls from double-scheduling fetches.
type ScheduleCache struct {
	fetcher scheduleFetcher
	metrics *MetricsService
	logger  *zap.Logger

	mu           sync.Mutex
	params       *models.ScheduleParams
	byDate       map[string][]models.ScheduleEntry
	fetchedWeeks map[string]struct{}
	inFlight     bool
}

// NewScheduleCache constructs an empty cache.
func NewScheduleCache(fetcher scheduleFetcher, metrics *MetricsService, logger *zap.Logger) *ScheduleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleCache{
		fetcher:      fetcher,
		metrics:      metrics,
		logger:       logger,
		byDate:       make(map[string][]models.ScheduleEntry),
		fetchedWeeks: make(map[string]struct{}),
	}
}

// weekStartFor aligns a date to the Sunday starting its week.
func weekStartFor(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// EnsureMonthLoaded fetches every not-yet-fetched week overlapping the given
// month, concurrently, and merges the results into the cache. When every week
// is already marked the call is a cheap no-op. Individual week failures are
// logged and swallowed; the month then renders with whatever data arrived.
func (s *ScheduleCache) EnsureMonthLoaded(ctx context.Context, token string, year int, month time.Month) error {
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstDay.AddDate(0, 1, -1)

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil
	}

	// Mark weeks fetched before any network I/O so a concurrent call for an
	// overlapping month cannot schedule the same week twice.
	var toFetch []time.Time
	cur := weekStartFor(firstDay)
	for !cur.After(lastDay) {
		if _, done := s.fetchedWeeks[s.weekKey(cur)]; !done {
			s.fetchedWeeks[s.weekKey(cur)] = struct{}{}
			toFetch = append(toFetch, cur)
		}
		cur = cur.AddDate(0, 0, 7)
	}
	// Trailing window: the walk can leave the month's final days covered only
	// by the week starting just past lastDay.
	if cur.AddDate(0, 0, -7).Before(lastDay) {
		if _, done := s.fetchedWeeks[s.weekKey(cur)]; !done {
			s.fetchedWeeks[s.weekKey(cur)] = struct{}{}
			toFetch = append(toFetch, cur)
		}
	}

	if len(toFetch) == 0 {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RecordMonthLoad(true)
		}
		return nil
	}

	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if s.metrics != nil {
		s.metrics.RecordMonthLoad(false)
	}

	params, err := s.ensureParams(ctx, token)
	if err != nil {
		// Nothing was attempted; unmark so a later call can try again.
		s.mu.Lock()
		for _, wk := range toFetch {
			delete(s.fetchedWeeks, s.weekKey(wk))
		}
		s.mu.Unlock()
		return err
	}

	type weekResult struct {
		weekStart time.Time
		entries   []models.ScheduleEntry
		err       error
	}

	results := make([]weekResult, len(toFetch))
	var wg sync.WaitGroup
	for i, wk := range toFetch {
		wg.Add(1)
		go func(i int, wk time.Time) {
			defer wg.Done()
			entries, err := s.fetcher.FetchWeekSchedule(ctx, token, params, wk)
			results[i] = weekResult{weekStart: wk, entries: entries, err: err}
		}(i, wk)
	}
	wg.Wait()

	s.mu.Lock()
	for _, res := range results {
		if res.err != nil {
			if s.metrics != nil {
				s.metrics.RecordWeekFetch(false)
			}
			if ctx.Err() != nil {
				// Cancelled, not failed: unmark so the week is retried on the
				// next load instead of being silently lost.
				delete(s.fetchedWeeks, s.weekKey(res.weekStart))
				continue
			}
			s.logger.Warn("week fetch failed",
				zap.String("week_start", res.weekStart.Format(dayKeyLayout)),
				zap.Error(res.err),
			)
			continue
		}
		if s.metrics != nil {
			s.metrics.RecordWeekFetch(true)
		}
		for _, entry := range res.entries {
			key := entry.DateKey()
			s.byDate[key] = append(s.byDate[key], entry)
		}
	}
	s.mu.Unlock()

	return ctx.Err()
}

// EntriesForDay returns the cached entries for the given day sorted by start
// time ascending. It never touches the network.
func (s *ScheduleCache) EntriesForDay(day time.Time) []models.ScheduleEntry {
	s.mu.Lock()
	cached := s.byDate[day.Format(dayKeyLayout)]
	entries := make([]models.ScheduleEntry, len(cached))
	copy(entries, cached)
	s.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartClock() < entries[j].StartClock()
	})
	return entries
}

// HasEntriesForDay reports whether any entry is cached for the day. Used by
// calendar rendering to mark days with events without fetching.
func (s *ScheduleCache) HasEntriesForDay(day time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byDate[day.Format(dayKeyLayout)]) > 0
}

// EntriesForMonth returns the cached entries for every day of the month,
// keyed by YYYY-MM-DD and sorted per day.
func (s *ScheduleCache) EntriesForMonth(year int, month time.Month) map[string][]models.ScheduleEntry {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	out := make(map[string][]models.ScheduleEntry)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if entries := s.EntriesForDay(d); len(entries) > 0 {
			out[d.Format(dayKeyLayout)] = entries
		}
	}
	return out
}

// Courses returns the full course list for filtering views, reusing the
// cached schedule params handle. The list itself is not cached; the portal
// call is cheap relative to week fetches.
func (s *ScheduleCache) Courses(ctx context.Context, token string) ([]models.ScheduleCourse, error) {
	params, err := s.ensureParams(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.fetcher.FetchCourses(ctx, token, params)
}

// FetchedWeekCount reports how many week windows have been fetched (or
// attempted) so far.
func (s *ScheduleCache) FetchedWeekCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fetchedWeeks)
}

func (s *ScheduleCache) weekKey(weekStart time.Time) string {
	return weekStart.Format(portal.WeekKeyLayout)
}

func (s *ScheduleCache) ensureParams(ctx context.Context, token string) (*models.ScheduleParams, error) {
	s.mu.Lock()
	params := s.params
	s.mu.Unlock()
	if params != nil {
		return params, nil
	}

	params, err := s.fetcher.FetchScheduleParams(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.params = params
	s.mu.Unlock()
	return params, nil
}
