package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/internal/models"
	"github.com/myruppin/portal-companion/internal/notify"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
	"github.com/myruppin/portal-companion/pkg/jobs"
)

// gradesFetcher is the slice of the portal client the poller needs.
type gradesFetcher interface {
	FetchGrades(ctx context.Context, token string) (*models.GradesData, error)
}

// snapshotStore persists the last seen grade snapshot and the auth token.
type snapshotStore interface {
	Token(ctx context.Context) (string, error)
	GradeSnapshot(ctx context.Context) ([]models.GradePair, error)
	SaveGradeSnapshot(ctx context.Context, pairs []models.GradePair) error
}

// notificationSink receives grade-update events; delivery is fire-and-forget.
type notificationSink interface {
	Dispatch(n notify.Notification)
}

// PollOutcome summarises one completed poll cycle.
type PollOutcome struct {
	Fetched  int  `json:"fetched"`
	NewPairs int  `json:"new_pairs"`
	Notified int  `json:"notified"`
	Changed  bool `json:"changed"`
}

// GradePoller runs the periodic grade check: fetch, diff against the stored
// snapshot, notify for genuinely new grades, persist the new snapshot.
//
// Only courses that were already present in the stored snapshot trigger a
// notification; a course seen for the first time is recorded silently. This
// keeps the first run after install (and every newly enrolled course) from
// flooding the user with one notification per course.
type GradePoller struct {
	fetcher gradesFetcher
	store   snapshotStore
	sink    notificationSink
	metrics *MetricsService
	logger  *zap.Logger
}

// NewGradePoller constructs the poller.
func NewGradePoller(fetcher gradesFetcher, store snapshotStore, sink notificationSink, metrics *MetricsService, logger *zap.Logger) *GradePoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradePoller{
		fetcher: fetcher,
		store:   store,
		sink:    sink,
		metrics: metrics,
		logger:  logger,
	}
}

// Poll executes one cycle. It returns ErrNoToken without any network call
// when no token is stored; upstream failures come back retryable for the job
// queue to re-enqueue. The stored snapshot is replaced only when the fetched
// set differs from it.
func (p *GradePoller) Poll(ctx context.Context) (PollOutcome, error) {
	start := time.Now()
	outcome, err := p.poll(ctx)
	if p.metrics != nil {
		p.metrics.RecordPoll(pollResultLabel(err), time.Since(start))
		p.metrics.RecordNotifications(outcome.Notified)
	}
	return outcome, err
}

func (p *GradePoller) poll(ctx context.Context) (PollOutcome, error) {
	var outcome PollOutcome

	token, err := p.store.Token(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoToken) {
			return outcome, err
		}
		return outcome, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read stored token")
	}

	data, err := p.fetcher.FetchGrades(ctx, token)
	if err != nil {
		return outcome, err
	}

	fetched := data.Snapshot()
	outcome.Fetched = len(fetched)

	stored, err := p.store.GradeSnapshot(ctx)
	if err != nil {
		return outcome, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read stored snapshot")
	}

	fetchedSet := pairSet(fetched)
	storedSet := pairSet(stored)

	newEntries := make([]models.GradePair, 0)
	for _, pair := range fetched {
		if _, seen := storedSet[pair]; !seen {
			newEntries = append(newEntries, pair)
		}
	}
	// Deterministic notification order (and slot assignment).
	sort.Slice(newEntries, func(i, j int) bool {
		if newEntries[i].Course != newEntries[j].Course {
			return newEntries[i].Course < newEntries[j].Course
		}
		return newEntries[i].Grade < newEntries[j].Grade
	})
	outcome.NewPairs = len(newEntries)

	existingCourses := make(map[string]struct{}, len(stored))
	for _, pair := range stored {
		existingCourses[pair.Course] = struct{}{}
	}

	for slot, pair := range newEntries {
		if _, known := existingCourses[pair.Course]; !known {
			continue
		}
		p.sink.Dispatch(notify.Notification{
			Title:   "New Grade Update",
			Message: fmt.Sprintf("New grade for %s: %s", pair.Course, pair.Grade),
			Slot:    slot,
		})
		outcome.Notified++
	}

	if !setsEqual(fetchedSet, storedSet) {
		outcome.Changed = true
		if err := p.store.SaveGradeSnapshot(ctx, fetched); err != nil {
			return outcome, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist snapshot")
		}
	}

	p.logger.Debug("poll cycle complete",
		zap.Int("fetched", outcome.Fetched),
		zap.Int("new_pairs", outcome.NewPairs),
		zap.Int("notified", outcome.Notified),
		zap.Bool("changed", outcome.Changed),
	)
	return outcome, nil
}

func pairSet(pairs []models.GradePair) map[models.GradePair]struct{} {
	set := make(map[models.GradePair]struct{}, len(pairs))
	for _, p := range pairs {
		set[p] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[models.GradePair]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for p := range a {
		if _, ok := b[p]; !ok {
			return false
		}
	}
	return true
}

// JobHandler adapts the poller to the job queue. A missing token is terminal
// for the cycle (logged, not retried); upstream failures propagate so the
// queue re-enqueues with its configured delay.
func (p *GradePoller) JobHandler() jobs.Handler {
	return func(ctx context.Context, _ jobs.Job) error {
		outcome, err := p.Poll(ctx)
		switch {
		case err == nil:
			p.logger.Info("grade poll succeeded",
				zap.Int("fetched", outcome.Fetched),
				zap.Int("notified", outcome.Notified),
				zap.Bool("changed", outcome.Changed),
			)
			return nil
		case errors.Is(err, appErrors.ErrNoToken):
			p.logger.Warn("grade poll skipped: no token stored")
			return nil
		case appErrors.Retryable(err):
			return err
		default:
			p.logger.Error("grade poll failed", zap.Error(err))
			return nil
		}
	}
}

func pollResultLabel(err error) string {
	switch {
	case err == nil:
		return PollResultSuccess
	case errors.Is(err, appErrors.ErrNoToken):
		return PollResultNoToken
	default:
		return PollResultRetryable
	}
}
