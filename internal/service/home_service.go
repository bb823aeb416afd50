package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/internal/models"
)

const homeCacheKey = "home_data"

// homeFetcher is the slice of the portal client the home view needs.
type homeFetcher interface {
	FetchCurrentEvent(ctx context.Context, token string, now time.Time) (*models.EventInfo, error)
	FetchUpcomingEvents(ctx context.Context, token string) ([]models.UpcomingEvent, error)
	UserName(ctx context.Context, token string) (string, error)
}

type tokenReader interface {
	Token(ctx context.Context) (string, error)
}

// HomeService aggregates the home-screen data (current event, upcoming
// events, user name) behind a short TTL cache so rapid UI refreshes don't
// hammer the portal.
type HomeService struct {
	fetcher homeFetcher
	tokens  tokenReader
	cache   *gocache.Cache
	logger  *zap.Logger
	now     func() time.Time
}

// NewHomeService constructs the service. ttl bounds how long home data may be
// served without refetching.
func NewHomeService(fetcher homeFetcher, tokens tokenReader, ttl time.Duration, logger *zap.Logger) *HomeService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeService{
		fetcher: fetcher,
		tokens:  tokens,
		cache:   gocache.New(ttl, 2*ttl),
		logger:  logger,
		now:     time.Now,
	}
}

// HomeData returns the aggregated home view, served from cache inside the
// TTL. The current event and user name degrade to empty values on failure,
// matching the app's silent-failure behavior; upcoming events failing is
// likewise non-fatal.
func (s *HomeService) HomeData(ctx context.Context) (*models.HomeData, error) {
	if cached, ok := s.cache.Get(homeCacheKey); ok {
		if data, ok := cached.(*models.HomeData); ok {
			return data, nil
		}
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	data := &models.HomeData{UpcomingEvents: []models.UpcomingEvent{}}

	if name, err := s.fetcher.UserName(ctx, token); err == nil {
		data.UserName = name
	} else {
		s.logger.Debug("user name fetch failed", zap.Error(err))
	}

	if current, err := s.fetcher.FetchCurrentEvent(ctx, token, s.now()); err == nil {
		data.CurrentEvent = current
	} else {
		s.logger.Debug("current event fetch failed", zap.Error(err))
	}

	if upcoming, err := s.fetcher.FetchUpcomingEvents(ctx, token); err == nil && upcoming != nil {
		data.UpcomingEvents = upcoming
	} else if err != nil {
		s.logger.Debug("upcoming events fetch failed", zap.Error(err))
	}

	s.cache.SetDefault(homeCacheKey, data)
	return data, nil
}

// Invalidate drops the cached home data (used after re-login).
func (s *HomeService) Invalidate() {
	s.cache.Delete(homeCacheKey)
}
