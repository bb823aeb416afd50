package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/internal/models"
	appErrors "github.com/myruppin/portal-companion/pkg/errors"
)

type mockHomeFetcher struct {
	current  *models.EventInfo
	upcoming []models.UpcomingEvent
	name     string
	nameErr  error
	calls    int
}

func (m *mockHomeFetcher) FetchCurrentEvent(ctx context.Context, token string, now time.Time) (*models.EventInfo, error) {
	m.calls++
	return m.current, nil
}

func (m *mockHomeFetcher) FetchUpcomingEvents(ctx context.Context, token string) ([]models.UpcomingEvent, error) {
	return m.upcoming, nil
}

func (m *mockHomeFetcher) UserName(ctx context.Context, token string) (string, error) {
	if m.nameErr != nil {
		return "", m.nameErr
	}
	return m.name, nil
}

type staticTokenReader struct {
	token string
	err   error
}

func (s *staticTokenReader) Token(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func TestHomeServiceAggregatesAndCaches(t *testing.T) {
	fetcher := &mockHomeFetcher{
		current:  &models.EventInfo{Title: "Calculus", StartTime: "08:30"},
		upcoming: []models.UpcomingEvent{{Title: "Final exam", Date: "01/07/2025", IsExam: true}},
		name:     "Dana Levi",
	}
	svc := NewHomeService(fetcher, &staticTokenReader{token: "tok"}, time.Minute, zap.NewNop())

	data, err := svc.HomeData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dana Levi", data.UserName)
	require.NotNil(t, data.CurrentEvent)
	assert.Equal(t, "Calculus", data.CurrentEvent.Title)
	require.Len(t, data.UpcomingEvents, 1)

	_, err = svc.HomeData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
}

func TestHomeServicePartialFailureDegrades(t *testing.T) {
	fetcher := &mockHomeFetcher{
		current: &models.EventInfo{Title: "Lab"},
		nameErr: fmt.Errorf("userinfo down"),
	}
	svc := NewHomeService(fetcher, &staticTokenReader{token: "tok"}, time.Minute, zap.NewNop())

	data, err := svc.HomeData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data.UserName)
	require.NotNil(t, data.CurrentEvent)
	assert.NotNil(t, data.UpcomingEvents)
	assert.Empty(t, data.UpcomingEvents)
}

func TestHomeServiceRequiresToken(t *testing.T) {
	svc := NewHomeService(&mockHomeFetcher{}, &staticTokenReader{err: appErrors.ErrNoToken}, time.Minute, zap.NewNop())

	_, err := svc.HomeData(context.Background())
	require.ErrorIs(t, err, appErrors.ErrNoToken)
}

func TestHomeServiceInvalidate(t *testing.T) {
	fetcher := &mockHomeFetcher{name: "Dana Levi"}
	svc := NewHomeService(fetcher, &staticTokenReader{token: "tok"}, time.Minute, zap.NewNop())

	_, err := svc.HomeData(context.Background())
	require.NoError(t, err)
	svc.Invalidate()
	_, err = svc.HomeData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}
