package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/pkg/jobs"
)

type captureNotifier struct {
	mu   sync.Mutex
	got  []Notification
	done chan struct{}
}

func (c *captureNotifier) Notify(ctx context.Context, n Notification) error {
	c.mu.Lock()
	c.got = append(c.got, n)
	c.mu.Unlock()
	if c.done != nil {
		c.done <- struct{}{}
	}
	return nil
}

func TestDispatcherFansOutToAllSinks(t *testing.T) {
	first := &captureNotifier{done: make(chan struct{}, 1)}
	second := &captureNotifier{done: make(chan struct{}, 1)}
	d := NewDispatcher([]Notifier{first, second}, zap.NewNop(), jobs.QueueConfig{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	n := Notification{Title: "New Grade Update", Message: "New grade for Math: 95", Slot: 0}
	d.Dispatch(n)

	for _, sink := range []*captureNotifier{first, second} {
		select {
		case <-sink.done:
		case <-time.After(2 * time.Second):
			t.Fatal("notification not delivered")
		}
		sink.mu.Lock()
		require.Len(t, sink.got, 1)
		assert.Equal(t, n, sink.got[0])
		sink.mu.Unlock()
	}
}

func TestWebhookNotifierPostsJSON(t *testing.T) {
	received := make(chan Notification, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n Notification
		require.NoError(t, json.NewDecoder(r.Body).Decode(&n))
		received <- n
	}))
	defer srv.Close()

	wh := NewWebhookNotifier(srv.URL, 5*time.Second)
	err := wh.Notify(context.Background(), Notification{Title: "New Grade Update", Message: "New grade for Math: 95", Slot: 1})
	require.NoError(t, err)

	select {
	case n := <-received:
		assert.Equal(t, "New Grade Update", n.Title)
		assert.Equal(t, 1, n.Slot)
	case <-time.After(time.Second):
		t.Fatal("webhook not called")
	}
}

func TestWebhookNotifierNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhookNotifier(srv.URL, 5*time.Second)
	require.Error(t, wh.Notify(context.Background(), Notification{Title: "t"}))
}
