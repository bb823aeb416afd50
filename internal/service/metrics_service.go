package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Poll result labels.
const (
	PollResultSuccess   = "success"
	PollResultNoToken   = "no_token"
	PollResultRetryable = "retryable"
)

// MetricsService encapsulates Prometheus instrumentation for the companion
// service: HTTP traffic, poll cycles, week fetches and schedule-cache
// effectiveness.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	pollTotal          *prometheus.CounterVec
	pollDuration       prometheus.Histogram
	notificationsTotal prometheus.Counter

	weekFetchTotal *prometheus.CounterVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	pollTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grade_polls_total",
		Help: "Total grade poll cycles by result",
	}, []string{"result"})

	pollDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "grade_poll_duration_seconds",
		Help:    "Duration of grade poll cycles",
		Buckets: prometheus.DefBuckets,
	})

	notificationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grade_notifications_total",
		Help: "Total grade-update notifications emitted",
	})

	weekFetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_week_fetches_total",
		Help: "Total week-schedule fetches by result",
	}, []string{"result"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_cache_hits_total",
		Help: "Month loads fully served from the schedule cache",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_cache_misses_total",
		Help: "Month loads that required at least one week fetch",
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		pollTotal, pollDuration, notificationsTotal,
		weekFetchTotal, cacheHits, cacheMisses,
	)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		pollTotal:          pollTotal,
		pollDuration:       pollDuration,
		notificationsTotal: notificationsTotal,
		weekFetchTotal:     weekFetchTotal,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
	}
}

// Handler exposes the scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records a served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordPoll records a completed poll cycle.
func (s *MetricsService) RecordPoll(result string, duration time.Duration) {
	s.pollTotal.WithLabelValues(result).Inc()
	s.pollDuration.Observe(duration.Seconds())
}

// RecordNotifications counts emitted grade notifications.
func (s *MetricsService) RecordNotifications(count int) {
	if count > 0 {
		s.notificationsTotal.Add(float64(count))
	}
}

// RecordWeekFetch records one week-window fetch attempt.
func (s *MetricsService) RecordWeekFetch(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	s.weekFetchTotal.WithLabelValues(result).Inc()
}

// RecordMonthLoad records whether a month load was a pure cache hit.
func (s *MetricsService) RecordMonthLoad(hit bool) {
	if hit {
		s.cacheHits.Inc()
		return
	}
	s.cacheMisses.Inc()
}
