package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/myruppin/portal-companion/pkg/jobs"
)

// Dispatcher fans notifications out to every registered sink through a small
// retry queue. Dispatch never returns an error: a sink that keeps failing is
// dropped by the queue after its retries are exhausted.
type Dispatcher struct {
	sinks  []Notifier
	queue  *jobs.Queue
	logger *zap.Logger
}

type delivery struct {
	sink         Notifier
	notification Notification
}

// NewDispatcher builds a dispatcher over the given sinks.
func NewDispatcher(sinks []Notifier, logger *zap.Logger, queueCfg jobs.QueueConfig) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{sinks: sinks, logger: logger}
	queueCfg.Logger = logger
	d.queue = jobs.NewQueue("notifications", d.handle, queueCfg)
	return d
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Dispatch enqueues the notification for every sink. Fire-and-forget.
func (d *Dispatcher) Dispatch(n Notification) {
	for _, sink := range d.sinks {
		job := jobs.Job{Kind: "notification", Payload: delivery{sink: sink, notification: n}}
		if err := d.queue.Enqueue(job); err != nil {
			d.logger.Warn("notification enqueue failed",
				zap.String("title", n.Title),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	del, ok := job.Payload.(delivery)
	if !ok {
		d.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	return del.sink.Notify(ctx, del.notification)
}
